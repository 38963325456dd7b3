package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/fatih/color"
)

func (a *App) readRole(prompt string) (models.Role, error) {
	s, err := GetSimpleText(a.reader, fmt.Sprintf("%s (%s/%s)", prompt, models.RoleGeneral, models.RoleAdmin), a.out)
	if err != nil {
		return "", err
	}
	return models.ParseRole(s)
}

// AddUser creates an account on someone's behalf and prints the generated
// temporary password.
func (a *App) AddUser(ctx context.Context) error {
	if err := a.require(ctx, models.RoleAdmin); err != nil {
		return err
	}

	username, err := GetSimpleText(a.reader, "Enter a username for the new user", a.out)
	if err != nil {
		return err
	}
	fullName, err := GetSimpleText(a.reader, "Enter the full name (First [Middle(s)] Last) for the new user", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter the email for the new user", a.out)
	if err != nil {
		return err
	}
	role, err := a.readRole("Enter the role for the new user")
	if err != nil {
		return err
	}

	password, err := a.creds.AddUser(ctx, username, fullName, email, role)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s added. Temporary password: %s\n", username, color.YellowString(password))
	return nil
}

func (a *App) DeleteUser(ctx context.Context) error {
	if err := a.require(ctx, models.RoleAdmin); err != nil {
		return err
	}

	username, err := GetSimpleText(a.reader, "Enter the username of the user you wish to delete", a.out)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Are you sure you want to delete %s?", username), a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Deletion cancelled.")
		return nil
	}

	if err := a.creds.DeleteUser(ctx, username); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "User %s has been deleted.\n", username)
	if username == a.username {
		a.clearSession()
	}
	return nil
}

func (a *App) SetRole(ctx context.Context) error {
	if err := a.require(ctx, models.RoleAdmin); err != nil {
		return err
	}

	username, err := GetSimpleText(a.reader, "Enter the username of the user you wish to modify", a.out)
	if err != nil {
		return err
	}
	role, err := a.readRole("Enter the new role")
	if err != nil {
		return err
	}

	if err := a.creds.SetRole(ctx, username, role); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Role for user %s has been set to %s.\n", username, role)
	return nil
}

func (a *App) ResetPassword(ctx context.Context) error {
	if err := a.require(ctx, models.RoleAdmin); err != nil {
		return err
	}

	username, err := GetSimpleText(a.reader, "Enter the username whose password to reset", a.out)
	if err != nil {
		return err
	}
	password, err := a.newPassword("Enter the new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.creds.ResetPassword(ctx, username, string(password)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Password for %s reset successfully!\n", username)
	return nil
}

// Backup snapshots the database to the configured targets.
func (a *App) Backup(ctx context.Context) error {
	if err := a.require(ctx, models.RoleAdmin); err != nil {
		return err
	}
	if a.backup == nil {
		return errBackupNotAvailable
	}

	name, err := a.backup.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Backup %s stored.\n", color.GreenString(name))
	return nil
}
