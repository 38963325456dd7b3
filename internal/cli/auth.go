package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/fatih/color"
)

// Register prompts for a username, password (twice), full name and email
// and creates the account. Emails carrying the admin marker get the admin
// role.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter a username", a.out)
	if err != nil {
		return err
	}

	password, err := a.newPassword("Enter a password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	fullName, err := GetSimpleText(a.reader, "Enter your full name (First [Middle(s)] Last)", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter your email", a.out)
	if err != nil {
		return err
	}

	role := a.roleForEmail(email)
	if err := a.creds.Register(ctx, username, string(password), fullName, email, role); err != nil {
		return err
	}

	fmt.Fprintln(a.out, color.GreenString("Registered %s.", username))
	return nil
}

// Login authenticates and opens a session. Unknown users and wrong
// passwords are reported the same way and leave any current session alone.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Enter your username", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, "Enter your password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	id, err := a.creds.Authenticate(ctx, username, string(password))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			fmt.Fprintln(a.out, color.RedString("Login failed."))
			return nil
		}
		return err
	}

	if a.isLoggedIn() {
		if err := a.sessions.Terminate(ctx, a.sessionID); err != nil {
			a.logger.Warn(ctx, "failed to close previous session", "error", err)
		}
		a.clearSession()
	}

	sid, err := a.sessions.Create(ctx, id.Username, id.Role)
	if err != nil {
		return err
	}
	a.sessionID, a.username, a.fullName, a.role = sid, id.Username, id.FullName, id.Role

	if err := a.messages.RecordEvent(ctx, id.Username, "User logged in"); err != nil {
		a.logger.Warn(ctx, "failed to record login", "username", id.Username, "error", err)
	}

	fmt.Fprintf(a.out, "Hello %s!\n", color.GreenString(id.FullName))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}

	username := a.username
	err := a.sessions.Terminate(ctx, a.sessionID)
	a.clearSession()
	if err != nil {
		return err
	}

	if err := a.messages.RecordEvent(ctx, username, "User logged out"); err != nil {
		a.logger.Warn(ctx, "failed to record logout", "username", username, "error", err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints the decrypted profile of the logged-in user.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.require(ctx, models.RoleGeneral); err != nil {
		return err
	}

	p, err := a.creds.Profile(ctx, a.username)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "  %-10s %s\n", "Username:", color.GreenString(p.Username))
	fmt.Fprintf(a.out, "  %-10s %s\n", "Name:", p.FullName)
	fmt.Fprintf(a.out, "  %-10s %s\n", "Email:", p.Email)
	fmt.Fprintf(a.out, "  %-10s %s\n", "Role:", color.YellowString(string(p.Role)))
	return nil
}

// ChangePassword asks for the current password and a new one.
func (a *App) ChangePassword(ctx context.Context) error {
	if err := a.require(ctx, models.RoleGeneral); err != nil {
		return err
	}

	old, err := GetPassword(a.reader, "Enter your current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(old)

	password, err := a.newPassword("Enter your new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.creds.ChangePassword(ctx, a.username, string(old), string(password)); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return errWrongPassword
		}
		return err
	}

	fmt.Fprintln(a.out, color.GreenString("Password changed successfully!"))
	return nil
}

// newPassword reads a password and its confirmation.
func (a *App) newPassword(prompt string) ([]byte, error) {
	password, err := GetPassword(a.reader, prompt, a.out)
	if err != nil {
		return nil, err
	}

	confirm, err := GetPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		common.WipeByteArray(password)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		common.WipeByteArray(password)
		return nil, fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}
	return password, nil
}

func (a *App) roleForEmail(email string) models.Role {
	if a.adminMarker != "" && strings.Contains(strings.ToLower(email), strings.ToLower(a.adminMarker)) {
		return models.RoleAdmin
	}
	return models.RoleGeneral
}
