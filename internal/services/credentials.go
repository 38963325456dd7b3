package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/cryptox"
	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/logging"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/repomanager"
)

// CredentialService owns user accounts: registration, authentication and
// the admin mutations on roles, passwords and deletion.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	keys        *KeyService
	params      cryptox.PasswordParams
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, keys *KeyService, params cryptox.PasswordParams, logger logging.Logger) *CredentialService {
	return &CredentialService{
		db:          db,
		repomanager: m,
		keys:        keys,
		params:      params,
		logger:      logging.ForComponent(logger, "credentials"),
	}
}

// Name is a full name split into its stored parts.
type Name struct {
	First, Middle, Last string
}

// SplitName splits on whitespace: the first token is the first name, the
// last token the last name and whatever sits between is the middle name.
// A single token is both first and last name.
func SplitName(fullName string) (Name, error) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return Name{}, fmt.Errorf("%w: full name is required", common.ErrValidation)
	}
	n := Name{First: parts[0], Last: parts[len(parts)-1]}
	if len(parts) > 2 {
		n.Middle = strings.Join(parts[1:len(parts)-1], " ")
	}
	return n, nil
}

// Register creates a user with a fresh data key. The user row and its key
// record are written in one transaction. A taken username fails with
// common.ErrAlreadyExists and leaves the existing account untouched.
func (s *CredentialService) Register(ctx context.Context, username, password, fullName, email string, role models.Role) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if _, err := models.ParseRole(string(role)); err != nil {
		return err
	}
	name, err := SplitName(fullName)
	if err != nil {
		return err
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return err
	}

	userKey, err := s.keys.GenerateUserKey()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(userKey)

	user := &models.User{Username: username, Role: role}
	for _, f := range []struct {
		dst   *string
		value string
	}{
		{&user.EncFirstName, name.First},
		{&user.EncMiddleName, name.Middle},
		{&user.EncLastName, name.Last},
		{&user.EncFullName, fullName},
		{&user.EncEmail, email},
	} {
		if *f.dst, err = s.keys.EncryptField(f.value, userKey); err != nil {
			return err
		}
	}

	if user.PasswordHash, err = cryptox.HashPassword([]byte(password), s.params); err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.keys.Store(ctx, tx, username, userKey)
	})
	if err != nil {
		return dbx.Unavailable(err)
	}

	s.logger.Info(ctx, "user registered", "username", username, "role", role)
	return nil
}

// Authenticate checks the password and returns the user's decrypted full
// name and role. Unknown users and wrong passwords both yield
// common.ErrorUnauthorized. A correct password with missing or corrupt key
// material yields common.ErrCrypto instead.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (*models.Identity, error) {
	if username == "" || password == "" {
		return nil, common.ErrorUnauthorized
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// same work as a real check so timing does not reveal the miss
			_, _ = cryptox.VerifyPassword([]byte(password), s.dummy())
			return nil, common.ErrorUnauthorized
		}
		return nil, dbx.Unavailable(err)
	}

	ok, err := cryptox.VerifyPassword([]byte(password), user.PasswordHash)
	if err != nil {
		s.logger.Warn(ctx, "unreadable password hash", "username", username, "error", err)
		return nil, common.ErrorUnauthorized
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	userKey, err := s.keys.UserKey(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(userKey)

	fullName, err := s.keys.DecryptField(user.EncFullName, userKey)
	if err != nil {
		return nil, err
	}

	return &models.Identity{Username: username, FullName: fullName, Role: user.Role}, nil
}

// Profile returns every decrypted personal field of username.
func (s *CredentialService) Profile(ctx context.Context, username string) (*models.Profile, error) {
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		return nil, dbx.Unavailable(err)
	}
	userKey, err := s.keys.UserKey(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(userKey)

	p := &models.Profile{Username: username, Role: user.Role}
	for _, f := range []struct {
		dst *string
		ct  string
	}{
		{&p.FirstName, user.EncFirstName},
		{&p.MiddleName, user.EncMiddleName},
		{&p.LastName, user.EncLastName},
		{&p.FullName, user.EncFullName},
		{&p.Email, user.EncEmail},
	} {
		if *f.dst, err = s.keys.DecryptField(f.ct, userKey); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SetRole changes username's role. Demoting the only admin fails with
// common.ErrLastAdmin.
func (s *CredentialService) SetRole(ctx context.Context, username string, role models.Role) error {
	if _, err := models.ParseRole(string(role)); err != nil {
		return err
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		user, err := users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if user.Role == models.RoleAdmin && role != models.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}
		return users.UpdateRole(ctx, username, role)
	})
	if err != nil {
		return dbx.Unavailable(err)
	}

	s.logger.Info(ctx, "role changed", "username", username, "role", role)
	return nil
}

// ResetPassword replaces username's password without checking the old one.
func (s *CredentialService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword([]byte(newPassword), s.params)
	if err != nil {
		return err
	}
	if err := s.repomanager.Users(s.db).UpdatePasswordHash(ctx, username, hash); err != nil {
		return dbx.Unavailable(err)
	}

	s.logger.Info(ctx, "password reset", "username", username)
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *CredentialService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if _, err := s.Authenticate(ctx, username, oldPassword); err != nil {
		return err
	}
	return s.ResetPassword(ctx, username, newPassword)
}

// DeleteUser removes username together with their sessions and key record.
// Chat rows stay, but rows sealed with the user's key can no longer be
// opened and are left out of later reads, even if the name is registered
// again.
// Deleting the only admin fails with common.ErrLastAdmin.
func (s *CredentialService) DeleteUser(ctx context.Context, username string) error {
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return err
	}

	var dropped int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if user.Role == models.RoleAdmin {
			if err := s.ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}
		if dropped, err = s.repomanager.Sessions(tx).DeleteByUsername(ctx, username); err != nil {
			return err
		}
		if err := s.repomanager.Keys(tx).Delete(ctx, username); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, username)
	})
	if err != nil {
		return dbx.Unavailable(err)
	}

	s.logger.Info(ctx, "user deleted", "username", username, "sessions", dropped)
	return nil
}

// AddUser registers an account on an admin's behalf with a generated
// temporary password, which is returned for handing over to the user.
func (s *CredentialService) AddUser(ctx context.Context, username, fullName, email string, role models.Role) (string, error) {
	password, err := common.MakeRandHexString(6)
	if err != nil {
		return "", err
	}
	if err := s.Register(ctx, username, password, fullName, email, role); err != nil {
		return "", err
	}
	return password, nil
}

func (s *CredentialService) ensureAnotherAdmin(ctx context.Context, tx dbx.DBTX) error {
	n, err := s.repomanager.Users(tx).CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return common.ErrLastAdmin
	}
	return nil
}

func (s *CredentialService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := cryptox.HashPassword([]byte("chatkeeper"), s.params)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
