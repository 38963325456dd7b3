// Package models holds the records persisted by chatkeeper and the views
// services hand back to callers.
package models

import (
	"fmt"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
)

// Role is an authorization level. Only RoleGeneral and RoleAdmin exist.
type Role string

const (
	RoleGeneral Role = common.RoleGeneral
	RoleAdmin   Role = common.RoleAdmin
)

// ParseRole converts s into a Role, failing with common.ErrInvalidRole for
// anything other than "general" or "admin".
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleGeneral, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrInvalidRole, s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User is a stored account. Every Enc* field holds ciphertext produced with
// the user's own key; plaintext PII is never persisted.
type User struct {
	Username      string
	PasswordHash  string
	Role          Role
	EncFirstName  string
	EncMiddleName string
	EncLastName   string
	EncFullName   string
	EncEmail      string
}

// KeyRecord holds a user's data key wrapped under the process master key.
type KeyRecord struct {
	Username   string
	WrappedKey string
}

// Identity is what a successful authentication yields.
type Identity struct {
	Username string
	FullName string
	Role     Role
}

// Profile is the decrypted personal data of a user.
type Profile struct {
	Username   string
	FirstName  string
	MiddleName string
	LastName   string
	FullName   string
	Email      string
	Role       Role
}
