// Package common defines shared constants and sentinel errors used across
// chatkeeper layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrLastAdmin      = errors.New("cannot remove the last admin")

	// Input validation. ErrInvalidRole also matches ErrValidation.
	ErrValidation  = errors.New("validation error")
	ErrInvalidRole = fmt.Errorf("%w: invalid role", ErrValidation)

	// Key material could not be unwrapped or a ciphertext could not be opened.
	ErrCrypto = errors.New("crypto error")

	// The backing store cannot be reached or its schema is unusable.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
