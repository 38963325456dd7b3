// Package users stores user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

// Repository persists users. Lookups of unknown names return
// common.ErrorNotFound; Create on a taken name returns
// common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateRole(ctx context.Context, username string, role models.Role) error
	UpdatePasswordHash(ctx context.Context, username, hash string) error
	Delete(ctx context.Context, username string) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
}
