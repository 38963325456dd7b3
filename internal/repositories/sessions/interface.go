// Package sessions stores login sessions.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByUsername(ctx context.Context, username string) (int64, error)
	// DeleteExpired removes sessions whose expiration is not after now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
