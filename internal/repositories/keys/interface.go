// Package keys stores each user's wrapped data key.
package keys

import (
	"context"

	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

// Repository persists KeyRecords. There is exactly one record per user and
// it is never updated in place.
type Repository interface {
	Create(ctx context.Context, rec *models.KeyRecord) error
	Get(ctx context.Context, username string) (*models.KeyRecord, error)
	Delete(ctx context.Context, username string) error
}
