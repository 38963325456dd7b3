package keys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, rec *models.KeyRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO encryption_keys (username, wrapped_user_key) VALUES (?, ?)`,
		rec.Username, rec.WrappedKey)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("key for %q: %w", rec.Username, common.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert key record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, username string) (*models.KeyRecord, error) {
	rec := &models.KeyRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT username, wrapped_user_key FROM encryption_keys WHERE username = ?`,
		username).Scan(&rec.Username, &rec.WrappedKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get key record: %w", err)
	}
	return rec, nil
}

// Delete removes the record; deleting an absent record is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM encryption_keys WHERE username = ?`, username); err != nil {
		return fmt.Errorf("failed to delete key record: %w", err)
	}
	return nil
}
