// Package testutil contains helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/chatkeeper/internal/logging"
	"github.com/dmitrijs2005/chatkeeper/internal/storage"
	"github.com/stretchr/testify/require"
)

// NewDB opens a migrated database in a temporary directory. It is closed
// when the test ends.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NoopLogger returns a logger that discards output.
func NoopLogger() logging.Logger {
	return logging.Nop()
}
