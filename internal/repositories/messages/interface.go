// Package messages stores the append-only chat ledger (table chat_sessions).
package messages

import (
	"context"

	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

// Repository reads and writes rows exactly as stored; sealing and opening
// the text is the caller's job.
type Repository interface {
	Insert(ctx context.Context, m *models.ChatMessage) (int64, error)
	// ListByUsername returns the rows of username in insertion order. Rows
	// sealed under a user key other than keyID are left out; an empty keyID
	// keeps only rows that need no user key.
	ListByUsername(ctx context.Context, username, keyID string) ([]models.ChatMessage, error)
	// LastN is ListByUsername limited to the n most recent rows, oldest first.
	LastN(ctx context.Context, username, keyID string, n int) ([]models.ChatMessage, error)
}
