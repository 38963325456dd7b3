package messages

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const (
	selectColumns = `id, username, message, role, encrypted, response, response_encrypted, cipher, key_id`
	readableWhere = `username = ? AND (key_id IS NULL OR key_id = ?)`
)

func (r *SQLiteRepository) Insert(ctx context.Context, m *models.ChatMessage) (int64, error) {
	var response, keyID sql.NullString
	if m.Response != "" {
		response = sql.NullString{String: m.Response, Valid: true}
	}
	if m.KeyID != "" {
		keyID = sql.NullString{String: m.KeyID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (username, message, role, encrypted, response, response_encrypted, cipher, key_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Username, m.Message, m.Role, m.Encrypted, response, m.ResponseEncrypted, m.Cipher, keyID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read message id: %w", err)
	}
	m.ID = id
	return id, nil
}

func (r *SQLiteRepository) ListByUsername(ctx context.Context, username, keyID string) ([]models.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM chat_sessions WHERE `+readableWhere+` ORDER BY id ASC`, username, keyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return scanAll(rows)
}

func (r *SQLiteRepository) LastN(ctx context.Context, username, keyID string, n int) ([]models.ChatMessage, error) {
	if n <= 0 {
		return []models.ChatMessage{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM chat_sessions WHERE `+readableWhere+` ORDER BY id DESC LIMIT ?`, username, keyID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	out, err := scanAll(rows)
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func scanAll(rows *sql.Rows) ([]models.ChatMessage, error) {
	defer rows.Close()

	out := []models.ChatMessage{}
	for rows.Next() {
		var (
			m                 models.ChatMessage
			message, role     sql.NullString
			encrypted         sql.NullBool
			response          sql.NullString
			responseEncrypted sql.NullBool
			cipher            sql.NullString
			keyID             sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Username, &message, &role,
			&encrypted, &response, &responseEncrypted, &cipher, &keyID); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Message = message.String
		m.Role = role.String
		m.Encrypted = encrypted.Bool
		m.Response = response.String
		m.ResponseEncrypted = responseEncrypted.Bool
		m.Cipher = cipher.String
		m.KeyID = keyID.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return out, nil
}
