package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/logging"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/repomanager"
)

// MessageService appends to and reads the chat ledger. Rows flagged as
// encrypted are sealed with the configured write cipher and opened with
// whichever cipher their row names.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	write       MessageCipher
	ciphers     map[string]MessageCipher
	logger      logging.Logger
}

// NewMessageService seals new rows with write. Rows written with any of
// readers (and always the legacy shift cipher) can still be read.
func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger, write MessageCipher, readers ...MessageCipher) *MessageService {
	ciphers := map[string]MessageCipher{models.CipherShift: ShiftCipher{}}
	for _, c := range append(readers, write) {
		ciphers[c.Name()] = c
	}
	return &MessageService{
		db:          db,
		repomanager: m,
		write:       write,
		ciphers:     ciphers,
		logger:      logging.ForComponent(logger, "messages"),
	}
}

// Append stores one message and returns its id.
func (s *MessageService) Append(ctx context.Context, username, message, role string, encrypt bool) (int64, error) {
	return s.AppendExchange(ctx, username, message, role, "", encrypt)
}

// AppendExchange stores a message together with the reply it received.
// An empty response is stored as NULL. Encrypting for a user without a key
// record fails with ErrNoUserKey; nothing is stored in the clear instead.
func (s *MessageService) AppendExchange(ctx context.Context, username, message, role, response string, encrypt bool) (int64, error) {
	if username == "" {
		return 0, fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if role == "" {
		return 0, fmt.Errorf("%w: role is required", common.ErrValidation)
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return 0, err
	}

	row := &models.ChatMessage{
		Username: username,
		Message:  message,
		Role:     role,
		Response: response,
		Cipher:   models.CipherNone,
	}

	if encrypt {
		codec, err := s.write.Bind(ctx, username)
		if err != nil {
			return 0, err
		}
		if row.Message, err = codec.Seal(message); err != nil {
			return 0, err
		}
		if response != "" {
			if row.Response, err = codec.Seal(response); err != nil {
				return 0, err
			}
			row.ResponseEncrypted = true
		}
		row.Encrypted = true
		row.Cipher = s.write.Name()
		row.KeyID = codec.KeyID()
	}

	id, err := s.repomanager.Messages(s.db).Insert(ctx, row)
	if err != nil {
		return 0, dbx.Unavailable(err)
	}

	s.logger.Debug(ctx, "message appended", "username", username, "role", role, "id", id, "cipher", row.Cipher)
	return id, nil
}

// RecordEvent appends an encrypted system entry, e.g. a session lifecycle
// note, to username's history.
func (s *MessageService) RecordEvent(ctx context.Context, username, text string) error {
	_, err := s.Append(ctx, username, text, common.ChatRoleSystem, true)
	return err
}

// GetMessages returns username's whole history in insertion order with
// encrypted fields opened. Rows sealed under a key the user no longer holds,
// such as those left behind by a deleted account of the same name, are left
// out. A user without history yields an empty slice.
func (s *MessageService) GetMessages(ctx context.Context, username string) ([]models.ChatMessage, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return nil, err
	}

	codecs, keyID, err := s.bind(ctx, username)
	if err != nil {
		return nil, err
	}
	rows, err := s.repomanager.Messages(s.db).ListByUsername(ctx, username, keyID)
	if err != nil {
		return nil, dbx.Unavailable(err)
	}
	return s.open(ctx, username, codecs, rows)
}

// GetLastN returns the n most recent readable messages of username, oldest
// first. n <= 0 yields an empty slice; n beyond the history yields all of it.
func (s *MessageService) GetLastN(ctx context.Context, n int, username string) ([]models.ChatMessage, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if n <= 0 {
		return []models.ChatMessage{}, nil
	}
	if err := dbx.Ensure(ctx, s.db); err != nil {
		return nil, err
	}

	codecs, keyID, err := s.bind(ctx, username)
	if err != nil {
		return nil, err
	}
	rows, err := s.repomanager.Messages(s.db).LastN(ctx, username, keyID, n)
	if err != nil {
		return nil, dbx.Unavailable(err)
	}
	return s.open(ctx, username, codecs, rows)
}

// bind prepares a codec per known cipher for username and reports the
// fingerprint of the user key in use. Ciphers that need a user key are
// skipped when username has none.
func (s *MessageService) bind(ctx context.Context, username string) (map[string]TextCodec, string, error) {
	codecs := make(map[string]TextCodec, len(s.ciphers))
	var keyID string
	for name, cipher := range s.ciphers {
		codec, err := cipher.Bind(ctx, username)
		if errors.Is(err, ErrNoUserKey) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		codecs[name] = codec
		if id := codec.KeyID(); id != "" {
			keyID = id
		}
	}
	return codecs, keyID, nil
}

func (s *MessageService) open(ctx context.Context, username string, codecs map[string]TextCodec, rows []models.ChatMessage) ([]models.ChatMessage, error) {
	out := make([]models.ChatMessage, 0, len(rows))
	skipped := 0

	for _, m := range rows {
		if !m.Encrypted && !m.ResponseEncrypted {
			out = append(out, m)
			continue
		}

		name := m.Cipher
		if name == "" {
			name = models.CipherShift
		}
		codec, ok := codecs[name]
		if !ok {
			if _, known := s.ciphers[name]; known {
				skipped++
				continue
			}
			return nil, fmt.Errorf("%w: message %d: unknown cipher %q", common.ErrCrypto, m.ID, name)
		}

		var err error
		if m.Encrypted {
			if m.Message, err = codec.Open(m.Message); err != nil {
				return nil, fmt.Errorf("message %d: %w", m.ID, err)
			}
		}
		if m.ResponseEncrypted {
			if m.Response, err = codec.Open(m.Response); err != nil {
				return nil, fmt.Errorf("response of message %d: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}

	if skipped > 0 {
		s.logger.Debug(ctx, "messages without a usable key left out", "username", username, "count", skipped)
	}
	return out, nil
}
