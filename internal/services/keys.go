package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/cryptox"
	"github.com/dmitrijs2005/chatkeeper/internal/dbx"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
	"github.com/dmitrijs2005/chatkeeper/internal/repositories/repomanager"
)

// ErrNoUserKey reports a user without a KeyRecord, either never registered
// or deleted. It matches common.ErrCrypto.
var ErrNoUserKey = fmt.Errorf("%w: no key record", common.ErrCrypto)

// KeyService manages per-user data keys under the process master key.
// It also acts as the "aead" MessageCipher, sealing chat text with the
// author's own key.
type KeyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	masterKey   []byte
}

// NewKeyService binds masterKey, which must be cryptox.KeySize bytes.
func NewKeyService(db *sql.DB, m repomanager.RepositoryManager, masterKey []byte) (*KeyService, error) {
	if len(masterKey) != cryptox.KeySize {
		return nil, cryptox.ErrKeySize
	}
	key := make([]byte, len(masterKey))
	copy(key, masterKey)
	return &KeyService{db: db, repomanager: m, masterKey: key}, nil
}

func (s *KeyService) GenerateUserKey() ([]byte, error) {
	return cryptox.GenerateKey()
}

func (s *KeyService) Wrap(userKey []byte) (string, error) {
	return cryptox.WrapKey(userKey, s.masterKey)
}

// Unwrap fails with an error matching common.ErrCrypto when wrapped was
// produced under another master key or has been corrupted.
func (s *KeyService) Unwrap(wrapped string) ([]byte, error) {
	return cryptox.UnwrapKey(wrapped, s.masterKey)
}

func (s *KeyService) EncryptField(plaintext string, userKey []byte) (string, error) {
	return cryptox.EncryptField(plaintext, userKey)
}

func (s *KeyService) DecryptField(ciphertext string, userKey []byte) (string, error) {
	return cryptox.DecryptField(ciphertext, userKey)
}

// Store wraps userKey and saves it as username's KeyRecord using db, which
// may be a transaction.
func (s *KeyService) Store(ctx context.Context, db dbx.DBTX, username string, userKey []byte) error {
	wrapped, err := s.Wrap(userKey)
	if err != nil {
		return err
	}
	return s.repomanager.Keys(db).Create(ctx, &models.KeyRecord{Username: username, WrappedKey: wrapped})
}

// UserKey loads and unwraps username's key. A missing record yields
// ErrNoUserKey.
func (s *KeyService) UserKey(ctx context.Context, db dbx.DBTX, username string) ([]byte, error) {
	rec, err := s.repomanager.Keys(db).Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w for %q", ErrNoUserKey, username)
		}
		return nil, dbx.Unavailable(err)
	}
	return s.Unwrap(rec.WrappedKey)
}

func (s *KeyService) Name() string { return models.CipherAEAD }

// Bind loads username's key once and returns a codec for their rows.
func (s *KeyService) Bind(ctx context.Context, username string) (TextCodec, error) {
	key, err := s.UserKey(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	return &fieldCodec{key: key, id: cryptox.KeyID(key)}, nil
}

type fieldCodec struct {
	key []byte
	id  string
}

func (c *fieldCodec) KeyID() string { return c.id }

func (c *fieldCodec) Seal(plaintext string) (string, error) {
	return cryptox.EncryptField(plaintext, c.key)
}

func (c *fieldCodec) Open(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	return cryptox.DecryptField(ciphertext, c.key)
}
