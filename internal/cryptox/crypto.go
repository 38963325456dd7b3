// Package cryptox holds the cryptographic primitives used by chatkeeper:
// AES-256-GCM sealing for keys and fields, argon2id password hashing and the
// legacy shift codec kept for reading old chat rows.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
)

// KeySize is the length in bytes of user keys and of the master key.
const KeySize = 32

var (
	// ErrDecrypt is returned when a payload fails authentication or cannot be
	// decoded. It wraps common.ErrCrypto.
	ErrDecrypt = fmt.Errorf("%w: decryption failed", common.ErrCrypto)

	// ErrKeySize is returned for keys that are not KeySize bytes long.
	ErrKeySize = fmt.Errorf("%w: invalid key size", common.ErrCrypto)
)

// GenerateKey returns KeySize fresh random bytes.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// KeyID returns a short fingerprint of key. It identifies which key sealed a
// record without revealing anything usable about the key itself.
func KeyID(key []byte) string {
	h := sha256.New()
	h.Write([]byte("chatkeeper/key-id/v1\x00"))
	h.Write(key)
	return hex.EncodeToString(h.Sum(nil)[:8])
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-256-GCM under key. A random nonce is
// generated for every call and prepended to the returned ciphertext.
func Seal(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. Truncated input, a wrong key and tampered data all
// yield ErrDecrypt.
func Open(sealed, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns+aesgcm.Overhead() {
		return nil, ErrDecrypt
	}

	plaintext, err := aesgcm.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// WrapKey seals userKey under masterKey and returns it as base64 text
// suitable for a TEXT column.
//
// Example:
//
//	userKey, _ := cryptox.GenerateKey()
//	wrapped, err := cryptox.WrapKey(userKey, masterKey)
//	if err != nil {
//	    return err
//	}
//	// later
//	userKey, err = cryptox.UnwrapKey(wrapped, masterKey)
func WrapKey(userKey, masterKey []byte) (string, error) {
	if len(userKey) != KeySize {
		return "", ErrKeySize
	}
	sealed, err := Seal(userKey, masterKey)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// UnwrapKey recovers a user key produced by WrapKey. A corrupt payload or a
// different master key yields ErrDecrypt.
func UnwrapKey(wrapped string, masterKey []byte) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, ErrDecrypt
	}
	key, err := Open(sealed, masterKey)
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		return nil, ErrDecrypt
	}
	return key, nil
}

// EncryptField seals a text field under key and returns base64 text.
func EncryptField(plaintext string, key []byte) (string, error) {
	sealed, err := Seal([]byte(plaintext), key)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptField reverses EncryptField.
func DecryptField(ciphertext string, key []byte) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	plaintext, err := Open(sealed, key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// IsDecryptError reports whether err came from a failed Open.
func IsDecryptError(err error) bool {
	return errors.Is(err, ErrDecrypt)
}
