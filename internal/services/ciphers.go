package services

import (
	"context"

	"github.com/dmitrijs2005/chatkeeper/internal/cryptox"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

// TextCodec seals and opens chat text for one user.
type TextCodec interface {
	Seal(plaintext string) (string, error)
	Open(ciphertext string) (string, error)
	// KeyID fingerprints the user key behind the codec, "" if it has none.
	KeyID() string
}

// MessageCipher is a named scheme for chat rows. The name is stored with
// every row so old rows stay readable after the default changes.
type MessageCipher interface {
	Name() string
	Bind(ctx context.Context, username string) (TextCodec, error)
}

// ShiftCipher is the legacy code point shift. It keeps rows written by older
// deployments readable and offers no confidentiality.
type ShiftCipher struct{}

func (ShiftCipher) Name() string { return models.CipherShift }

func (ShiftCipher) Bind(context.Context, string) (TextCodec, error) {
	return shiftCodec{}, nil
}

type shiftCodec struct{}

func (shiftCodec) Seal(plaintext string) (string, error) {
	return cryptox.ShiftEncode(plaintext), nil
}

func (shiftCodec) Open(ciphertext string) (string, error) {
	return cryptox.ShiftDecode(ciphertext), nil
}

func (shiftCodec) KeyID() string { return "" }
