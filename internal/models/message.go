package models

// Cipher names recorded with each chat row.
const (
	CipherNone  = "none"
	CipherShift = "shift"
	CipherAEAD  = "aead"
)

// ChatMessage is one row of the append-only chat ledger. When read through
// the message service, Message and Response are already plaintext; the flags
// describe how they are stored.
type ChatMessage struct {
	ID                int64
	Username          string
	Message           string
	Role              string
	Encrypted         bool
	Response          string
	ResponseEncrypted bool
	Cipher            string
	// KeyID fingerprints the user key that sealed the row, empty when the
	// cipher needs no user key.
	KeyID string
}
