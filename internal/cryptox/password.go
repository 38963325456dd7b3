package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

// PasswordParams are the argon2id cost parameters used for new hashes.
// Stored hashes carry their own parameters, so changing these only affects
// hashes created afterwards.
type PasswordParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	SaltLen   uint32
	KeyLen    uint32
}

// DefaultPasswordParams matches the cost used for key derivation elsewhere:
// one pass, 64 MiB, four lanes.
var DefaultPasswordParams = PasswordParams{
	Time:      1,
	MemoryKiB: 64 * 1024,
	Threads:   4,
	SaltLen:   16,
	KeyLen:    32,
}

// ErrMalformedHash is returned by VerifyPassword for strings it cannot parse.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword derives an argon2id hash of password with a random salt and
// encodes it in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func HashPassword(password []byte, p PasswordParams) (string, error) {
	if p.SaltLen == 0 || p.KeyLen == 0 || p.Threads == 0 || p.Time == 0 {
		return "", fmt.Errorf("%w: invalid argon2 parameters", common.ErrValidation)
	}

	salt := common.GenerateRandByteArray(int(p.SaltLen))
	sum := argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// VerifyPassword checks password against an encoded hash in constant time.
// A mismatch returns (false, nil); only unparsable hashes produce an error.
func VerifyPassword(password []byte, encoded string) (bool, error) {
	p, salt, sum, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, uint32(len(sum)))
	defer common.WipeByteArray(candidate)

	return subtle.ConstantTimeCompare(sum, candidate) == 1, nil
}

func decodeHash(encoded string) (PasswordParams, []byte, []byte, error) {
	var p PasswordParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrMalformedHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return p, nil, nil, ErrMalformedHash
	}

	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(sum))
	return p, salt, sum, nil
}
