// Package masterkey loads the process-wide key that wraps every user key.
//
// The key lives outside the database: in an environment variable, usually
// populated from a dotenv file. On first run a key is generated and appended
// to that file so later runs can unwrap what this one wrapped.
package masterkey

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/cryptox"
	"github.com/joho/godotenv"
)

// Load returns the master key named by varName.
//
// Lookup order: the process environment, then envFile. When neither has it,
// a new key is generated, written to envFile (existing entries are kept) and
// exported into the environment. created reports that last case.
func Load(envFile, varName string) (key []byte, created bool, err error) {
	if varName == "" {
		varName = common.MasterKeyEnvVar
	}

	if v, ok := os.LookupEnv(varName); ok && v != "" {
		key, err = Decode(v)
		return key, false, err
	}

	entries, err := readEnvFile(envFile)
	if err != nil {
		return nil, false, err
	}
	if v := entries[varName]; v != "" {
		key, err = Decode(v)
		if err != nil {
			return nil, false, err
		}
		return key, false, os.Setenv(varName, v)
	}

	key, err = cryptox.GenerateKey()
	if err != nil {
		return nil, false, err
	}
	encoded := Encode(key)

	if envFile != "" {
		entries[varName] = encoded
		if err := godotenv.Write(entries, envFile); err != nil {
			return nil, false, fmt.Errorf("write %s: %w", envFile, err)
		}
		if err := os.Chmod(envFile, 0o600); err != nil {
			return nil, false, fmt.Errorf("chmod %s: %w", envFile, err)
		}
	}

	return key, true, os.Setenv(varName, encoded)
}

// Encode renders a key the way it is stored in the environment.
func Encode(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// Decode parses a stored key, failing with common.ErrCrypto on anything
// that is not a base64 encoded key of cryptox.KeySize bytes.
func Decode(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: master key is not valid base64", common.ErrCrypto)
	}
	if len(key) != cryptox.KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", common.ErrCrypto, cryptox.KeySize, len(key))
	}
	return key, nil
}

func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	entries, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}
