package masterkey

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/cryptox"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVar = "CHATKEEPER_TEST_MASTER_KEY"

func unsetVar(t *testing.T) {
	t.Helper()
	t.Setenv(testVar, "")
	require.NoError(t, os.Unsetenv(testVar))
}

func TestLoad_GeneratesAndPersists(t *testing.T) {
	unsetVar(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("OPENAI_API_KEY=abc\n"), 0o600))

	key, created, err := Load(envFile, testVar)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, key, cryptox.KeySize)

	entries, err := godotenv.Read(envFile)
	require.NoError(t, err)
	assert.Equal(t, "abc", entries["OPENAI_API_KEY"], "existing entries are preserved")
	assert.Equal(t, Encode(key), entries[testVar])
	assert.Equal(t, Encode(key), os.Getenv(testVar))

	info, err := os.Stat(envFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_ReusesFileKey(t *testing.T) {
	unsetVar(t)
	envFile := filepath.Join(t.TempDir(), ".env")

	first, _, err := Load(envFile, testVar)
	require.NoError(t, err)

	require.NoError(t, os.Unsetenv(testVar))
	second, created, err := Load(envFile, testVar)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, second)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	key, err := cryptox.GenerateKey()
	require.NoError(t, err)
	t.Setenv(testVar, Encode(key))

	got, created, err := Load(filepath.Join(t.TempDir(), "missing.env"), testVar)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, key, got)
}

func TestLoad_InvalidKey(t *testing.T) {
	t.Setenv(testVar, "short")

	_, _, err := Load("", testVar)
	assert.ErrorIs(t, err, common.ErrCrypto)
}

func TestLoad_NoFile(t *testing.T) {
	unsetVar(t)

	key, created, err := Load("", testVar)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, key, cryptox.KeySize)
}

func TestDecode(t *testing.T) {
	_, err := Decode("!!!")
	assert.ErrorIs(t, err, common.ErrCrypto)

	_, err = Decode(Encode([]byte("sixteen byte key")))
	assert.ErrorIs(t, err, common.ErrCrypto)
}
