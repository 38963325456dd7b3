package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	err := parseEnv(cfg, map[string]string{
		"CHATKEEPER_SESSION_DURATION": "1h",
		"CHATKEEPER_MESSAGE_CIPHER":   "shift",
		"CHATKEEPER_PASSWORD_THREADS": "2",
		"CHATKEEPER_S3_ACCESS_KEY":    "AKIA",
		"UNRELATED":                   "x",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.SessionDuration)
	assert.Equal(t, "shift", cfg.MessageCipher)
	assert.Equal(t, uint8(2), cfg.PasswordThreads)
	assert.Equal(t, "AKIA", cfg.S3AccessKey)
	assert.Equal(t, "DB/chat.db", cfg.DatabaseDSN, "unset variables keep defaults")
}

func TestParseEnv_BadValue(t *testing.T) {
	cfg := &Config{}
	err := parseEnv(cfg, map[string]string{"CHATKEEPER_HISTORY_SIZE": "many"})
	require.Error(t, err)
}
