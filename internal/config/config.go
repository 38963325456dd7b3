package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/chatkeeper/internal/common"
	"github.com/dmitrijs2005/chatkeeper/internal/cryptox"
	"github.com/dmitrijs2005/chatkeeper/internal/models"
)

// Config holds runtime settings.
type Config struct {
	DatabaseDSN  string `env:"DATABASE_DSN"`
	EnvFile      string `env:"ENV_FILE"`
	MasterKeyVar string `env:"MASTER_KEY_VAR"`

	SessionDuration time.Duration `env:"SESSION_DURATION"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL"`

	MessageCipher    string `env:"MESSAGE_CIPHER"`
	HistorySize      int    `env:"HISTORY_SIZE"`
	AdminEmailMarker string `env:"ADMIN_EMAIL_MARKER"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	PasswordTime      uint32 `env:"PASSWORD_TIME"`
	PasswordMemoryKiB uint32 `env:"PASSWORD_MEMORY_KIB"`
	PasswordThreads   uint8  `env:"PASSWORD_THREADS"`

	BackupDir      string `env:"BACKUP_DIR"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Prefix       string `env:"S3_PREFIX"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "DB/chat.db"
	c.EnvFile = ".env"
	c.MasterKeyVar = common.MasterKeyEnvVar

	c.SessionDuration = 30 * time.Minute
	c.SweepInterval = 5 * time.Minute

	c.MessageCipher = models.CipherAEAD
	c.HistorySize = 10
	c.AdminEmailMarker = "ve7ltx"

	c.LogLevel = "info"
	c.LogFormat = "text"

	c.PasswordTime = cryptox.DefaultPasswordParams.Time
	c.PasswordMemoryKiB = cryptox.DefaultPasswordParams.MemoryKiB
	c.PasswordThreads = cryptox.DefaultPasswordParams.Threads

	c.BackupDir = "backup"
	c.S3Prefix = "chatkeeper/"
	c.S3Region = "us-east-1"
}

// PasswordParams returns the argon2id cost settings for new password hashes.
func (c *Config) PasswordParams() cryptox.PasswordParams {
	p := cryptox.DefaultPasswordParams
	p.Time = c.PasswordTime
	p.MemoryKiB = c.PasswordMemoryKiB
	p.Threads = c.PasswordThreads
	return p
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("%w: database dsn is empty", common.ErrValidation)
	}
	if c.SessionDuration <= 0 {
		return fmt.Errorf("%w: session duration must be positive", common.ErrValidation)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("%w: sweep interval must not be negative", common.ErrValidation)
	}
	switch c.MessageCipher {
	case models.CipherAEAD, models.CipherShift:
	default:
		return fmt.Errorf("%w: unknown message cipher %q", common.ErrValidation, c.MessageCipher)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("%w: history size must be positive", common.ErrValidation)
	}
	if c.PasswordTime == 0 || c.PasswordThreads == 0 {
		return fmt.Errorf("%w: argon2 time and threads must be positive", common.ErrValidation)
	}
	return nil
}

// Load builds a Config from defaults, the JSON file, the environment and
// args, in that order. Later sources take precedence.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, nil); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load applied to the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
