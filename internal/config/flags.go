package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/chatkeeper/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Flags owned by other
// loaders (such as -c) are filtered out first. Durations are in minutes.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("chatkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "SQLite database file")
	fs.StringVar(&cfg.EnvFile, "e", cfg.EnvFile, "dotenv file holding the master key")
	sessionMinutes := fs.Int("s", int(cfg.SessionDuration.Minutes()), "session lifetime (in minutes)")
	sweepMinutes := fs.Int("w", int(cfg.SweepInterval.Minutes()), "expired-session sweep interval (in minutes, 0 disables)")
	fs.StringVar(&cfg.MessageCipher, "m", cfg.MessageCipher, "cipher for new chat rows (aead|shift)")
	fs.IntVar(&cfg.HistorySize, "n", cfg.HistorySize, "messages shown by history")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text|json|zerolog)")
	fs.StringVar(&cfg.BackupDir, "b", cfg.BackupDir, "local backup directory")

	if err := flagx.Parse(fs, args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	// minute flags only override when given, so sub-minute values from
	// earlier sources survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "s":
			cfg.SessionDuration = time.Duration(*sessionMinutes) * time.Minute
		case "w":
			cfg.SweepInterval = time.Duration(*sweepMinutes) * time.Minute
		}
	})
	return nil
}
