package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/chatkeeper/internal/flagx"
	"github.com/dmitrijs2005/chatkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from a zero value so a partial file only
// overrides what it names.
type JsonConfig struct {
	DatabaseDSN      *string         `json:"database_dsn"`
	EnvFile          *string         `json:"env_file"`
	MasterKeyVar     *string         `json:"master_key_var"`
	SessionDuration  *timex.Duration `json:"session_duration"`
	SweepInterval    *timex.Duration `json:"sweep_interval"`
	MessageCipher    *string         `json:"message_cipher"`
	HistorySize      *int            `json:"history_size"`
	AdminEmailMarker *string         `json:"admin_email_marker"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
	BackupDir        *string         `json:"backup_dir"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Prefix         *string         `json:"s3_prefix"`
	S3Region         *string         `json:"s3_region"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
}

// parseJson overlays cfg with the file named by -c/-config in args. Without
// the flag nothing happens.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.EnvFile, jc.EnvFile)
	setString(&cfg.MasterKeyVar, jc.MasterKeyVar)
	if jc.SessionDuration != nil {
		cfg.SessionDuration = jc.SessionDuration.Duration
	}
	if jc.SweepInterval != nil {
		cfg.SweepInterval = jc.SweepInterval.Duration
	}
	setString(&cfg.MessageCipher, jc.MessageCipher)
	if jc.HistorySize != nil {
		cfg.HistorySize = *jc.HistorySize
	}
	setString(&cfg.AdminEmailMarker, jc.AdminEmailMarker)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.BackupDir, jc.BackupDir)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Prefix, jc.S3Prefix)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
