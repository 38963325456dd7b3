// Package config loads runtime configuration for chatkeeper.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with CHATKEEPER_.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   SQLite database file (default "DB/chat.db")
//	-e string   dotenv file holding the master key (default ".env")
//	-s int      session lifetime in minutes (default 30)
//	-w int      expired-session sweep interval in minutes, 0 disables (default 5)
//	-m string   cipher for new chat rows: aead or shift (default "aead")
//	-n int      number of messages shown by "history" (default 10)
//	-l string   log level: debug, info, warn, error (default "info")
//	-f string   log format: text, json, zerolog (default "text")
//	-b string   local backup directory (default "backup")
//
// # JSON schema
//
// Durations are timex.Duration values, so "30m" and 1800000000000 are both
// accepted:
//
//	{
//	  "database_dsn": "DB/chat.db",
//	  "session_duration": "30m",
//	  "message_cipher": "aead",
//	  "s3_bucket": "chat-backups"
//	}
package config
