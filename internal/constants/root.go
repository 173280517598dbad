package constants

import "time"

const (
	AppName            = "innerlevel"
	DefaultKeyringUser = "database-connection"
	InsightKeyringUser = "insight-token"
	DefaultConfigDir   = "~/.config/innerlevel"
	ConfigFileName     = "config.yaml"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups    = 14
	BackupDirName = "backups"

	// Store lock constants
	LockFileName   = "innerlevel.lock"
	LockRetryDelay = 10 * time.Millisecond
	LockTimeout    = 10 * time.Second
)

// Backend names accepted by --store and store.backend
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)
