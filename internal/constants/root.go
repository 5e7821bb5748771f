package constants

import "time"

const (
	AppName            = "momentum"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/momentum"
	DefaultDBPath      = "~/.config/momentum/momentum.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DateTimeFormat is used when a completion is entered with a time of day
	DateTimeFormat = "2006-01-02 15:04"

	// Analytics windows
	RateWindowDays  = 28
	RateWindowWeeks = 4

	// DefaultGoalPeriodDays is the goal period used when none is given
	DefaultGoalPeriodDays = 28

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "momentum-"
	BackupFileSuffix = ".db"

	// Lockfile constants
	LockfileName     = "momentum.lock"
	LockRetries      = 20
	LockRetryDelay   = 50 * time.Millisecond
	LockGuardTimeout = 10 * time.Second
	UncategorizedTag = "Uncategorized"

	// SQLiteBusyTimeout bounds how long a connection waits on a held write lock
	SQLiteBusyTimeout = 5 * time.Second
)
