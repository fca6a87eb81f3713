package constants

import "time"

// FrequencyType represents how often a habit is scheduled
type FrequencyType string

// TrackingType represents how a habit occurrence is measured
type TrackingType string

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitual"
	DefaultKeyringUser = "database-connection"
	SMTPKeyringUser    = "smtp-password"
	DefaultConfigPath  = "~/.config/habitual/habitual.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitual-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "habitual-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.habitual"
	TrayExecutablePrefix   = "habitual-tray"
	TraySecretHeader       = "X-Habitual-Secret"

	// Frequency constants
	FrequencyDaily  FrequencyType = "daily"
	FrequencyWeekly FrequencyType = "weekly"

	// Tracking constants
	TrackingCompletion TrackingType = "completion"
	TrackingProgress   TrackingType = "progress"

	// Entry defaults
	DefaultFeeling = 3
	MinFeeling     = 1
	MaxFeeling     = 5
)

// Session States
const (
	StateToday SessionState = iota
	StateStats
	StateMilestones
	StateAddHabit
	StateLogProgress
	StateConfirmDelete
)
