package constants

const (
	// General Settings
	SettingTimezone         = "timezone"
	SettingRemindersEnabled = "reminders_enabled"
	SettingReminderChannel  = "reminder_channel"
	SettingShowGaps         = "show_gaps"

	// Reminder channels
	ChannelTray    = "tray"
	ChannelCommand = "command"
	ChannelEmail   = "email"

	// Default Settings Values
	DefaultTimezone         = "Local" // Use system local timezone by default
	DefaultRemindersEnabled = true
	DefaultReminderChannel  = ChannelTray
	DefaultShowGaps         = true
)
