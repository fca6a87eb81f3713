package models

// Settings represents application-wide settings
type Settings struct {
	Timezone         string `json:"timezone"`          // IANA timezone name, or "Local" for system timezone
	RemindersEnabled bool   `json:"reminders_enabled"` // whether the reminder daemon should deliver anything
	ReminderChannel  string `json:"reminder_channel"`  // tray, command or email
	ShowGaps         bool   `json:"show_gaps"`         // whether gap counts are shown in summaries
}
