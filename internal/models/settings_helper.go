package models

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingRemindersEnabled:
			settings.RemindersEnabled = value == "true"
		case constants.SettingReminderChannel:
			switch value {
			case constants.ChannelTray, constants.ChannelCommand, constants.ChannelEmail:
				settings.ReminderChannel = value
			default:
				return Settings{}, fmt.Errorf("parsing reminder_channel: unknown channel %q", value)
			}
		case constants.SettingShowGaps:
			settings.ShowGaps = value == "true"
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:         settings.Timezone,
		constants.SettingRemindersEnabled: fmt.Sprintf("%v", settings.RemindersEnabled),
		constants.SettingReminderChannel:  settings.ReminderChannel,
		constants.SettingShowGaps:         fmt.Sprintf("%v", settings.ShowGaps),
	}
}

// DefaultSettings returns the settings written on first initialization.
func DefaultSettings() Settings {
	return Settings{
		Timezone:         constants.DefaultTimezone,
		RemindersEnabled: constants.DefaultRemindersEnabled,
		ReminderChannel:  constants.DefaultReminderChannel,
		ShowGaps:         constants.DefaultShowGaps,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.ReminderChannel == "" {
		settings.ReminderChannel = constants.DefaultReminderChannel
	}
}
