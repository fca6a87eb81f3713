package settings

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone         *string `help:"IANA timezone used to decide what 'today' is, or Local."`
	RemindersEnabled *bool   `help:"Enable or disable reminders."`
	ReminderChannel  *string `help:"Reminder channel: tray, command or email."`
	ShowGaps         *bool   `help:"Show missed-day gaps in stats."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.RemindersEnabled != nil {
		settings.RemindersEnabled = *c.RemindersEnabled
		updated = true
	}
	if c.ReminderChannel != nil {
		switch *c.ReminderChannel {
		case constants.ChannelTray, constants.ChannelCommand, constants.ChannelEmail:
		default:
			return fmt.Errorf("unknown reminder channel %q (expected tray, command or email)", *c.ReminderChannel)
		}
		settings.ReminderChannel = *c.ReminderChannel
		updated = true
	}
	if c.ShowGaps != nil {
		settings.ShowGaps = *c.ShowGaps
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Println("Settings updated successfully.")
	}
	if c.List || !updated {
		printSettings(settings)
	}
	return nil
}

func printSettings(s models.Settings) {
	fmt.Println("Current Settings:")
	fmt.Printf("  Timezone:          %s\n", s.Timezone)
	fmt.Printf("  Show Gaps:         %v\n", s.ShowGaps)
	fmt.Println("\nReminder Settings:")
	fmt.Printf("  Reminders Enabled: %v\n", s.RemindersEnabled)
	fmt.Printf("  Reminder Channel:  %s\n", s.ReminderChannel)
}
