package models

import (
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

func TestHabit_Normalize(t *testing.T) {
	daily := Habit{
		Frequency:    constants.FrequencyDaily,
		WeeklyDays:   []time.Weekday{time.Monday},
		TrackingType: constants.TrackingCompletion,
		Target:       5,
		Units:        "pages",
	}
	daily.Normalize()
	if daily.WeeklyDays != nil {
		t.Errorf("daily habit kept weekly days: %v", daily.WeeklyDays)
	}
	if daily.Target != 0 || daily.Units != "" {
		t.Errorf("completion habit kept target/units: %v %q", daily.Target, daily.Units)
	}

	weekly := Habit{
		Frequency:    constants.FrequencyWeekly,
		WeeklyDays:   []time.Weekday{time.Friday, time.Monday, time.Friday},
		TrackingType: constants.TrackingProgress,
		Target:       10,
		Units:        "km",
	}
	weekly.Normalize()
	if len(weekly.WeeklyDays) != 2 || weekly.WeeklyDays[0] != time.Monday || weekly.WeeklyDays[1] != time.Friday {
		t.Errorf("weekly days = %v, want [Monday Friday]", weekly.WeeklyDays)
	}
	if weekly.Target != 10 || weekly.Units != "km" {
		t.Error("progress habit lost target/units")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.Timezone = "Europe/London"

	got, err := MapToSettings(SettingsToMap(s))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if got != s {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}

	if _, err := MapToSettings(map[string]string{constants.SettingReminderChannel: "pigeon"}); err == nil {
		t.Error("expected error for unknown reminder channel")
	}
}
