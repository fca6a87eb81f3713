package models

import (
	"slices"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID           string                  `json:"id"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description,omitempty"`
	Frequency    constants.FrequencyType `json:"frequency"`
	WeeklyDays   []time.Weekday          `json:"weekly_days,omitempty"` // 0=Sunday, ignored unless weekly
	TrackingType constants.TrackingType  `json:"tracking_type"`
	Target       float64                 `json:"target,omitempty"` // per-occurrence goal for progress habits
	Units        string                  `json:"units,omitempty"`
	StartTime    string                  `json:"start_time,omitempty"` // HH:MM, enables reminders
	Position     int                     `json:"position"`
	CreatedAt    time.Time               `json:"created_at"`
	ArchivedAt   *time.Time              `json:"archived_at,omitempty"`
	DeletedAt    *time.Time              `json:"deleted_at,omitempty"`
}

// IsProgress reports whether the habit is measured against a numeric target.
func (h Habit) IsProgress() bool {
	return h.TrackingType == constants.TrackingProgress
}

// IsWeekly reports whether the habit only runs on selected weekdays.
func (h Habit) IsWeekly() bool {
	return h.Frequency == constants.FrequencyWeekly
}

// RunsOn reports whether wd is one of the habit's selected weekdays.
func (h Habit) RunsOn(wd time.Weekday) bool {
	return slices.Contains(h.WeeklyDays, wd)
}

// HasReminder reports whether a reminder time has been set.
func (h Habit) HasReminder() bool {
	return h.StartTime != ""
}

// Normalize trims derived fields so daily habits carry no weekday set and
// completion habits carry no target.
func (h *Habit) Normalize() {
	if !h.IsWeekly() {
		h.WeeklyDays = nil
	} else {
		slices.Sort(h.WeeklyDays)
		h.WeeklyDays = slices.Compact(h.WeeklyDays)
	}
	if !h.IsProgress() {
		h.Target = 0
		h.Units = ""
	}
}
