// Package reminder schedules per-habit reminders on a cron clock and
// delivers them over the configured channel.
package reminder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// ErrNoReminder is returned for habits without a start time
var ErrNoReminder = errors.New("habit has no reminder time")

// parser accepts standard 5-field expressions (minute, hour, dom, month, dow).
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Reminder is one delivery for a habit
type Reminder struct {
	HabitID string
	Title   string
	Time    string
	Message string
}

// Spec returns the cron expression for a habit's reminder: every day at
// the start time, or only on the selected weekdays for weekly habits.
func Spec(h models.Habit) (string, error) {
	if !h.HasReminder() {
		return "", ErrNoReminder
	}
	t, err := utils.ParseTime(h.StartTime)
	if err != nil {
		return "", fmt.Errorf("invalid reminder time %q: %w", h.StartTime, err)
	}

	days := "*"
	if h.IsWeekly() {
		if len(h.WeeklyDays) == 0 {
			return "", fmt.Errorf("weekly habit %q has no days selected", h.Title)
		}
		parts := make([]string, len(h.WeeklyDays))
		for i, d := range h.WeeklyDays {
			parts[i] = strconv.Itoa(int(d))
		}
		days = strings.Join(parts, ",")
	}
	return fmt.Sprintf("%d %d * * %s", t.Minute(), t.Hour(), days), nil
}

// Render fills the message template for a habit.
func Render(tmpl string, h models.Habit) string {
	target := ""
	if h.IsProgress() {
		target = strconv.FormatFloat(h.Target, 'f', -1, 64)
	}
	r := strings.NewReplacer(
		"{{.Title}}", h.Title,
		"{{.Time}}", h.StartTime,
		"{{.Target}}", target,
		"{{.Units}}", h.Units,
	)
	return r.Replace(tmpl)
}

func newReminder(tmpl string, h models.Habit) Reminder {
	return Reminder{
		HabitID: h.ID,
		Title:   h.Title,
		Time:    h.StartTime,
		Message: Render(tmpl, h),
	}
}
