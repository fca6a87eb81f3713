package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// Days are civil calendar dates. They are held as midnight UTC so that day
// arithmetic never crosses a DST transition; the user's timezone only
// matters when deciding which date "today" is.

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// CivilDay returns the calendar date of t in its own location.
func CivilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD string into a calendar date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// MustParseDay is ParseDay for literals known to be valid.
func MustParseDay(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// DayKey formats a calendar date as the log key YYYY-MM-DD.
func DayKey(day time.Time) string {
	return day.Format(constants.DateFormat)
}

// AddDays shifts a calendar date by n days.
func AddDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

// WeekStart returns the Sunday on or before day.
func WeekStart(day time.Time) time.Time {
	return AddDays(day, -int(day.Weekday()))
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(CivilDay(b).Sub(CivilDay(a)).Hours() / 24)
}

// ParseTime parses a time string in the standard format (HH:MM).
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(constants.TimeFormat, timeStr)
}

// ValidateTimeFormat checks if the string matches the standard time format.
func ValidateTimeFormat(timeStr string) bool {
	_, err := ParseTime(timeStr)
	return err == nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
