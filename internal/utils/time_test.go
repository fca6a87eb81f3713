package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone America/New_York", timezone: "America/New_York", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestCivilDayIgnoresClockTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	// 23:30 local on March 9th is already the 10th in UTC
	late := time.Date(2024, 3, 9, 23, 30, 0, 0, ny)
	if got := DayKey(CivilDay(late)); got != "2024-03-09" {
		t.Errorf("CivilDay() = %s, want 2024-03-09", got)
	}
}

func TestAddDaysAcrossDST(t *testing.T) {
	// US DST began on 2024-03-10; civil arithmetic must not drift.
	start := MustParseDay("2024-03-09")
	if got := DayKey(AddDays(start, 2)); got != "2024-03-11" {
		t.Errorf("AddDays() = %s, want 2024-03-11", got)
	}
	if got := DaysBetween(start, MustParseDay("2024-03-11")); got != 2 {
		t.Errorf("DaysBetween() = %d, want 2", got)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{day: "2024-03-03", want: "2024-03-03"}, // Sunday
		{day: "2024-03-06", want: "2024-03-03"}, // Wednesday
		{day: "2024-03-09", want: "2024-03-03"}, // Saturday
		{day: "2024-03-01", want: "2024-02-25"}, // crosses month
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			if got := DayKey(WeekStart(MustParseDay(tt.day))); got != tt.want {
				t.Errorf("WeekStart(%s) = %s, want %s", tt.day, got, tt.want)
			}
		})
	}
}

func TestParseDay(t *testing.T) {
	if _, err := ParseDay("2024-02-30"); err == nil {
		t.Error("expected error for impossible date")
	}
	if _, err := ParseDay("03/01/2024"); err == nil {
		t.Error("expected error for wrong format")
	}
	d, err := ParseDay("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDay() error = %v", err)
	}
	if d.Weekday() != time.Thursday {
		t.Errorf("2024-02-29 weekday = %v, want Thursday", d.Weekday())
	}
}

func TestValidateTimeFormat(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"07:30", true},
		{"23:59", true},
		{"24:00", false},
		{"7am", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateTimeFormat(tt.in); got != tt.want {
			t.Errorf("ValidateTimeFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
