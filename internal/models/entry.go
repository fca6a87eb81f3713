package models

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Entry is one day's record of a habit
type Entry struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	Completed bool      `json:"completed"`
	Feeling   int       `json:"feeling"`
	Progress  string    `json:"progress,omitempty"` // raw numeric text, uncapped
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseProgress parses an amount of progress. NaN and infinities are
// rejected along with anything that is not a number.
func ParseProgress(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ProgressValue parses the recorded progress. Missing, non-numeric or
// non-finite progress counts as zero.
func (e Entry) ProgressValue() float64 {
	v, _ := ParseProgress(e.Progress)
	return v
}

// Log indexes entries by day, then by habit ID. A day key is present only
// while at least one entry exists for that day.
type Log map[string]map[string]Entry

// NewLog builds a Log from a flat list of entries.
func NewLog(entries []Entry) Log {
	l := Log{}
	for _, e := range entries {
		l.Put(e)
	}
	return l
}

// Get returns the entry for a habit on a day.
func (l Log) Get(day, habitID string) (Entry, bool) {
	byHabit, ok := l[day]
	if !ok {
		return Entry{}, false
	}
	e, ok := byHabit[habitID]
	return e, ok
}

// Has reports whether an entry exists for a habit on a day.
func (l Log) Has(day, habitID string) bool {
	_, ok := l.Get(day, habitID)
	return ok
}

// Put inserts or replaces an entry.
func (l Log) Put(e Entry) {
	byHabit, ok := l[e.Day]
	if !ok {
		byHabit = map[string]Entry{}
		l[e.Day] = byHabit
	}
	byHabit[e.HabitID] = e
}

// Remove deletes an entry, dropping the day key once it is empty.
func (l Log) Remove(day, habitID string) {
	byHabit, ok := l[day]
	if !ok {
		return
	}
	delete(byHabit, habitID)
	if len(byHabit) == 0 {
		delete(l, day)
	}
}

// Days returns the logged days in ascending order.
func (l Log) Days() []string {
	days := make([]string, 0, len(l))
	for d := range l {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// Len returns the total number of entries.
func (l Log) Len() int {
	n := 0
	for _, byHabit := range l {
		n += len(byHabit)
	}
	return n
}

// ForHabit returns every entry of a habit in day order.
func (l Log) ForHabit(habitID string) []Entry {
	var out []Entry
	for _, d := range l.Days() {
		if e, ok := l[d][habitID]; ok {
			out = append(out, e)
		}
	}
	return out
}
