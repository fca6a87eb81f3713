// Package legacy reads the JSON export of the browser version of the app
// (its localStorage keys habits, completions, weeklyHistory and milestones)
// and converts it into habitual's records.
//
// Habits in the export are identified by list position. Each position gets a
// fresh UUID on import; entries and milestone records are re-keyed to it.
package legacy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// Export mirrors the browser app's saved state
type Export struct {
	Habits        []Habit                    `json:"habits"`
	Completions   map[string]json.RawMessage `json:"completions"`
	WeeklyHistory map[string]float64         `json:"weeklyHistory"`
	Milestones    map[string]Milestone       `json:"milestones"`
}

type Habit struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Frequency    string `json:"frequency"`
	WeeklyDays   []int  `json:"weeklyDays"`
	TrackingType string `json:"trackingType"`
	Units        string `json:"units"`
	Target       Number `json:"target"`
	StartTime    string `json:"startTime"`
}

// Milestone is keyed "<index>_<title>" in the export
type Milestone struct {
	Achieved  []float64 `json:"achieved"`
	LastCount Number    `json:"lastCount"`
}

// record is the object form of a completion
type record struct {
	Completed *bool  `json:"completed"`
	Feeling   Number `json:"feeling"`
	Progress  Number `json:"progress"`
	Notes     string `json:"notes"`
}

// Number accepts a JSON number, a numeric string, or an empty string. The
// browser app stored form inputs as typed, so both forms occur.
type Number struct {
	Value float64
	Raw   string
	Set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}
	if raw == "" {
		*n = Number{}
		return nil
	}
	v, ok := models.ParseProgress(raw)
	if !ok {
		// Non-numeric or non-finite text is kept raw and reads as zero.
		*n = Number{Raw: raw}
		return nil
	}
	*n = Number{Value: v, Raw: raw, Set: true}
	return nil
}

// Result is an export converted to habitual records
type Result struct {
	Habits        []models.Habit
	Entries       []models.Entry
	WeeklyHistory models.WeeklyHistory
	Milestones    map[string][]float64 // habit ID -> achieved thresholds
	Skipped       []string             // human-readable notes on dropped data
}

// Load reads and parses an export file.
func Load(path string) (*Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return Parse(data)
}

// Parse decodes an export.
func Parse(data []byte) (*Export, error) {
	var exp Export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	return &exp, nil
}

// Convert maps the export onto new habits and entries. Entries dated after
// today, entries for positions without a habit, and unrecognised record
// shapes are dropped and noted in Skipped.
func (e *Export) Convert(today, now time.Time) *Result {
	res := &Result{
		WeeklyHistory: models.WeeklyHistory{},
		Milestones:    map[string][]float64{},
	}

	ids := make([]string, len(e.Habits))
	for i, lh := range e.Habits {
		h := lh.toHabit(i, now)
		ids[i] = h.ID
		res.Habits = append(res.Habits, h)
	}

	feelings := e.sideTable("_feelings")

	days := make([]string, 0, len(e.Completions))
	for day := range e.Completions {
		days = append(days, day)
	}
	sort.Strings(days)

	for _, day := range days {
		if strings.HasPrefix(day, "_") {
			continue
		}
		d, err := utils.ParseDay(day)
		if err != nil {
			res.skip("invalid date key %q", day)
			continue
		}
		if d.After(today) {
			res.skip("future date %s", day)
			continue
		}

		for idx, raw := range decodeDay(e.Completions[day]) {
			if idx < 0 || idx >= len(ids) {
				res.skip("%s: no habit at position %d", day, idx)
				continue
			}
			entry, ok := toEntry(raw)
			if !ok {
				continue
			}
			entry.ID = uuid.New().String()
			entry.HabitID = ids[idx]
			entry.Day = day
			entry.CreatedAt = now
			entry.UpdatedAt = now
			if entry.Feeling == 0 {
				entry.Feeling = feelings.get(day, idx)
			}
			if entry.Feeling < constants.MinFeeling || entry.Feeling > constants.MaxFeeling {
				entry.Feeling = constants.DefaultFeeling
			}
			res.Entries = append(res.Entries, entry)
		}
	}

	for week, pct := range e.WeeklyHistory {
		if _, err := utils.ParseDay(week); err != nil {
			res.skip("invalid weekly history key %q", week)
			continue
		}
		res.WeeklyHistory[week] = pct
	}

	for key, m := range e.Milestones {
		id, ok := e.milestoneOwner(key, ids)
		if !ok {
			res.skip("milestone record %q matches no habit", key)
			continue
		}
		res.Milestones[id] = append(res.Milestones[id], m.Achieved...)
	}

	return res
}

func (r *Result) skip(format string, args ...any) {
	r.Skipped = append(r.Skipped, fmt.Sprintf(format, args...))
}

func (lh Habit) toHabit(position int, now time.Time) models.Habit {
	h := models.Habit{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(lh.Title),
		Description:  lh.Description,
		Frequency:    constants.FrequencyDaily,
		TrackingType: constants.TrackingCompletion,
		Units:        strings.TrimSpace(lh.Units),
		Target:       lh.Target.Value,
		StartTime:    lh.StartTime,
		Position:     position,
		CreatedAt:    now,
	}
	if lh.Frequency == string(constants.FrequencyWeekly) {
		h.Frequency = constants.FrequencyWeekly
		for _, d := range lh.WeeklyDays {
			if d >= 0 && d <= 6 {
				h.WeeklyDays = append(h.WeeklyDays, time.Weekday(d))
			}
		}
	}
	if lh.TrackingType == string(constants.TrackingProgress) {
		h.TrackingType = constants.TrackingProgress
	}
	h.Normalize()
	return h
}

// decodeDay returns the records of one date keyed by habit position. The
// browser app wrote both sparse arrays and index-keyed objects.
func decodeDay(raw json.RawMessage) map[int]json.RawMessage {
	out := map[int]json.RawMessage{}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		for i, r := range arr {
			out[i] = r
		}
		return out
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		for k, r := range obj {
			if i, err := strconv.Atoi(k); err == nil {
				out[i] = r
			}
		}
	}
	return out
}

// toEntry normalises one completion. true and objects count as logged;
// false, null and anything else do not.
func toEntry(raw json.RawMessage) (models.Entry, bool) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("true")) {
		return models.Entry{Completed: true}, true
	}
	if len(raw) == 0 || raw[0] != '{' {
		return models.Entry{}, false
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return models.Entry{}, false
	}
	if rec.Completed != nil && !*rec.Completed {
		return models.Entry{}, false
	}
	e := models.Entry{
		Completed: true,
		Feeling:   int(rec.Feeling.Value),
		Notes:     rec.Notes,
	}
	if rec.Progress.Set {
		e.Progress = rec.Progress.Raw
	}
	return e, true
}

type sideTable map[string]map[int]int

func (t sideTable) get(day string, idx int) int {
	return t[day][idx]
}

// sideTable decodes the per-date arrays the oldest format kept beside the
// boolean completions, such as _feelings.
func (e *Export) sideTable(key string) sideTable {
	t := sideTable{}
	raw, ok := e.Completions[key]
	if !ok {
		return t
	}
	var byDay map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byDay); err != nil {
		return t
	}
	for day, dayRaw := range byDay {
		t[day] = map[int]int{}
		for idx, v := range decodeDay(dayRaw) {
			var n Number
			if err := json.Unmarshal(v, &n); err == nil && n.Set {
				t[day][idx] = int(n.Value)
			}
		}
	}
	return t
}

// milestoneOwner resolves an "<index>_<title>" key. The index must exist and
// its habit's title must match, since reordering in the browser app left
// stale keys behind.
func (e *Export) milestoneOwner(key string, ids []string) (string, bool) {
	idxStr, title, ok := strings.Cut(key, "_")
	if !ok {
		return "", false
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 || idx >= len(e.Habits) {
		return "", false
	}
	if strings.TrimSpace(e.Habits[idx].Title) != strings.TrimSpace(title) {
		return "", false
	}
	return ids[idx], true
}
