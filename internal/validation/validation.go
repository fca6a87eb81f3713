package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// ErrInvalid is wrapped by every error returned from ValidationResult.Err
var ErrInvalid = errors.New("validation failed")

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictEmptyTitle       ConflictType = "empty_title"
	ConflictDuplicateTitle   ConflictType = "duplicate_title"
	ConflictInvalidFrequency ConflictType = "invalid_frequency"
	ConflictMissingWeekdays  ConflictType = "missing_weekdays"
	ConflictInvalidWeekday   ConflictType = "invalid_weekday"
	ConflictInvalidTracking  ConflictType = "invalid_tracking_type"
	ConflictMissingTarget    ConflictType = "missing_target"
	ConflictMissingUnits     ConflictType = "missing_units"
	ConflictInvalidDateTime  ConflictType = "invalid_datetime"
	ConflictFutureDate       ConflictType = "future_date"
	ConflictInvalidFeeling   ConflictType = "invalid_feeling"
	ConflictInvalidProgress  ConflictType = "invalid_progress"
	ConflictMissingHabit     ConflictType = "missing_habit"
)

// Conflict represents a single problem found in a habit or entry
type Conflict struct {
	Type        ConflictType
	Description string
	Items       []string // Habit titles involved
	HabitIDs    []string // IDs of habits involved
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := "Conflicts detected:\n"
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Err returns nil when there are no conflicts, otherwise an error listing them.
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	msgs := make([]string, 0, len(vr.Conflicts))
	for _, c := range vr.Conflicts {
		msgs = append(msgs, c.Description)
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func (vr *ValidationResult) add(t ConflictType, h models.Habit, format string, args ...any) {
	vr.Conflicts = append(vr.Conflicts, Conflict{
		Type:        t,
		Description: fmt.Sprintf(format, args...),
		Items:       []string{h.Title},
		HabitIDs:    []string{h.ID},
	})
}

// Validator checks habits and entries before they reach storage
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabit checks a single habit against the habits already stored.
// existing may include h itself (when editing); it is matched by ID.
func (v *Validator) ValidateHabit(h models.Habit, existing []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	title := strings.TrimSpace(h.Title)
	if title == "" {
		result.add(ConflictEmptyTitle, h, "Habit title cannot be empty")
	} else {
		for _, other := range existing {
			if other.ID == h.ID || other.DeletedAt != nil {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(other.Title), title) {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictDuplicateTitle,
					Description: fmt.Sprintf("A habit titled \"%s\" already exists", other.Title),
					Items:       []string{h.Title, other.Title},
					HabitIDs:    []string{h.ID, other.ID},
				})
				break
			}
		}
	}

	switch h.Frequency {
	case constants.FrequencyDaily:
	case constants.FrequencyWeekly:
		if len(h.WeeklyDays) == 0 {
			result.add(ConflictMissingWeekdays, h, "Weekly habit \"%s\" needs at least one day", title)
		}
		for _, wd := range h.WeeklyDays {
			if wd < time.Sunday || wd > time.Saturday {
				result.add(ConflictInvalidWeekday, h, "Habit \"%s\" has invalid weekday %d", title, wd)
			}
		}
	default:
		result.add(ConflictInvalidFrequency, h, "Habit \"%s\" has unknown frequency %q", title, h.Frequency)
	}

	switch h.TrackingType {
	case constants.TrackingCompletion:
	case constants.TrackingProgress:
		if h.Target <= 0 {
			result.add(ConflictMissingTarget, h, "Progress habit \"%s\" needs a positive target", title)
		}
		if strings.TrimSpace(h.Units) == "" {
			result.add(ConflictMissingUnits, h, "Progress habit \"%s\" needs units", title)
		}
	default:
		result.add(ConflictInvalidTracking, h, "Habit \"%s\" has unknown tracking type %q", title, h.TrackingType)
	}

	if h.StartTime != "" && !utils.ValidateTimeFormat(h.StartTime) {
		result.add(ConflictInvalidDateTime, h, "Habit \"%s\" has invalid start time: %s (expected HH:MM)", title, h.StartTime)
	}

	return result
}

// ValidateHabits audits a stored habit list, reporting duplicate titles and
// any habit that would fail ValidateHabit.
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	titles := make(map[string][]models.Habit)
	for _, h := range habits {
		if h.DeletedAt != nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(h.Title))
		if key != "" {
			titles[key] = append(titles[key], h)
		}

		single := v.ValidateHabit(h, nil)
		result.Conflicts = append(result.Conflicts, single.Conflicts...)
	}

	for _, group := range titles {
		if len(group) < 2 {
			continue
		}
		c := Conflict{
			Type:        ConflictDuplicateTitle,
			Description: fmt.Sprintf("Duplicate habit title: \"%s\" (%d habits)", group[0].Title, len(group)),
		}
		for _, h := range group {
			c.Items = append(c.Items, h.Title)
			c.HabitIDs = append(c.HabitIDs, h.ID)
		}
		result.Conflicts = append(result.Conflicts, c)
	}

	return result
}

// ValidateEntry checks an entry for h. Entries dated after today are rejected.
func (v *Validator) ValidateEntry(h models.Habit, e models.Entry, today time.Time) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if e.HabitID != h.ID {
		result.add(ConflictMissingHabit, h, "Entry belongs to habit %s, not %s", e.HabitID, h.ID)
	}

	day, err := utils.ParseDay(e.Day)
	if err != nil {
		result.add(ConflictInvalidDateTime, h, "Entry for \"%s\" has invalid date: %s", h.Title, e.Day)
	} else if day.After(today) {
		result.add(ConflictFutureDate, h, "Entry for \"%s\" is dated %s, after today (%s)", h.Title, e.Day, utils.DayKey(today))
	}

	if e.Feeling < constants.MinFeeling || e.Feeling > constants.MaxFeeling {
		result.add(ConflictInvalidFeeling, h, "Feeling must be between %d and %d, got %d", constants.MinFeeling, constants.MaxFeeling, e.Feeling)
	}

	if h.IsProgress() && e.Completed {
		if strings.TrimSpace(e.Progress) == "" {
			result.add(ConflictInvalidProgress, h, "Progress habit \"%s\" needs an amount", h.Title)
		} else if v, ok := models.ParseProgress(e.Progress); !ok || v < 0 {
			result.add(ConflictInvalidProgress, h, "Progress for \"%s\" must be a non-negative number, got %q", h.Title, e.Progress)
		}
	}

	return result
}
