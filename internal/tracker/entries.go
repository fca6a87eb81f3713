package tracker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/metrics"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
	"github.com/julianstephens/habitual/internal/validation"
)

// EntryInput describes one day's record before it is stored
type EntryInput struct {
	Day       string // YYYY-MM-DD; empty means today
	Completed bool
	Feeling   int // 0 means the default feeling
	Progress  string
	Notes     string
}

// LogResult reports what a log write changed
type LogResult struct {
	Entry         models.Entry
	NewMilestones []float64
	WeekStart     string
	WeekRate      float64
}

// LogEntry appends an entry. A second entry for the same habit and day is
// rejected with storage.ErrDuplicateEntry; use EditEntry to overwrite.
func (s *Service) LogEntry(habitID string, in EntryInput) (LogResult, error) {
	return s.writeEntry(habitID, in, false)
}

// EditEntry writes an entry, replacing any existing one for the same day.
func (s *Service) EditEntry(habitID string, in EntryInput) (LogResult, error) {
	return s.writeEntry(habitID, in, true)
}

func (s *Service) writeEntry(habitID string, in EntryInput, overwrite bool) (LogResult, error) {
	today, err := s.Today()
	if err != nil {
		return LogResult{}, err
	}
	if in.Day == "" {
		in.Day = utils.DayKey(today)
	}
	if in.Feeling == 0 {
		in.Feeling = constants.DefaultFeeling
	}

	unlock := s.lock(habitID)
	defer unlock()

	var res LogResult
	err = s.store.Atomically(func(r storage.Repository) error {
		h, err := r.GetHabit(habitID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %w", ErrHabitNotFound, err)
		}
		if err != nil {
			return err
		}
		if h.ArchivedAt != nil || h.DeletedAt != nil {
			return fmt.Errorf("%w: %s", ErrHabitInactive, h.Title)
		}

		now := s.now()
		entry := models.Entry{
			ID:        uuid.New().String(),
			HabitID:   h.ID,
			Day:       in.Day,
			Completed: in.Completed,
			Feeling:   in.Feeling,
			Progress:  in.Progress,
			Notes:     in.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := checkEntry(s.validator.ValidateEntry(h, entry, today)); err != nil {
			return err
		}

		if overwrite {
			prev, err := r.GetEntry(h.ID, entry.Day)
			switch {
			case err == nil:
				entry.ID = prev.ID
				entry.CreatedAt = prev.CreatedAt
			case !errors.Is(err, storage.ErrNotFound):
				return err
			}
			err = r.SaveEntry(entry)
			if err != nil {
				return err
			}
		} else if err := r.AddEntry(entry); err != nil {
			return err
		}

		res.Entry = entry
		if res.NewMilestones, err = s.updateMilestones(r, h); err != nil {
			return fmt.Errorf("failed to update milestones: %w", err)
		}
		day, _ := utils.ParseDay(entry.Day)
		res.WeekStart = utils.DayKey(utils.WeekStart(day))
		res.WeekRate, err = s.recordWeek(r, day, today)
		return err
	})
	if err != nil {
		return LogResult{}, err
	}

	s.log.Info("Entry logged", "habit", habitID, "day", res.Entry.Day, "completed", res.Entry.Completed)
	for _, m := range res.NewMilestones {
		s.log.Info("Milestone reached", "habit", habitID, "threshold", m)
	}
	return res, nil
}

// checkEntry turns a future-date conflict into ErrFutureDate so callers can
// match on it.
func checkEntry(result validation.ValidationResult) error {
	for _, c := range result.Conflicts {
		if c.Type == validation.ConflictFutureDate {
			return fmt.Errorf("%w: %s", ErrFutureDate, c.Description)
		}
	}
	return result.Err()
}

// RemoveEntry deletes the entry for habitID on day. Milestones already
// reached are kept.
func (s *Service) RemoveEntry(habitID, day string) error {
	today, err := s.Today()
	if err != nil {
		return err
	}
	d, err := utils.ParseDay(day)
	if err != nil {
		return err
	}

	unlock := s.lock(habitID)
	defer unlock()

	err = s.store.Atomically(func(r storage.Repository) error {
		if err := r.RemoveEntry(day, habitID); err != nil {
			return err
		}
		h, err := r.GetHabit(habitID)
		if err != nil {
			return err
		}
		if _, err := s.updateMilestones(r, h); err != nil {
			return fmt.Errorf("failed to update milestones: %w", err)
		}
		_, err = s.recordWeek(r, d, today)
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info("Entry removed", "habit", habitID, "day", day)
	return nil
}

// Toggle marks a completion as done for day, or removes it if it already
// is. It reports whether the habit is now completed. A progress habit with
// no amount recorded for day cannot be toggled on.
func (s *Service) Toggle(habitID, day string) (bool, error) {
	e, err := s.store.GetEntry(habitID, day)
	switch {
	case err == nil && e.Completed:
		return false, s.RemoveEntry(habitID, day)
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return false, err
	}

	if strings.TrimSpace(e.Progress) == "" {
		if h, err := s.store.GetHabit(habitID); err == nil && h.IsProgress() {
			return false, fmt.Errorf("%w: log it with 'habitual log %q -p <amount>'", ErrNeedsAmount, h.Title)
		}
	}
	if err != nil {
		_, err := s.LogEntry(habitID, EntryInput{Day: day, Completed: true})
		return err == nil, err
	}
	_, err = s.EditEntry(habitID, EntryInput{Day: day, Completed: true, Feeling: e.Feeling, Progress: e.Progress, Notes: e.Notes})
	return err == nil, err
}

// updateMilestones brings a habit's milestone state up to date with the log
// and returns the thresholds crossed by this change. A state that cannot be
// read back is rebuilt from the full log without reporting anything.
func (s *Service) updateMilestones(r storage.Repository, h models.Habit) ([]float64, error) {
	entries, err := r.GetEntriesForHabit(h.ID)
	if err != nil {
		return nil, err
	}
	l := models.NewLog(entries)

	state, err := r.GetMilestoneState(h.ID)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		state = models.MilestoneState{HabitID: h.ID}
	case errors.Is(err, storage.ErrCorruptState):
		s.log.Warn("Milestone state unreadable, rederiving from log", "habit", h.ID, "error", err)
		next := metrics.Rederive(h, l)
		next.UpdatedAt = s.now()
		return nil, r.SaveMilestoneState(next)
	default:
		return nil, err
	}

	newly, next := metrics.CheckMilestones(h, l, state)
	next.UpdatedAt = s.now()
	if err := r.SaveMilestoneState(next); err != nil {
		return nil, err
	}
	return newly, nil
}

// recordWeek recomputes and stores the weekly history value for the week
// containing day.
func (s *Service) recordWeek(r storage.Repository, day, today time.Time) (float64, error) {
	weekStart := utils.WeekStart(day)
	habits, err := r.GetAllHabits(false, false)
	if err != nil {
		return 0, err
	}
	entries, err := r.GetEntriesInRange(utils.DayKey(weekStart), utils.DayKey(utils.AddDays(weekStart, 6)))
	if err != nil {
		return 0, err
	}
	rate := metrics.WeekRate(habits, models.NewLog(entries), weekStart, today)
	if err := r.SaveWeekRate(utils.DayKey(weekStart), rate); err != nil {
		return 0, fmt.Errorf("failed to record week rate: %w", err)
	}
	return rate, nil
}
