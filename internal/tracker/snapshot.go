package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/metrics"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

// Snapshot reads habits, the log, weekly history and milestone states in
// one transaction, records the rates of the current week and the last
// completed week, and computes every statistic for today.
func (s *Service) Snapshot() (metrics.Snapshot, error) {
	today, err := s.Today()
	if err != nil {
		return metrics.Snapshot{}, err
	}

	var (
		habits   []models.Habit
		log      models.Log
		history  models.WeeklyHistory
		states   map[string]models.MilestoneState
		settings models.Settings
	)
	err = s.store.Atomically(func(r storage.Repository) error {
		var err error
		if habits, err = r.GetAllHabits(false, false); err != nil {
			return err
		}
		entries, err := r.GetAllEntries()
		if err != nil {
			return err
		}
		log = models.NewLog(entries)
		if history, err = r.GetWeeklyHistory(); err != nil {
			return err
		}
		if states, err = r.GetAllMilestoneStates(); err != nil {
			return err
		}
		settings, err = r.GetSettings()
		if errors.Is(err, storage.ErrNotFound) {
			settings, err = models.DefaultSettings(), nil
		}
		if err != nil {
			return err
		}

		// The last completed week may only hold a partial figure from a
		// mid-week write, so it is settled here against all seven days.
		weekStart := utils.WeekStart(today)
		lastWeek := utils.AddDays(weekStart, -7)
		for _, start := range []time.Time{lastWeek, weekStart} {
			rate := metrics.WeekRate(habits, log, start, today)
			history[utils.DayKey(start)] = rate
			if err := r.SaveWeekRate(utils.DayKey(start), rate); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("failed to build snapshot: %w", err)
	}

	snap := metrics.BuildSnapshot(habits, log, history, states, today)
	snap.ShowGaps = snap.ShowGaps && settings.ShowGaps
	return snap, nil
}

// RebuildWeeklyHistory recomputes every week from the earliest logged day
// through the current week, replacing what was stored.
func (s *Service) RebuildWeeklyHistory() (models.WeeklyHistory, error) {
	today, err := s.Today()
	if err != nil {
		return nil, err
	}

	var history models.WeeklyHistory
	err = s.store.Atomically(func(r storage.Repository) error {
		habits, err := r.GetAllHabits(false, false)
		if err != nil {
			return err
		}
		entries, err := r.GetAllEntries()
		if err != nil {
			return err
		}
		history = metrics.RebuildWeeklyHistory(habits, models.NewLog(entries), today)
		return r.ReplaceWeeklyHistory(history)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Weekly history rebuilt", "weeks", len(history))
	return history, nil
}

// RederiveMilestones rebuilds the milestone state of every non-deleted
// habit from the full log. It returns how many habits were updated.
func (s *Service) RederiveMilestones() (int, error) {
	n := 0
	err := s.store.Atomically(func(r storage.Repository) error {
		habits, err := r.GetAllHabits(true, false)
		if err != nil {
			return err
		}
		for _, h := range habits {
			entries, err := r.GetEntriesForHabit(h.ID)
			if err != nil {
				return err
			}
			state := metrics.Rederive(h, models.NewLog(entries))
			state.UpdatedAt = s.now()
			if err := r.SaveMilestoneState(state); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Milestones rederived", "habits", n)
	return n, nil
}
