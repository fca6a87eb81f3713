package legacy

import (
	"fmt"
	"slices"
	"time"

	"github.com/julianstephens/habitual/internal/metrics"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/validation"
)

// Summary counts what Apply wrote
type Summary struct {
	Habits     int
	Entries    int
	Weeks      int
	Milestones int
}

// Apply writes a converted export in one transaction. Every imported habit
// is validated against the stored habits and the rest of the import first;
// any conflict aborts the whole import. Weeks already present in the stored
// history are left alone. Milestone sets are rebuilt from the imported log
// and merged with the thresholds the export recorded.
func Apply(p storage.Provider, res *Result, now time.Time) (Summary, error) {
	var sum Summary
	err := p.Atomically(func(r storage.Repository) error {
		existing, err := r.GetAllHabits(true, false)
		if err != nil {
			return err
		}

		v := validation.New()
		var conflicts validation.ValidationResult
		pool := slices.Clone(existing)
		for _, h := range res.Habits {
			result := v.ValidateHabit(h, pool)
			conflicts.Conflicts = append(conflicts.Conflicts, result.Conflicts...)
			pool = append(pool, h)
		}
		if err := conflicts.Err(); err != nil {
			return fmt.Errorf("import rejected: %w", err)
		}

		base, err := r.NextPosition()
		if err != nil {
			return err
		}
		for _, h := range res.Habits {
			h.Position += base
			if err := r.AddHabit(h); err != nil {
				return err
			}
			sum.Habits++
		}

		for _, e := range res.Entries {
			if err := r.AddEntry(e); err != nil {
				return fmt.Errorf("entry %s on %s: %w", e.HabitID, e.Day, err)
			}
			sum.Entries++
		}

		stored, err := r.GetWeeklyHistory()
		if err != nil {
			return err
		}
		for week, pct := range res.WeeklyHistory {
			if _, ok := stored[week]; ok {
				continue
			}
			if err := r.SaveWeekRate(week, pct); err != nil {
				return err
			}
			sum.Weeks++
		}

		log := models.NewLog(res.Entries)
		for _, h := range res.Habits {
			state := metrics.Rederive(h, log)
			state.Achieved = append(state.Achieved, res.Milestones[h.ID]...)
			slices.Sort(state.Achieved)
			state.Achieved = slices.Compact(state.Achieved)
			if len(state.Achieved) == 0 && state.LastCount == 0 {
				continue
			}
			state.UpdatedAt = now
			if err := r.SaveMilestoneState(state); err != nil {
				return err
			}
			sum.Milestones++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}
