package metrics

import (
	"slices"

	"github.com/julianstephens/habitual/internal/models"
)

var (
	completionLadder = buildLadder(
		ladderStep{from: 5, to: 100, step: 5},
		ladderStep{from: 125, to: 1000, step: 25},
	)
	progressLadder = buildLadder(
		ladderStep{from: 5, to: 100, step: 5},
		ladderStep{from: 125, to: 1000, step: 25},
		ladderStep{from: 1250, to: 10000, step: 250},
		ladderStep{from: 12500, to: 100000, step: 2500},
	)
)

type ladderStep struct {
	from, to, step float64
}

func buildLadder(steps ...ladderStep) []float64 {
	var out []float64
	for _, s := range steps {
		for v := s.from; v <= s.to; v += s.step {
			out = append(out, v)
		}
	}
	return out
}

// Ladder returns the ascending milestone thresholds for h. Progress habits
// accumulate amounts rather than counts, so their ladder runs further.
func Ladder(h models.Habit) []float64 {
	if h.IsProgress() {
		return slices.Clone(progressLadder)
	}
	return slices.Clone(completionLadder)
}

// CumulativeCount is the lifetime total milestones are measured against: the
// number of completed entries, or for progress habits the uncapped sum of
// logged progress.
func CumulativeCount(h models.Habit, log models.Log) float64 {
	var total float64
	for _, byHabit := range log {
		e, ok := byHabit[h.ID]
		if !ok || !e.Completed {
			continue
		}
		if h.IsProgress() {
			total += max(e.ProgressValue(), 0)
		} else {
			total++
		}
	}
	return total
}

// Crossed returns the thresholds of ladder at or below count that are not in
// achieved, in ascending order.
func Crossed(ladder []float64, count float64, achieved []float64) []float64 {
	var out []float64
	for _, t := range ladder {
		if t > count {
			break
		}
		if !slices.Contains(achieved, t) {
			out = append(out, t)
		}
	}
	return out
}

// CheckMilestones recomputes the habit's cumulative count and returns the
// thresholds crossed since state was last saved, along with the updated
// state. The achieved set never shrinks, so a second call with no new
// entries returns nothing.
func CheckMilestones(h models.Habit, log models.Log, state models.MilestoneState) ([]float64, models.MilestoneState) {
	count := CumulativeCount(h, log)
	newly := Crossed(Ladder(h), count, state.Achieved)

	next := models.MilestoneState{
		HabitID:   h.ID,
		Achieved:  slices.Clone(state.Achieved),
		LastCount: count,
		UpdatedAt: state.UpdatedAt,
	}
	next.Achieved = append(next.Achieved, newly...)
	slices.Sort(next.Achieved)
	next.Achieved = slices.Compact(next.Achieved)
	return newly, next
}

// Rederive rebuilds a lost or corrupt milestone state from the full log
// without reporting anything as newly crossed.
func Rederive(h models.Habit, log models.Log) models.MilestoneState {
	count := CumulativeCount(h, log)
	return models.MilestoneState{
		HabitID:   h.ID,
		Achieved:  Crossed(Ladder(h), count, nil),
		LastCount: count,
	}
}

// CurrentMilestone returns the highest threshold achieved so far.
func CurrentMilestone(state models.MilestoneState) (float64, bool) {
	if len(state.Achieved) == 0 {
		return 0, false
	}
	return slices.Max(state.Achieved), true
}

// NextMilestone returns the first threshold above count.
func NextMilestone(ladder []float64, count float64) (float64, bool) {
	for _, t := range ladder {
		if t > count {
			return t, true
		}
	}
	return 0, false
}
