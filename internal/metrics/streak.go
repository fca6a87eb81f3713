package metrics

import (
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

const (
	CurrentStreakLookback = 30
	BestStreakLookback    = 180
)

// IsHit reports whether h was fully done on day. Progress habits must reach
// their target; a partial log still counts toward window totals but not here.
func IsHit(h models.Habit, log models.Log, day time.Time) bool {
	e, ok := log.Get(utils.DayKey(day), h.ID)
	if !ok || !e.Completed {
		return false
	}
	if h.IsProgress() {
		return e.ProgressValue() >= h.Target
	}
	return true
}

// CurrentStreak counts consecutive hits backward from today across at most
// lookback calendar days. Unscheduled days of weekly habits are skipped.
func CurrentStreak(h models.Habit, log models.Log, today time.Time, lookback int) int {
	streak := 0
	for i := 0; i < lookback; i++ {
		day := utils.AddDays(today, -i)
		if !IsScheduled(h, day) {
			continue
		}
		if !IsHit(h, log, day) {
			break
		}
		streak++
	}
	return streak
}

// BestStreak returns the longest run of hits within the lookback ending today.
func BestStreak(h models.Habit, log models.Log, today time.Time, lookback int) int {
	if lookback <= 0 {
		return 0
	}
	best, run := 0, 0
	TrailingWindow(today, lookback).Each(func(day time.Time) {
		if !IsScheduled(h, day) {
			return
		}
		if IsHit(h, log, day) {
			run++
			best = max(best, run)
			return
		}
		run = 0
	})
	return best
}
