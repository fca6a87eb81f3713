package metrics

import (
	"math"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

// Window is an inclusive range of calendar days.
type Window struct {
	Start time.Time
	End   time.Time
}

// TrailingWindow returns the n days ending on today, today included.
func TrailingWindow(today time.Time, n int) Window {
	return Window{Start: utils.AddDays(today, -(n - 1)), End: today}
}

// PreviousWindow returns the window of equal length immediately before w.
func PreviousWindow(w Window) Window {
	n := w.Len()
	return Window{Start: utils.AddDays(w.Start, -n), End: utils.AddDays(w.Start, -1)}
}

// CalendarWeek returns the Sunday-started week containing today, cut off at today.
func CalendarWeek(today time.Time) Window {
	return Window{Start: utils.WeekStart(today), End: today}
}

// Len returns the number of days in the window.
func (w Window) Len() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return utils.DaysBetween(w.Start, w.End) + 1
}

// Each calls fn for every day in the window, oldest first.
func (w Window) Each(fn func(day time.Time)) {
	for d := w.Start; !d.After(w.End); d = utils.AddDays(d, 1) {
		fn(d)
	}
}

// Aggregate is the result of scanning one habit over a window.
type Aggregate struct {
	Completed      int     `json:"completed"`
	Scheduled      int     `json:"scheduled"`
	Percent        float64 `json:"percent"`
	ProgressSum    float64 `json:"progress_sum,omitempty"`
	ProgressTarget float64 `json:"progress_target,omitempty"`
}

// AggregateWindow counts scheduled and completed occurrences of h within w.
// Progress habits also accumulate logged progress capped at the target per
// day, so one strong day cannot make up for a weak one.
func AggregateWindow(h models.Habit, log models.Log, w Window) Aggregate {
	var agg Aggregate
	w.Each(func(day time.Time) {
		if !IsScheduled(h, day) {
			return
		}
		agg.Scheduled++
		e, ok := log.Get(utils.DayKey(day), h.ID)
		if !ok || !e.Completed {
			return
		}
		agg.Completed++
		if h.IsProgress() {
			agg.ProgressSum += cappedProgress(e.ProgressValue(), h.Target)
		}
	})

	if agg.Scheduled == 0 {
		return agg
	}
	if h.IsProgress() {
		agg.ProgressTarget = h.Target * float64(agg.Scheduled)
		if agg.ProgressTarget > 0 {
			agg.Percent = round1(agg.ProgressSum / agg.ProgressTarget * 100)
		}
		return agg
	}
	agg.Percent = round1(float64(agg.Completed) / float64(agg.Scheduled) * 100)
	return agg
}

// MeanPercent averages the window percentage across habits. Habits with no
// scheduled day in the window contribute 0.
func MeanPercent(habits []models.Habit, log models.Log, w Window) float64 {
	if len(habits) == 0 {
		return 0
	}
	var total float64
	for _, h := range habits {
		total += AggregateWindow(h, log, w).Percent
	}
	return total / float64(len(habits))
}

func cappedProgress(v, target float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Min(v, target)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
