package metrics

import (
	"math"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

const (
	// QualifyingWeekPercent is the weekly average a week needs to count toward consistency.
	QualifyingWeekPercent = 70.0
	// TargetConsistencyWeeks is the run of qualifying weeks that maxes out the streak half of the score.
	TargetConsistencyWeeks = 4
	// maxHistoryWeeks bounds the backward walk over weekly history.
	maxHistoryWeeks = 520
)

// WeekRate returns the mean per-habit completion for the Sunday-started week
// beginning at weekStart, counting only days up to today.
func WeekRate(habits []models.Habit, log models.Log, weekStart, today time.Time) float64 {
	end := utils.AddDays(weekStart, 6)
	if end.After(today) {
		end = today
	}
	return round1(MeanPercent(habits, log, Window{Start: weekStart, End: end}))
}

// QualifyingWeeks counts consecutive qualifying weeks in history, starting
// from the last completed week. The current week never counts.
func QualifyingWeeks(history models.WeeklyHistory, today time.Time) int {
	weeks := 0
	check := utils.AddDays(utils.WeekStart(today), -7)
	for weeks < maxHistoryWeeks {
		pct, ok := history[utils.DayKey(check)]
		if !ok || pct < QualifyingWeekPercent {
			break
		}
		weeks++
		check = utils.AddDays(check, -7)
	}
	return weeks
}

// Discipline is the composite score together with the parts it was built from.
type Discipline struct {
	Score           float64 `json:"score"`
	WeekRate        float64 `json:"week_rate"`
	StreakScore     float64 `json:"streak_score"`
	QualifyingWeeks int     `json:"qualifying_weeks"`
}

// DisciplineScore blends the trailing seven day completion rate with weekly
// consistency, half each.
func DisciplineScore(habits []models.Habit, log models.Log, history models.WeeklyHistory, today time.Time) Discipline {
	if len(habits) == 0 {
		return Discipline{}
	}
	rate := MeanPercent(habits, log, TrailingWindow(today, 7))
	weeks := QualifyingWeeks(history, today)
	streakScore := math.Min(float64(weeks)/TargetConsistencyWeeks, 1) * 100
	return Discipline{
		Score:           round1(0.5*rate + 0.5*streakScore),
		WeekRate:        round1(rate),
		StreakScore:     streakScore,
		QualifyingWeeks: weeks,
	}
}

// Momentum is the change in mean completion between the seven days ending
// yesterday and the seven days before that.
func Momentum(habits []models.Habit, log models.Log, today time.Time) float64 {
	current := Window{Start: utils.AddDays(today, -7), End: utils.AddDays(today, -1)}
	previous := PreviousWindow(current)
	return round1(MeanPercent(habits, log, current) - MeanPercent(habits, log, previous))
}

// GapCount summarises days in the trailing week with nothing logged.
type GapCount struct {
	MissedDays    int `json:"missed_days"`
	ScheduledDays int `json:"scheduled_days"`
}

// Gaps counts trailing-week days where at least one habit was scheduled and
// nothing at all was logged. Callers should check HasMinimumActivity before
// showing the result.
func Gaps(habits []models.Habit, log models.Log, today time.Time) GapCount {
	var gaps GapCount
	if !HasMinimumActivity(habits, log) {
		return gaps
	}
	TrailingWindow(today, 7).Each(func(day time.Time) {
		scheduled, logged := false, false
		key := utils.DayKey(day)
		for _, h := range habits {
			if IsScheduled(h, day) {
				scheduled = true
			}
			if log.Has(key, h.ID) {
				logged = true
			}
		}
		if !scheduled {
			return
		}
		gaps.ScheduledDays++
		if !logged {
			gaps.MissedDays++
		}
	})
	return gaps
}

// HasMinimumActivity reports whether there is at least one habit and at
// least one entry belonging to a known habit.
func HasMinimumActivity(habits []models.Habit, log models.Log) bool {
	if len(habits) == 0 {
		return false
	}
	for _, byHabit := range log {
		for _, h := range habits {
			if _, ok := byHabit[h.ID]; ok {
				return true
			}
		}
	}
	return false
}

// RebuildWeeklyHistory recomputes the weekly history from the log, one value
// per week from the first logged week through the current one.
func RebuildWeeklyHistory(habits []models.Habit, log models.Log, today time.Time) models.WeeklyHistory {
	history := models.WeeklyHistory{}
	days := log.Days()
	if len(habits) == 0 || len(days) == 0 {
		return history
	}
	first, err := utils.ParseDay(days[0])
	if err != nil {
		return history
	}
	current := utils.WeekStart(today)
	for ws := utils.WeekStart(first); !ws.After(current); ws = utils.AddDays(ws, 7) {
		history[utils.DayKey(ws)] = WeekRate(habits, log, ws, today)
	}
	return history
}
