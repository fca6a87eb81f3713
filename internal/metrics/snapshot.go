package metrics

import (
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

// HabitStats holds every derived figure for one habit.
type HabitStats struct {
	Habit         models.Habit `json:"habit"`
	Week          Aggregate    `json:"week"`
	Month         Aggregate    `json:"month"`
	CalendarWeek  Aggregate    `json:"calendar_week"`
	CurrentStreak int          `json:"current_streak"`
	BestStreak    int          `json:"best_streak"`
	Cumulative    float64      `json:"cumulative"`
	Milestone     float64      `json:"milestone,omitempty"`
	NextMilestone float64      `json:"next_milestone,omitempty"`
}

// Ranked names the habit that won a comparison and the value it won with.
type Ranked struct {
	HabitID string  `json:"habit_id"`
	Title   string  `json:"title"`
	Value   float64 `json:"value"`
}

// Snapshot is the whole-app view rendered by the CLI and TUI.
type Snapshot struct {
	Today            time.Time    `json:"today"`
	Habits           []HabitStats `json:"habits"`
	Discipline       Discipline   `json:"discipline"`
	Momentum         float64      `json:"momentum"`
	Gaps             GapCount     `json:"gaps"`
	ShowGaps         bool         `json:"show_gaps"`
	WeekBest         *Ranked      `json:"week_best,omitempty"`
	WeekWorst        *Ranked      `json:"week_worst,omitempty"`
	MonthBest        *Ranked      `json:"month_best,omitempty"`
	MonthWorst       *Ranked      `json:"month_worst,omitempty"`
	BestStreak       *Ranked      `json:"best_streak,omitempty"`
	NeedsImprovement *Ranked      `json:"needs_improvement,omitempty"`
}

// BuildSnapshot computes per-habit stats and the summaries built on them.
// Milestone states are read only; a missing state is treated as empty.
func BuildSnapshot(habits []models.Habit, log models.Log, history models.WeeklyHistory, states map[string]models.MilestoneState, today time.Time) Snapshot {
	snap := Snapshot{
		Today:      today,
		Habits:     make([]HabitStats, 0, len(habits)),
		Discipline: DisciplineScore(habits, log, history, today),
		Momentum:   Momentum(habits, log, today),
		Gaps:       Gaps(habits, log, today),
		ShowGaps:   HasMinimumActivity(habits, log),
	}

	for _, h := range habits {
		st := HabitStats{
			Habit:         h,
			Week:          AggregateWindow(h, log, TrailingWindow(today, 7)),
			Month:         AggregateWindow(h, log, TrailingWindow(today, 30)),
			CalendarWeek:  AggregateWindow(h, log, CalendarWeek(today)),
			CurrentStreak: CurrentStreak(h, log, today, CurrentStreakLookback),
			BestStreak:    BestStreak(h, log, today, BestStreakLookback),
			Cumulative:    CumulativeCount(h, log),
		}
		if m, ok := CurrentMilestone(states[h.ID]); ok {
			st.Milestone = m
		}
		if next, ok := NextMilestone(Ladder(h), st.Cumulative); ok {
			st.NextMilestone = next
		}
		snap.Habits = append(snap.Habits, st)
	}

	snap.WeekBest, snap.WeekWorst = BestWorst(snap.Habits, func(s HabitStats) float64 { return s.Week.Percent })
	snap.MonthBest, snap.MonthWorst = BestWorst(snap.Habits, func(s HabitStats) float64 { return s.Month.Percent })
	snap.BestStreak, snap.NeedsImprovement = StreakLeaders(snap.Habits)
	return snap
}

// BestWorst picks the highest and lowest value of stats. On ties the earlier
// habit wins.
func BestWorst(stats []HabitStats, value func(HabitStats) float64) (best, worst *Ranked) {
	if len(stats) == 0 {
		return nil, nil
	}
	bi, wi := 0, 0
	for i, s := range stats {
		if value(s) > value(stats[bi]) {
			bi = i
		}
		if value(s) < value(stats[wi]) {
			wi = i
		}
	}
	return rank(stats[bi], value(stats[bi])), rank(stats[wi], value(stats[wi]))
}

// StreakLeaders returns the habit with the longest current streak and the
// habit with the shortest one among the rest. The best habit is excluded by
// ID, so habits sharing a title are still told apart.
func StreakLeaders(stats []HabitStats) (best, needsImprovement *Ranked) {
	if len(stats) == 0 {
		return nil, nil
	}
	bi := 0
	for i, s := range stats {
		if s.CurrentStreak > stats[bi].CurrentStreak {
			bi = i
		}
	}
	best = rank(stats[bi], float64(stats[bi].CurrentStreak))

	wi := -1
	for i, s := range stats {
		if s.Habit.ID == best.HabitID {
			continue
		}
		if wi < 0 || s.CurrentStreak < stats[wi].CurrentStreak {
			wi = i
		}
	}
	if wi >= 0 {
		needsImprovement = rank(stats[wi], float64(stats[wi].CurrentStreak))
	}
	return best, needsImprovement
}

func rank(s HabitStats, v float64) *Ranked {
	return &Ranked{HabitID: s.Habit.ID, Title: s.Habit.Title, Value: v}
}
