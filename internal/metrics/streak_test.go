package metrics

import (
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

func TestCurrentStreak(t *testing.T) {
	tests := []struct {
		name    string
		habit   models.Habit
		offsets []int
		want    int
	}{
		{
			name:    "misses days three and five, today is day one",
			habit:   dailyHabit("a"),
			offsets: []int{0, 1, 3, 5, 6},
			want:    2,
		},
		{
			name:    "nothing today",
			habit:   dailyHabit("a"),
			offsets: []int{1, 2, 3},
			want:    0,
		},
		{
			name:    "unbroken week",
			habit:   dailyHabit("a"),
			offsets: []int{0, 1, 2, 3, 4, 5, 6},
			want:    7,
		},
		{
			// Wed 0, Mon 2, Fri 5, Wed 7; Tue/Thu entries are irrelevant
			name:    "weekly skips unscheduled days",
			habit:   weeklyHabit("w", time.Monday, time.Wednesday, time.Friday),
			offsets: []int{0, 2, 5, 7},
			want:    4,
		},
		{
			// Mon 9 missing breaks the run after Wed 7
			name:    "weekly stops at scheduled miss",
			habit:   weeklyHabit("w", time.Monday, time.Wednesday, time.Friday),
			offsets: []int{0, 2, 5, 7, 12},
			want:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := logDays(models.Log{}, tt.habit.ID, tt.offsets...)
			if got := CurrentStreak(tt.habit, l, today, CurrentStreakLookback); got != tt.want {
				t.Errorf("CurrentStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentStreak_LookbackLimit(t *testing.T) {
	h := dailyHabit("a")
	l := models.Log{}
	for i := 0; i < 60; i++ {
		logDays(l, "a", i)
	}
	if got := CurrentStreak(h, l, today, CurrentStreakLookback); got != CurrentStreakLookback {
		t.Errorf("CurrentStreak() = %d, want %d", got, CurrentStreakLookback)
	}
}

func TestCurrentStreak_ProgressBelowTargetIsMiss(t *testing.T) {
	h := progressHabit("run", 5)
	l := models.Log{}
	logProgress(l, "run", 0, 6)
	logProgress(l, "run", 1, 5)
	logProgress(l, "run", 2, 4) // logged, but short of target
	logProgress(l, "run", 3, 9)

	if got := CurrentStreak(h, l, today, CurrentStreakLookback); got != 2 {
		t.Errorf("CurrentStreak() = %d, want 2", got)
	}
	// the short day still counts as completed for the window
	if agg := AggregateWindow(h, l, TrailingWindow(today, 4)); agg.Completed != 4 {
		t.Errorf("window Completed = %d, want 4", agg.Completed)
	}
}

func TestCurrentStreak_Monotonic(t *testing.T) {
	h := dailyHabit("a")
	for k := 0; k < 10; k++ {
		offsets := make([]int, 0, k+1)
		for i := 0; i <= k; i++ {
			offsets = append(offsets, i)
		}
		l := logDays(models.Log{}, "a", offsets...)
		if got := CurrentStreak(h, l, today, CurrentStreakLookback); got < k+1 {
			t.Errorf("k=%d: CurrentStreak() = %d, want >= %d", k, got, k+1)
		}
	}
}

func TestBestStreak(t *testing.T) {
	h := dailyHabit("a")
	// run of 5 ending 20 days ago, current run of 2
	l := logDays(models.Log{}, "a", 0, 1, 20, 21, 22, 23, 24, 40)

	if got := BestStreak(h, l, today, BestStreakLookback); got != 5 {
		t.Errorf("BestStreak() = %d, want 5", got)
	}
	if got := BestStreak(h, l, today, 3); got != 2 {
		t.Errorf("BestStreak(lookback 3) = %d, want 2", got)
	}
	if got := BestStreak(h, l, today, 0); got != 0 {
		t.Errorf("BestStreak(lookback 0) = %d, want 0", got)
	}
}

func TestBestStreak_WeeklySkipsUnscheduledDays(t *testing.T) {
	h := weeklyHabit("w", time.Monday, time.Friday)
	// Fri 03-01 (12), Mon 03-04 (9), Fri 03-08 (5); Mon 03-11 (2) missed
	l := logDays(models.Log{}, "w", 12, 9, 5)
	if got := BestStreak(h, l, today, 30); got != 3 {
		t.Errorf("BestStreak() = %d, want 3", got)
	}
}
