// Package metrics derives streaks, completion rates, composite scores and
// milestones from a habit list and its completion log. Every function is
// pure: the reference date is always passed in.
package metrics

import (
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

// IsScheduled reports whether habit h has an occurrence on day. It is the
// only place scheduling is decided; every denominator goes through it.
func IsScheduled(h models.Habit, day time.Time) bool {
	if !h.IsWeekly() {
		return true
	}
	return h.RunsOn(day.Weekday())
}
