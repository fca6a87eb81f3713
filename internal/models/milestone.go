package models

import (
	"slices"
	"time"
)

// MilestoneState tracks the cumulative thresholds a habit has crossed.
// Achieved only ever grows.
type MilestoneState struct {
	HabitID   string    `json:"habit_id"`
	Achieved  []float64 `json:"achieved"`
	LastCount float64   `json:"last_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasAchieved reports whether threshold is already in the achieved set.
func (m MilestoneState) HasAchieved(threshold float64) bool {
	return slices.Contains(m.Achieved, threshold)
}

// WeeklyHistory maps a week start day (Sunday, YYYY-MM-DD) to that week's
// average completion percentage.
type WeeklyHistory map[string]float64
