package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

func encodeThresholds(vals []float64) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

func decodeThresholds(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	var out []float64
	for _, p := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid milestone threshold %q: %w: %v", p, storage.ErrCorruptState, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func scanMilestone(row rowScanner) (models.MilestoneState, error) {
	var m models.MilestoneState
	var achieved, updatedAt string
	if err := row.Scan(&m.HabitID, &achieved, &m.LastCount, &updatedAt); err != nil {
		return models.MilestoneState{}, err
	}
	var err error
	if m.Achieved, err = decodeThresholds(achieved); err != nil {
		return models.MilestoneState{}, err
	}
	if m.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.MilestoneState{}, err
	}
	return m, nil
}

func (s *Store) GetMilestoneState(habitID string) (models.MilestoneState, error) {
	row := s.queryRow("SELECT habit_id, achieved, last_count, updated_at FROM milestones WHERE habit_id = ?", habitID)
	m, err := scanMilestone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MilestoneState{}, fmt.Errorf("milestones for %s: %w", habitID, storage.ErrNotFound)
	}
	return m, err
}

func (s *Store) SaveMilestoneState(m models.MilestoneState) error {
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now()
	}
	_, err := s.exec(`
		INSERT INTO milestones (habit_id, achieved, last_count, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(habit_id) DO UPDATE SET
			achieved = excluded.achieved,
			last_count = excluded.last_count,
			updated_at = excluded.updated_at`,
		m.HabitID, encodeThresholds(m.Achieved), m.LastCount, formatTime(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save milestones: %w", err)
	}
	return nil
}

func (s *Store) GetAllMilestoneStates() (map[string]models.MilestoneState, error) {
	rows, err := s.query("SELECT habit_id, achieved, last_count, updated_at FROM milestones")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := map[string]models.MilestoneState{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		states[m.HabitID] = m
	}
	return states, rows.Err()
}

func (s *Store) GetWeeklyHistory() (models.WeeklyHistory, error) {
	rows, err := s.query("SELECT week_start, percent FROM weekly_history")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := models.WeeklyHistory{}
	for rows.Next() {
		var week string
		var pct float64
		if err := rows.Scan(&week, &pct); err != nil {
			return nil, err
		}
		history[week] = pct
	}
	return history, rows.Err()
}

func (s *Store) SaveWeekRate(weekStart string, percent float64) error {
	_, err := s.exec(`
		INSERT INTO weekly_history (week_start, percent, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(week_start) DO UPDATE SET
			percent = excluded.percent,
			updated_at = excluded.updated_at`,
		weekStart, percent, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save week %s: %w", weekStart, err)
	}
	return nil
}

func (s *Store) ReplaceWeeklyHistory(history models.WeeklyHistory) error {
	if _, err := s.exec("DELETE FROM weekly_history"); err != nil {
		return fmt.Errorf("failed to clear weekly history: %w", err)
	}
	for week, pct := range history {
		if err := s.SaveWeekRate(week, pct); err != nil {
			return err
		}
	}
	return nil
}
