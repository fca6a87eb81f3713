package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

const habitColumns = `id, title, description, frequency, weekly_days, tracking_type,
	target, units, start_time, position, created_at, archived_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, tracking, weeklyDays, createdAt string
	var archivedAt, deletedAt sql.NullString

	err := row.Scan(&h.ID, &h.Title, &h.Description, &frequency, &weeklyDays, &tracking,
		&h.Target, &h.Units, &h.StartTime, &h.Position, &createdAt, &archivedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.Frequency = constants.FrequencyType(frequency)
	h.TrackingType = constants.TrackingType(tracking)
	if h.WeeklyDays, err = decodeWeekdays(weeklyDays); err != nil {
		return models.Habit{}, err
	}
	if h.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Habit{}, err
	}
	if h.ArchivedAt, err = parseNullTime("archived_at", archivedAt); err != nil {
		return models.Habit{}, err
	}
	if h.DeletedAt, err = parseNullTime("deleted_at", deletedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// encodeWeekdays stores weekdays as "1,3,5".
func encodeWeekdays(days []time.Weekday) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	var days []time.Weekday
	for _, p := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q in weekly_days", p)
		}
		days = append(days, time.Weekday(n))
	}
	return days, nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	if habit.ID == "" {
		return errors.New("habit ID is required")
	}
	_, err := s.exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID, habit.Title, habit.Description, string(habit.Frequency), encodeWeekdays(habit.WeeklyDays),
		string(habit.TrackingType), habit.Target, habit.Units, habit.StartTime, habit.Position,
		formatTime(habit.CreatedAt), nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.queryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetHabitByTitle(title string) (models.Habit, error) {
	row := s.queryRow(`
		SELECT `+habitColumns+` FROM habits
		WHERE lower(trim(title)) = lower(trim(?)) AND deleted_at IS NULL
		ORDER BY position LIMIT 1`, title)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %q: %w", title, storage.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE 1=1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY position, created_at"

	rows, err := s.query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	return s.execOne("habit", habit.ID, `
		UPDATE habits SET title = ?, description = ?, frequency = ?, weekly_days = ?,
			tracking_type = ?, target = ?, units = ?, start_time = ?, position = ?,
			archived_at = ?, deleted_at = ?
		WHERE id = ?`,
		habit.Title, habit.Description, string(habit.Frequency), encodeWeekdays(habit.WeeklyDays),
		string(habit.TrackingType), habit.Target, habit.Units, habit.StartTime, habit.Position,
		nullTime(habit.ArchivedAt), nullTime(habit.DeletedAt), habit.ID)
}

func (s *Store) ArchiveHabit(id string) error {
	return s.execOne("habit", id,
		"UPDATE habits SET archived_at = ? WHERE id = ? AND deleted_at IS NULL",
		formatTime(time.Now()), id)
}

func (s *Store) UnarchiveHabit(id string) error {
	return s.execOne("habit", id, "UPDATE habits SET archived_at = NULL WHERE id = ?", id)
}

func (s *Store) DeleteHabit(id string) error {
	return s.execOne("habit", id,
		"UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL",
		formatTime(time.Now()), id)
}

func (s *Store) RestoreHabit(id string) error {
	return s.execOne("habit", id,
		"UPDATE habits SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", id)
}

func (s *Store) PurgeHabit(id string) error {
	if _, err := s.exec("DELETE FROM habit_entries WHERE habit_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	if _, err := s.exec("DELETE FROM milestones WHERE habit_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete milestones: %w", err)
	}
	return s.execOne("habit", id, "DELETE FROM habits WHERE id = ?", id)
}

func (s *Store) NextPosition() (int, error) {
	var pos sql.NullInt64
	if err := s.queryRow("SELECT MAX(position) FROM habits").Scan(&pos); err != nil {
		return 0, err
	}
	if !pos.Valid {
		return 0, nil
	}
	return int(pos.Int64) + 1, nil
}
