package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

const entryColumns = `id, habit_id, day, completed, feeling, progress, notes, created_at, updated_at`

func scanEntry(row rowScanner) (models.Entry, error) {
	var e models.Entry
	var createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.HabitID, &e.Day, &e.Completed, &e.Feeling, &e.Progress, &e.Notes, &createdAt, &updatedAt)
	if err != nil {
		return models.Entry{}, err
	}
	if e.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return models.Entry{}, err
	}
	if e.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Entry{}, err
	}
	return e, nil
}

func (s *Store) AddEntry(e models.Entry) error {
	if e.ID == "" {
		return errors.New("entry ID is required")
	}
	res, err := s.exec(`
		INSERT INTO habit_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO NOTHING`,
		e.ID, e.HabitID, e.Day, e.Completed, e.Feeling, e.Progress, e.Notes,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to add entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s on %s: %w", e.HabitID, e.Day, storage.ErrDuplicateEntry)
	}
	return nil
}

func (s *Store) SaveEntry(e models.Entry) error {
	if e.ID == "" {
		return errors.New("entry ID is required")
	}
	_, err := s.exec(`
		INSERT INTO habit_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			completed = excluded.completed,
			feeling = excluded.feeling,
			progress = excluded.progress,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		e.ID, e.HabitID, e.Day, e.Completed, e.Feeling, e.Progress, e.Notes,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

func (s *Store) GetEntry(habitID, day string) (models.Entry, error) {
	row := s.queryRow(`SELECT `+entryColumns+` FROM habit_entries WHERE habit_id = ? AND day = ?`, habitID, day)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Entry{}, fmt.Errorf("entry %s on %s: %w", habitID, day, storage.ErrNotFound)
	}
	return e, err
}

func (s *Store) RemoveEntry(day, habitID string) error {
	return s.execOne("entry", habitID+"@"+day,
		"DELETE FROM habit_entries WHERE habit_id = ? AND day = ?", habitID, day)
}

func (s *Store) GetEntriesInRange(startDay, endDay string) ([]models.Entry, error) {
	return s.listEntries(`SELECT `+entryColumns+` FROM habit_entries
		WHERE day >= ? AND day <= ? ORDER BY day, habit_id`, startDay, endDay)
}

func (s *Store) GetEntriesForHabit(habitID string) ([]models.Entry, error) {
	return s.listEntries(`SELECT `+entryColumns+` FROM habit_entries
		WHERE habit_id = ? ORDER BY day`, habitID)
}

func (s *Store) GetAllEntries() ([]models.Entry, error) {
	return s.listEntries(`SELECT ` + entryColumns + ` FROM habit_entries ORDER BY day, habit_id`)
}

func (s *Store) listEntries(query string, args ...any) ([]models.Entry, error) {
	rows, err := s.query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
