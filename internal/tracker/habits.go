package tracker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
)

// AddHabit validates and stores a new habit, assigning its ID, position and
// creation time.
func (s *Service) AddHabit(h models.Habit) (models.Habit, error) {
	h.ID = uuid.New().String()
	h.Title = strings.TrimSpace(h.Title)
	h.CreatedAt = s.now()
	h.ArchivedAt = nil
	h.DeletedAt = nil
	h.Normalize()

	err := s.store.Atomically(func(r storage.Repository) error {
		existing, err := r.GetAllHabits(true, false)
		if err != nil {
			return err
		}
		result := s.validator.ValidateHabit(h, existing)
		if err := result.Err(); err != nil {
			return err
		}
		if h.Position, err = r.NextPosition(); err != nil {
			return err
		}
		return r.AddHabit(h)
	})
	if err != nil {
		return models.Habit{}, err
	}

	s.log.Info("Habit added", "id", h.ID, "title", h.Title)
	return h, nil
}

// EditHabit validates and saves changes to an existing habit. Identity,
// position and lifecycle timestamps are kept from the stored habit.
func (s *Service) EditHabit(h models.Habit) (models.Habit, error) {
	h.Title = strings.TrimSpace(h.Title)
	h.Normalize()

	err := s.store.Atomically(func(r storage.Repository) error {
		stored, err := r.GetHabit(h.ID)
		if err != nil {
			return err
		}
		h.Position = stored.Position
		h.CreatedAt = stored.CreatedAt
		h.ArchivedAt = stored.ArchivedAt
		h.DeletedAt = stored.DeletedAt

		existing, err := r.GetAllHabits(true, false)
		if err != nil {
			return err
		}
		result := s.validator.ValidateHabit(h, existing)
		if err := result.Err(); err != nil {
			return err
		}
		return r.UpdateHabit(h)
	})
	if err != nil {
		return models.Habit{}, err
	}

	s.log.Info("Habit updated", "id", h.ID, "title", h.Title)
	return h, nil
}

func (s *Service) ArchiveHabit(id string) error {
	if err := s.store.ArchiveHabit(id); err != nil {
		return err
	}
	s.log.Info("Habit archived", "id", id)
	return nil
}

func (s *Service) UnarchiveHabit(id string) error {
	if err := s.store.UnarchiveHabit(id); err != nil {
		return err
	}
	s.log.Info("Habit unarchived", "id", id)
	return nil
}

// DeleteHabit soft deletes a habit. Its entries stay in the log and are
// ignored until the habit is restored.
func (s *Service) DeleteHabit(id string) error {
	if err := s.store.DeleteHabit(id); err != nil {
		return err
	}
	s.log.Info("Habit deleted", "id", id)
	return nil
}

// RestoreHabit undoes a soft delete. It fails if another habit has taken
// the title in the meantime.
func (s *Service) RestoreHabit(id string) error {
	err := s.store.Atomically(func(r storage.Repository) error {
		h, err := r.GetHabit(id)
		if err != nil {
			return err
		}
		existing, err := r.GetAllHabits(true, false)
		if err != nil {
			return err
		}
		result := s.validator.ValidateHabit(h, existing)
		if err := result.Err(); err != nil {
			return fmt.Errorf("cannot restore habit: %w", err)
		}
		return r.RestoreHabit(id)
	})
	if err != nil {
		return err
	}
	s.log.Info("Habit restored", "id", id)
	return nil
}

// PurgeHabit permanently removes a habit with its entries and milestones,
// taking a backup first when a backup hook is configured.
func (s *Service) PurgeHabit(id string) error {
	if _, err := s.store.GetHabit(id); err != nil {
		return err
	}
	today, err := s.Today()
	if err != nil {
		return err
	}
	if s.backup != nil {
		if err := s.backup(); err != nil {
			return fmt.Errorf("backup before purge failed: %w", err)
		}
	}

	unlock := s.lock(id)
	defer unlock()

	err = s.store.Atomically(func(r storage.Repository) error {
		if err := r.PurgeHabit(id); err != nil {
			return err
		}
		_, err := s.recordWeek(r, today, today)
		return err
	})
	if err != nil {
		return err
	}
	s.log.Info("Habit purged", "id", id)
	return nil
}
