// Package tracker is the write path around the metrics engine. It owns the
// clock, validates input, and keeps milestone state and weekly history in
// step with every change to the log.
package tracker

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
	"github.com/julianstephens/habitual/internal/validation"
)

var (
	// ErrFutureDate is returned when an entry is dated after today
	ErrFutureDate = errors.New("cannot log a habit for a future date")
	// ErrHabitNotFound is returned when a habit reference matches nothing
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitInactive is returned when logging against an archived or deleted habit
	ErrHabitInactive = errors.New("habit is archived or deleted")
	// ErrNeedsAmount is returned when a progress habit is toggled without any recorded progress
	ErrNeedsAmount = errors.New("progress habits need an amount")
)

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBackup registers a hook run before destructive operations. A failing
// hook aborts the operation.
func WithBackup(fn func() error) Option {
	return func(s *Service) { s.backup = fn }
}

// Service coordinates habit and log writes with derived state
type Service struct {
	store     storage.Provider
	validator *validation.Validator
	log       *log.Logger
	now       func() time.Time
	backup    func() error

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validation.New(),
		log:       logger.Component("tracker"),
		now:       time.Now,
		locks:     map[string]*sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lock serialises milestone updates for one habit.
func (s *Service) lock(habitID string) func() {
	s.mu.Lock()
	m, ok := s.locks[habitID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[habitID] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// Today returns the current calendar date in the configured timezone.
func (s *Service) Today() (time.Time, error) {
	settings, err := s.store.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, fmt.Errorf("failed to read settings: %w", err)
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	return utils.CivilDay(s.now().In(loc)), nil
}

// FindHabit resolves ref as an ID, falling back to a case-insensitive title
// match among non-deleted habits.
func (s *Service) FindHabit(ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, fmt.Errorf("%w: empty reference", ErrHabitNotFound)
	}
	if _, err := uuid.Parse(ref); err == nil {
		h, err := s.store.GetHabit(ref)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return models.Habit{}, err
		}
	}
	h, err := s.store.GetHabitByTitle(ref)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("%w: %q: %w", ErrHabitNotFound, ref, err)
	}
	return h, err
}

// FindAnyHabit is FindHabit extended to soft-deleted habits, for restore
// and purge. A live habit wins over a deleted one with the same title.
func (s *Service) FindAnyHabit(ref string) (models.Habit, error) {
	h, err := s.FindHabit(ref)
	if !errors.Is(err, ErrHabitNotFound) {
		return h, err
	}
	all, listErr := s.store.GetAllHabits(true, true)
	if listErr != nil {
		return models.Habit{}, listErr
	}
	key := strings.ToLower(strings.TrimSpace(ref))
	for _, h := range all {
		if h.DeletedAt != nil && strings.ToLower(h.Title) == key {
			return h, nil
		}
	}
	return models.Habit{}, err
}

// ActiveHabits returns the habits the engine reports on: not archived and
// not deleted, in display order.
func (s *Service) ActiveHabits() ([]models.Habit, error) {
	return s.store.GetAllHabits(false, false)
}
