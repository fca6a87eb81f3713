package storage

import (
	"errors"

	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/models"
)

var (
	// ErrNotFound is returned when a habit, entry or milestone state does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEntry is returned when a habit already has an entry for the day
	ErrDuplicateEntry = errors.New("an entry already exists for this habit and day")
	// ErrCorruptState is returned when stored milestone state cannot be decoded
	ErrCorruptState = errors.New("stored state is corrupt")
)

// Repository is the data surface shared by a store and its transactions
type Repository interface {
	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits
	AddHabit(models.Habit) error
	// GetHabit returns the habit with the given ID, including archived and
	// soft-deleted habits so they can be restored or purged.
	GetHabit(id string) (models.Habit, error)
	// GetHabitByTitle matches active habits case-insensitively after trimming.
	GetHabitByTitle(title string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error
	// PurgeHabit hard deletes a habit with its entries and milestone state.
	PurgeHabit(id string) error
	NextPosition() (int, error)

	// Entries
	// AddEntry returns ErrDuplicateEntry if the habit already has an entry for the day.
	AddEntry(models.Entry) error
	// SaveEntry inserts or replaces the entry for (habit, day).
	SaveEntry(models.Entry) error
	GetEntry(habitID, day string) (models.Entry, error)
	RemoveEntry(day, habitID string) error
	GetEntriesInRange(startDay, endDay string) ([]models.Entry, error)
	GetEntriesForHabit(habitID string) ([]models.Entry, error)
	GetAllEntries() ([]models.Entry, error)

	// Milestones
	GetMilestoneState(habitID string) (models.MilestoneState, error)
	SaveMilestoneState(models.MilestoneState) error
	GetAllMilestoneStates() (map[string]models.MilestoneState, error)

	// Weekly history
	GetWeeklyHistory() (models.WeeklyHistory, error)
	SaveWeekRate(weekStart string, percent float64) error
	ReplaceWeeklyHistory(models.WeeklyHistory) error
}

// Provider is a storage backend
type Provider interface {
	Repository

	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Atomically runs fn inside a single transaction. fn must use only the
	// Repository it is given; returning an error rolls everything back.
	Atomically(fn func(Repository) error) error

	// Migrations
	Migrate(logFn func(string)) (int, error)
	MigrationStatus() (migration.Status, error)

	// Utils
	GetConfigPath() string
}
