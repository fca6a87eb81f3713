package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/postgres"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/tracker"
	"github.com/julianstephens/habitual/internal/utils"
)

// EnvDBConnection names a PostgreSQL connection string taken from the environment
const EnvDBConnection = "HABITUAL_DB_CONNECTION"

type Context struct {
	Store   storage.Provider
	Tracker *tracker.Service
}

// NewContext wires a tracker to store, backing up SQLite databases before
// destructive operations.
func NewContext(store storage.Provider, opts ...tracker.Option) *Context {
	c := &Context{Store: store}
	opts = append([]tracker.Option{tracker.WithBackup(c.Backup)}, opts...)
	c.Tracker = tracker.New(store, opts...)
	return c
}

// IsPostgres reports whether config looks like a PostgreSQL connection string.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") ||
		strings.HasPrefix(config, "postgresql://") ||
		strings.Contains(config, "host=")
}

// NewProvider picks a storage backend. An empty config falls back to
// HABITUAL_DB_CONNECTION, then the keyring, then the default SQLite path.
func NewProvider(config string) (storage.Provider, error) {
	if config == "" {
		config = os.Getenv(EnvDBConnection)
	}
	if config == "" {
		connStr, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			config = connStr
		case errors.Is(err, keyring.ErrNotFound), errors.Is(err, keyring.ErrKeyringUnavailable):
		default:
			logger.Warn("failed to read keyring", "error", err)
		}
	}
	if config == "" {
		config = constants.DefaultConfigPath
	}

	if IsPostgres(config) {
		if err := postgres.ValidateConnString(config); err != nil {
			return nil, err
		}
		return postgres.New(config), nil
	}
	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ConfigDir returns the directory holding logs, backups and reminder
// config. PostgreSQL stores use the default SQLite directory.
func ConfigDir(store storage.Provider) string {
	if s, ok := store.(*sqlite.Store); ok {
		return filepath.Dir(s.GetConfigPath())
	}
	dir, err := ExpandPath(filepath.Dir(constants.DefaultConfigPath))
	if err != nil {
		return "."
	}
	return dir
}

// Backup snapshots a SQLite database. Other backends are skipped.
func (c *Context) Backup() error {
	s, ok := c.Store.(*sqlite.Store)
	if !ok {
		logger.Info("skipping file backup for non-SQLite storage")
		return nil
	}
	_, err := backup.NewManager(s.GetConfigPath()).Create()
	return err
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if err := c.Backup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveDay accepts YYYY-MM-DD, "today", "yesterday", or empty for today.
func (c *Context) ResolveDay(s string) (string, error) {
	today, err := c.Tracker.Today()
	if err != nil {
		return "", err
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return utils.DayKey(today), nil
	case "yesterday":
		return utils.DayKey(utils.AddDays(today, -1)), nil
	}
	day, err := utils.ParseDay(s)
	if err != nil {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	return utils.DayKey(day), nil
}

// ParseWeekdays parses a comma-separated list of weekdays
func ParseWeekdays(s string) ([]time.Weekday, error) {
	dayMap := map[string]time.Weekday{
		"sun": time.Sunday, "sunday": time.Sunday,
		"mon": time.Monday, "monday": time.Monday,
		"tue": time.Tuesday, "tuesday": time.Tuesday,
		"wed": time.Wednesday, "wednesday": time.Wednesday,
		"thu": time.Thursday, "thursday": time.Thursday,
		"fri": time.Friday, "friday": time.Friday,
		"sat": time.Saturday, "saturday": time.Saturday,
	}

	var weekdays []time.Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
			continue
		}
		// 0=Sunday, 6=Saturday
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		weekdays = append(weekdays, time.Weekday(num))
	}
	if len(weekdays) == 0 {
		return nil, fmt.Errorf("no weekdays given")
	}
	return weekdays, nil
}

// FormatSchedule describes when a habit is due.
func FormatSchedule(h models.Habit) string {
	if !h.IsWeekly() {
		return "daily"
	}
	days := make([]string, len(h.WeeklyDays))
	for i, wd := range h.WeeklyDays {
		days[i] = wd.String()[:3]
	}
	return "weekly on " + strings.Join(days, ",")
}

// FormatTracking describes how a habit is measured.
func FormatTracking(h models.Habit) string {
	if !h.IsProgress() {
		return "completion"
	}
	return fmt.Sprintf("%s %s", strconv.FormatFloat(h.Target, 'f', -1, 64), h.Units)
}

// Confirm asks a yes/no question on stdin; anything but y/yes declines.
func Confirm(prompt string) (bool, error) {
	fmt.Printf("%s [y/N]: ", prompt)
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
