// Package backup snapshots and restores the SQLite database file.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

// ErrNoDatabase is returned when there is no database file to back up
var ErrNoDatabase = errors.New("database does not exist")

const timestampFormat = "20060102-150405"

// Info describes one backup file
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Name returns the file name of the backup.
func (i Info) Name() string {
	return filepath.Base(i.Path)
}

// Manager creates, lists, rotates and restores backups kept in a
// directory next to the database.
type Manager struct {
	dbPath    string
	backupDir string
	keep      int
	now       func() time.Time
}

// NewManager creates a backup manager for the database at dbPath
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:      constants.MaxBackups,
		now:       time.Now,
	}
}

// Dir returns the backup directory path
func (m *Manager) Dir() string {
	return m.backupDir
}

// Create writes a new backup and prunes the oldest beyond the retention limit.
func (m *Manager) Create() (Info, error) {
	info, err := m.create()
	if err != nil {
		return Info{}, err
	}
	if err := m.prune(); err != nil {
		logger.Warn("failed to rotate old backups", "error", err)
	}
	logger.Info("backup created", "path", info.Path)
	return info, nil
}

func (m *Manager) create() (Info, error) {
	if _, err := os.Stat(m.dbPath); errors.Is(err, os.ErrNotExist) {
		return Info{}, fmt.Errorf("%w: %s", ErrNoDatabase, m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	ts := m.now()
	path, err := m.uniquePath(ts)
	if err != nil {
		return Info{}, err
	}
	if err := vacuumInto(m.dbPath, path); err != nil {
		return Info{}, fmt.Errorf("failed to backup database: %w", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	return Info{Path: path, Timestamp: ts.Truncate(time.Second), Size: st.Size()}, nil
}

func (m *Manager) uniquePath(ts time.Time) (string, error) {
	base := constants.BackupFilePrefix + ts.Format(timestampFormat)
	path := filepath.Join(m.backupDir, base+constants.BackupFileSuffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%d%s", base, n, constants.BackupFileSuffix))
	}
}

// vacuumInto copies the database with VACUUM INTO, which produces a
// consistent, compacted file even while other connections are open.
func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := verify(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	_, err = db.Exec("VACUUM INTO ?", dst)
	return err
}

func verify(db *sql.DB) error {
	var n int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n)
}

// List returns all backups, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	type found struct {
		Info
		seq int
	}
	var backups []found
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, seq, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, found{
			Info: Info{Path: filepath.Join(m.backupDir, entry.Name()), Timestamp: ts, Size: info.Size()},
			seq:  seq,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].seq > backups[j].seq
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	out := make([]Info, len(backups))
	for i, b := range backups {
		out[i] = b.Info
	}
	return out, nil
}

// parseName extracts the timestamp and collision counter from
// habitual-YYYYMMDD-HHMMSS[-N].db.
func parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	if len(stamp) < len(timestampFormat) {
		return time.Time{}, 0, false
	}
	ts, err := time.ParseInLocation(timestampFormat, stamp[:len(timestampFormat)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	seq := 0
	if rest := stamp[len(timestampFormat):]; rest != "" {
		seq, err = strconv.Atoi(strings.TrimPrefix(rest, "-"))
		if err != nil || !strings.HasPrefix(rest, "-") {
			return time.Time{}, 0, false
		}
	}
	return ts, seq, true
}

func (m *Manager) prune() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Resolve finds a backup by path or by file name in the backup directory.
func (m *Manager) Resolve(ref string) (string, error) {
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	path := filepath.Join(m.backupDir, filepath.Base(ref))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("backup file does not exist: %s", ref)
	}
	return path, nil
}

// Restore replaces the database with the backup at path. The current
// database, if any, is backed up first and that backup is returned. The
// caller must close every connection to the database beforehand.
func (m *Manager) Restore(path string) (*Info, error) {
	src, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	err = verify(src)
	src.Close()
	if err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety *Info
	if _, err := os.Stat(m.dbPath); err == nil {
		info, err := m.create()
		if err != nil {
			return nil, fmt.Errorf("failed to backup current database before restore: %w", err)
		}
		safety = &info
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return safety, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return safety, fmt.Errorf("failed to restore database: %w", err)
	}
	logger.Info("database restored", "from", path)
	return safety, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
