// Package backup snapshots and restores the local stores. SQLite files are
// copied with VACUUM INTO, bbolt files through a read transaction, and a
// JSON data directory is bundled into a single document.
package backup

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/lockfile"
	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/storage/jsonstore"
)

const (
	// FilePrefix starts every backup file name
	FilePrefix = constants.AppName + "-"

	timestampFormat = "20060102-150405"
	bundleVersion   = 1
)

var (
	// ErrUnsupportedBackend is returned for stores that are not local files
	ErrUnsupportedBackend = errors.New("backups are only available for json, sqlite and bolt stores")
	// ErrNoSource is returned when the store has not been created yet
	ErrNoSource = errors.New("store does not exist")
)

// Info describes one backup file
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager handles backup operations for one store
type Manager struct {
	backend   string
	source    string
	backupDir string
	boltDB    *bolt.DB
	now       func() time.Time
}

type Option func(*Manager)

// WithBoltDB snapshots through an already open bbolt handle instead of
// opening the file, which would block on the writer's file lock.
func WithBoltDB(db *bolt.DB) Option {
	return func(m *Manager) { m.boltDB = db }
}

// WithClock replaces the clock used to name backups.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager for the store of the given backend at
// source. Backups live in a "backups" directory next to the source.
func NewManager(backend, source string, opts ...Option) (*Manager, error) {
	if suffix(backend) == "" {
		return nil, ErrUnsupportedBackend
	}
	m := &Manager{
		backend:   backend,
		source:    filepath.Clean(source),
		backupDir: filepath.Join(filepath.Dir(filepath.Clean(source)), constants.BackupDirName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func suffix(backend string) string {
	switch backend {
	case constants.BackendSQLite:
		return ".db"
	case constants.BackendBolt:
		return ".bolt"
	case constants.BackendJSON:
		return ".json"
	}
	return ""
}

// BackupDir returns the backup directory path
func (m *Manager) BackupDir() string {
	return m.backupDir
}

// CreateBackup snapshots the store and prunes backups beyond MaxBackups.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := os.Stat(m.source); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNoSource, m.source)
	}

	dest, err := m.nextPath()
	if err != nil {
		return "", err
	}

	switch m.backend {
	case constants.BackendSQLite:
		err = m.snapshotSQLite(dest)
	case constants.BackendBolt:
		err = m.snapshotBolt(dest)
	case constants.BackendJSON:
		err = m.snapshotJSON(dest)
	}
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to back up %s store: %w", m.backend, err)
	}
	logger.Info("Backup created", "backend", m.backend, "path", dest)

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}
	return dest, nil
}

// nextPath picks a free file name for a backup taken now.
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(timestampFormat)
	ext := suffix(m.backend)
	path := filepath.Join(m.backupDir, FilePrefix+stamp+ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", FilePrefix, stamp, counter, ext))
	}
}

func (m *Manager) snapshotSQLite(dest string) error {
	db, err := sql.Open("sqlite", m.source+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		db.Close()
		return copyFile(m.source, dest)
	}
	return nil
}

func (m *Manager) snapshotBolt(dest string) error {
	db := m.boltDB
	if db == nil {
		opened, err := bolt.Open(m.source, 0600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
		if err != nil {
			return fmt.Errorf("failed to open source database: %w", err)
		}
		defer opened.Close()
		db = opened
	}
	return db.View(func(tx *bolt.Tx) error {
		return tx.CopyFile(dest, 0600)
	})
}

// bundle is the on-disk form of a JSON store backup.
type bundle struct {
	Version   int                        `json:"version"`
	CreatedAt time.Time                  `json:"created_at"`
	Documents map[string]json.RawMessage `json:"documents"`
}

func (m *Manager) snapshotJSON(dest string) error {
	lock, err := lockfile.Acquire(filepath.Join(m.source, constants.LockFileName), constants.LockTimeout)
	if err != nil {
		return err
	}
	defer lock.Release()

	b := bundle{Version: bundleVersion, CreatedAt: m.now(), Documents: make(map[string]json.RawMessage)}
	for _, name := range jsonstore.DocumentFiles() {
		data, err := os.ReadFile(filepath.Join(m.source, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if !json.Valid(data) {
			logger.Warn("Skipping corrupt store document in backup", "file", name)
			continue
		}
		b.Documents[name] = data
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0600)
}

// ListBackups returns all backups, newest first.
func (m *Manager) ListBackups() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	ext := suffix(m.backend)
	backups := []Info{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		ts, ok := parseTimestamp(strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), ext))
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, name),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// parseTimestamp accepts "YYYYMMDD-HHMMSS" with an optional "-N" counter.
func parseTimestamp(s string) (time.Time, bool) {
	if ts, err := time.ParseInLocation(timestampFormat, s, time.Local); err == nil {
		return ts, true
	}
	i := strings.LastIndexByte(s, '-')
	if i < 0 {
		return time.Time{}, false
	}
	if _, err := strconv.Atoi(s[i+1:]); err != nil {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(timestampFormat, s[:i], time.Local)
	return ts, err == nil
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the store with the contents of backupPath. The
// current store is backed up first. The caller must close the store.
func (m *Manager) RestoreBackup(backupPath string) (previous string, err error) {
	if _, err := os.Stat(backupPath); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := m.verify(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if _, err := os.Stat(m.source); err == nil {
		previous, err = m.createBackup(true)
		if err != nil {
			return "", fmt.Errorf("failed to back up current store before restore: %w", err)
		}
	}

	if m.backend == constants.BackendJSON {
		err = m.restoreJSON(backupPath)
	} else {
		err = replaceFile(backupPath, m.source)
	}
	if err != nil {
		return previous, fmt.Errorf("failed to restore %s store: %w", m.backend, err)
	}
	logger.Info("Backup restored", "backend", m.backend, "from", backupPath)
	return previous, nil
}

func (m *Manager) verify(path string) error {
	switch m.backend {
	case constants.BackendSQLite:
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return err
		}
		defer db.Close()
		var count int
		return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
	case constants.BackendBolt:
		db, err := bolt.Open(path, 0600, &bolt.Options{ReadOnly: true, Timeout: time.Second})
		if err != nil {
			return err
		}
		defer db.Close()
		return db.View(func(tx *bolt.Tx) error {
			if tx.Bucket([]byte("collections")) == nil {
				return errors.New("not an innerlevel database")
			}
			return nil
		})
	case constants.BackendJSON:
		_, err := readBundle(path)
		return err
	}
	return ErrUnsupportedBackend
}

func readBundle(path string) (bundle, error) {
	var b bundle
	data, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return b, err
	}
	if b.Version != bundleVersion {
		return b, fmt.Errorf("unsupported backup version %d", b.Version)
	}
	for name := range b.Documents {
		if filepath.Base(name) != name {
			return b, fmt.Errorf("invalid document name %q", name)
		}
	}
	return b, nil
}

func (m *Manager) restoreJSON(backupPath string) error {
	b, err := readBundle(backupPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(m.source, 0700); err != nil {
		return err
	}

	lock, err := lockfile.Acquire(filepath.Join(m.source, constants.LockFileName), constants.LockTimeout)
	if err != nil {
		return err
	}
	defer lock.Release()

	for _, name := range jsonstore.DocumentFiles() {
		dest := filepath.Join(m.source, name)
		data, ok := b.Documents[name]
		if !ok {
			// absent from the snapshot: the store recreates it empty on load
			if err := os.Remove(dest); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			continue
		}
		if err := writeAtomic(dest, data); err != nil {
			return err
		}
	}
	return nil
}

// replaceFile copies src over dst through a temp file and rename.
func replaceFile(src, dst string) error {
	tmp := dst + ".restore.tmp"
	if err := copyFile(src, tmp); err != nil {
		return fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", removeErr)
		}
		return err
	}
	return nil
}

func writeAtomic(dst string, data []byte) error {
	tmp := dst + ".restore.tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
