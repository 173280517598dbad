// Package sqlstore implements storage.Provider on database/sql for SQLite
// (modernc.org/sqlite) and PostgreSQL (github.com/lib/pq). Both dialects
// share one set of queries written with ? placeholders.
package sqlstore

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/migration"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
	"github.com/julianstephens/innerlevel/migrations"
)

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// sqliteParams make every transaction take the write lock up front and wait
// for a busy database instead of failing.
const sqliteParams = "_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"

// lockedTables are locked by Update on PostgreSQL. EXCLUSIVE mode still
// admits plain readers.
const lockedTables = "activity_log, todos, habits, rewards, redemptions, emotional_log"

type Store struct {
	dialect Dialect
	dsn     string
	db      *sql.DB
}

// NewSQLite returns a store backed by the SQLite file at path.
func NewSQLite(path string) *Store {
	return &Store{dialect: SQLite, dsn: path}
}

// NewPostgres returns a store backed by the PostgreSQL database at connStr.
// Tables live in their own schema, selected through search_path.
func NewPostgres(connStr string) *Store {
	return &Store{dialect: Postgres, dsn: withSearchPath(connStr)}
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// DB exposes the underlying handle for maintenance tasks such as backups.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) GetConfigPath() string {
	return s.dsn
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}

	switch s.dialect {
	case SQLite:
		if err := os.MkdirAll(filepath.Dir(s.dsn), 0700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err := sql.Open("sqlite", s.dsn+"?"+sqliteParams)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db
	case Postgres:
		db, err := sql.Open("postgres", s.dsn)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + schemaName); err != nil {
			db.Close()
			return connectError(s.dsn, fmt.Errorf("failed to create schema: %w", err))
		}
		s.db = db
	default:
		return fmt.Errorf("unsupported dialect %q", s.dialect)
	}

	if err := s.db.Ping(); err != nil {
		s.db.Close()
		s.db = nil
		return connectError(s.dsn, err)
	}
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, string(s.dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.dialect, err)
	}
	return migration.NewRunner(s.db, subFS, func(msg string) {
		logger.Info(msg)
	}), nil
}

// MigrationStatus reports the schema version against the embedded migrations.
func (s *Store) MigrationStatus() (migration.Status, error) {
	if s.db == nil {
		return migration.Status{}, storage.ErrNotLoaded
	}
	r, err := s.runner()
	if err != nil {
		return migration.Status{}, err
	}
	return r.Status()
}

// Init opens the database, applies pending migrations and seeds the default
// habits and rewards when the schema was created from scratch.
func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}

	r, err := s.runner()
	if err != nil {
		return err
	}
	current, err := r.CurrentVersion()
	if err != nil {
		return err
	}
	if _, err := r.Apply(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if current == 0 {
		return s.Update(func(tx storage.Tx) error {
			if err := tx.SaveHabits(models.DefaultHabits()); err != nil {
				return fmt.Errorf("failed to seed habits: %w", err)
			}
			if err := tx.SaveRewards(models.DefaultRewardBook()); err != nil {
				return fmt.Errorf("failed to seed rewards: %w", err)
			}
			return nil
		})
	}
	return nil
}

// Load opens the database. A fresh database is initialized; an existing one
// must not be newer than this build understands.
func (s *Store) Load() error {
	if err := s.open(); err != nil {
		return err
	}
	st, err := s.MigrationStatus()
	if err != nil {
		return err
	}
	if st.Current == 0 || !st.UpToDate() {
		return s.Init()
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Update runs fn in a transaction that excludes every other writer: BEGIN
// IMMEDIATE on SQLite, table locks on PostgreSQL.
func (s *Store) Update(fn func(storage.Tx) error) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if s.dialect == Postgres {
		if _, err := tx.Exec("LOCK TABLE " + lockedTables + " IN EXCLUSIVE MODE"); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to lock tables: %w", err)
		}
	}

	if err := fn(&sqlTx{s: s, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into the dialect's form.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func connectError(dsn string, err error) error {
	if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(dsn) {
		return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
	}
	return fmt.Errorf("failed to connect to database: %w", err)
}
