// Package jsonstore keeps each collection in its own JSON document inside a
// data directory. Documents are replaced atomically (temp file + rename);
// mutations are serialized by an in-process mutex plus a lock file so that
// several processes can share one directory.
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/lockfile"
	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

const (
	activityFile = "activity_log.json"
	todoFile     = "todos.json"
	habitFile    = "habits.json"
	rewardFile   = "rewards.json"
	emotionFile  = "emotional_log.json"
)

var documentFiles = []string{activityFile, todoFile, habitFile, rewardFile, emotionFile}

// DocumentFiles lists the documents a data directory holds, in write order.
func DocumentFiles() []string {
	return slices.Clone(documentFiles)
}

type activityDoc struct {
	Entries []models.ActivityLogEntry `json:"entries"`
}

type todoDoc struct {
	Todos []models.TodoItem `json:"todos"`
}

type habitDoc struct {
	Habits []models.Habit `json:"habits"`
}

type emotionDoc struct {
	Logs []models.EmotionalCheckIn `json:"logs"`
}

type Store struct {
	dir string

	mu sync.Mutex

	cacheMu sync.RWMutex
	cache   map[string][]byte
	gen     map[string]uint64 // bumped on every invalidation

	watcher *fsnotify.Watcher
	done    chan struct{}
	loaded  bool
}

func New(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string][]byte),
		gen:   make(map[string]uint64),
	}
}

// Init creates the data directory and seeds any missing document. Existing
// documents are left untouched.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	seeds := map[string]any{
		activityFile: activityDoc{Entries: []models.ActivityLogEntry{}},
		todoFile:     todoDoc{Todos: []models.TodoItem{}},
		habitFile:    habitDoc{Habits: models.DefaultHabits()},
		rewardFile:   models.DefaultRewardBook(),
		emotionFile:  emotionDoc{Logs: []models.EmotionalCheckIn{}},
	}
	for _, name := range documentFiles {
		if _, err := os.Stat(s.path(name)); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", name, err)
		}
		data, err := json.MarshalIndent(seeds[name], "", "  ")
		if err != nil {
			return err
		}
		if err := s.writeFile(name, data); err != nil {
			return err
		}
	}

	return s.startWatcher()
}

// Load prepares the store for use, initializing an empty one on first run.
func (s *Store) Load() error {
	if s.loaded {
		return nil
	}
	return s.Init()
}

func (s *Store) Close() error {
	s.cacheMu.Lock()
	clear(s.cache)
	s.cacheMu.Unlock()
	s.loaded = false

	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

func (s *Store) GetConfigPath() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// startWatcher drops cached documents when they change on disk, so edits
// made by another process are picked up by the next read.
func (s *Store) startWatcher() error {
	if s.loaded || s.watcher != nil {
		s.loaded = true
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("File watcher unavailable, caching disabled", "error", err)
		s.loaded = true
		return nil
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		logger.Warn("File watcher unavailable, caching disabled", "error", err)
		s.loaded = true
		return nil
	}

	s.watcher = w
	s.done = make(chan struct{})
	s.loaded = true
	go s.watch(w, s.done)
	return nil
}

func (s *Store) watch(w *fsnotify.Watcher, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				s.invalidate(filepath.Base(ev.Name))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error", "error", err)
		}
	}
}

func (s *Store) invalidate(name string) {
	s.cacheMu.Lock()
	delete(s.cache, name)
	s.gen[name]++
	s.cacheMu.Unlock()
}

// cachingEnabled reports whether external edits can be observed. Without a
// watcher every read goes to disk.
func (s *Store) cachingEnabled() bool {
	return s.watcher != nil
}

// For testing
var readFileFunc = os.ReadFile

// readFile returns the document bytes. Fresh reads bypass the cache and are
// used inside the exclusive scope.
func (s *Store) readFile(name string, fresh bool) ([]byte, error) {
	if !s.loaded {
		return nil, storage.ErrNotLoaded
	}
	s.cacheMu.RLock()
	data, ok := s.cache[name]
	gen := s.gen[name]
	s.cacheMu.RUnlock()
	if ok && !fresh && s.cachingEnabled() {
		return data, nil
	}

	data, err := readFileFunc(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	// A change seen while reading means data may already be stale.
	if s.cachingEnabled() {
		s.cacheMu.Lock()
		if s.gen[name] == gen {
			s.cache[name] = data
		}
		s.cacheMu.Unlock()
	}
	return data, nil
}

// writeFile replaces the document atomically and refreshes the cache.
func (s *Store) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	if s.cachingEnabled() {
		s.cacheMu.Lock()
		s.cache[name] = data
		s.cacheMu.Unlock()
	}
	return nil
}

// decode unmarshals a document. A missing document decodes to the zero
// value; a corrupt one is logged and also yields the zero value, with ok
// false.
func decode[T any](name string, data []byte) (doc T, ok bool) {
	if len(data) == 0 {
		return doc, true
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("Corrupt store document, using empty collection", "file", name, "error", err)
		var zero T
		return zero, false
	}
	return doc, true
}

// readDoc is decode for reads outside a transaction.
func readDoc[T any](name string, data []byte) T {
	doc, _ := decode[T](name, data)
	return doc
}

// quarantine moves a corrupt document aside so the next write does not
// destroy what a hand edit left in it.
func (s *Store) quarantine(name string) error {
	dest := s.path(name + ".corrupt-" + time.Now().Format("20060102-150405.000000000"))
	if err := os.Rename(s.path(name), dest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to preserve corrupt %s: %w", name, err)
	}
	logger.Warn("Preserved corrupt store document before overwriting", "file", name, "copy", dest)
	return nil
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// Update runs fn while holding the in-process mutex and the directory lock
// file. Documents written through the Tx are flushed only when fn succeeds.
func (s *Store) Update(fn func(storage.Tx) error) error {
	if !s.loaded {
		return storage.ErrNotLoaded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := lockfile.Acquire(s.path(constants.LockFileName), constants.LockTimeout)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("Failed to release store lock", "error", err)
		}
	}()

	tx := &jsonTx{s: s, pending: make(map[string][]byte), corrupt: make(map[string]bool)}
	if err := fn(tx); err != nil {
		return err
	}

	// Activity log first: a crash between writes never leaves a completed
	// to-do without its points.
	for _, name := range documentFiles {
		data, ok := tx.pending[name]
		if !ok {
			continue
		}
		if tx.corrupt[name] {
			if err := s.quarantine(name); err != nil {
				return err
			}
		}
		if err := s.writeFile(name, data); err != nil {
			return err
		}
	}
	return nil
}

type jsonTx struct {
	s       *Store
	pending map[string][]byte
	corrupt map[string]bool // documents on disk that failed to decode
}

func txDoc[T any](tx *jsonTx, name string) (T, error) {
	var zero T
	data, err := tx.read(name)
	if err != nil {
		return zero, err
	}
	if _, written := tx.pending[name]; written {
		doc, _ := decode[T](name, data)
		return doc, nil
	}
	doc, ok := decode[T](name, data)
	if !ok {
		tx.corrupt[name] = true
	}
	return doc, nil
}

func (tx *jsonTx) read(name string) ([]byte, error) {
	if data, ok := tx.pending[name]; ok {
		return data, nil
	}
	return tx.s.readFile(name, true)
}

func (tx *jsonTx) write(name string, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	tx.pending[name] = data
	return nil
}

func (tx *jsonTx) LoadActivityLog() ([]models.ActivityLogEntry, error) {
	doc, err := txDoc[activityDoc](tx, activityFile)
	return doc.Entries, err
}

func (tx *jsonTx) AppendActivityLog(entry models.ActivityLogEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	entries, err := tx.LoadActivityLog()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID == entry.ID {
			return fmt.Errorf("%w: activity %s", storage.ErrAlreadyExists, entry.ID)
		}
	}
	return tx.write(activityFile, activityDoc{Entries: append(entries, entry)})
}

func (tx *jsonTx) DeleteActivityLog(id string) error {
	entries, err := tx.LoadActivityLog()
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.ID == id {
			kept := append(entries[:i:i], entries[i+1:]...)
			return tx.write(activityFile, activityDoc{Entries: kept})
		}
	}
	return fmt.Errorf("%w: activity %s", storage.ErrNotFound, id)
}

func (tx *jsonTx) LoadTodos() ([]models.TodoItem, error) {
	doc, err := txDoc[todoDoc](tx, todoFile)
	return doc.Todos, err
}

func (tx *jsonTx) SaveTodos(todos []models.TodoItem) error {
	if err := storage.ValidateAll(todos); err != nil {
		return err
	}
	return tx.write(todoFile, todoDoc{Todos: nonNil(todos)})
}

func (tx *jsonTx) LoadRewards() (models.RewardBook, error) {
	return txDoc[models.RewardBook](tx, rewardFile)
}

func (tx *jsonTx) SaveRewards(book models.RewardBook) error {
	if err := book.Validate(); err != nil {
		return err
	}
	book.Rewards = nonNil(book.Rewards)
	book.History = nonNil(book.History)
	return tx.write(rewardFile, book)
}

func (tx *jsonTx) LoadHabits() ([]models.Habit, error) {
	doc, err := txDoc[habitDoc](tx, habitFile)
	return doc.Habits, err
}

func (tx *jsonTx) SaveHabits(habits []models.Habit) error {
	if err := storage.ValidateAll(habits); err != nil {
		return err
	}
	return tx.write(habitFile, habitDoc{Habits: nonNil(habits)})
}

func (tx *jsonTx) LoadEmotionalLog() ([]models.EmotionalCheckIn, error) {
	doc, err := txDoc[emotionDoc](tx, emotionFile)
	return doc.Logs, err
}

func (tx *jsonTx) AppendEmotionalLog(c models.EmotionalCheckIn) error {
	if err := c.Validate(); err != nil {
		return err
	}
	doc, err := txDoc[emotionDoc](tx, emotionFile)
	if err != nil {
		return err
	}
	doc.Logs = append(doc.Logs, c)
	return tx.write(emotionFile, doc)
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
