// Package boltstore implements storage.Provider on bbolt. The append-only
// logs are sequence-keyed buckets; the small mutable collections are single
// JSON documents in the "collections" bucket. bbolt admits one read-write
// transaction at a time, which is the exclusive scope Update needs.
package boltstore

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

// Bucket keys
var (
	bucketActivity    = []byte("activity_log")
	bucketActivityIDs = []byte("activity_ids")
	bucketEmotions    = []byte("emotional_log")
	bucketCollections = []byte("collections")
	bucketMeta        = []byte("meta")
	keyTodos          = []byte("todos")
	keyHabits         = []byte("habits")
	keyRewards        = []byte("rewards")
	keySeeded         = []byte("seeded")
)

var allBuckets = [][]byte{bucketActivity, bucketActivityIDs, bucketEmotions, bucketCollections, bucketMeta}

type Store struct {
	path string
	db   *bolt.DB
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// DB exposes the underlying handle for backups.
func (s *Store) DB() *bolt.DB {
	return s.db
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := bolt.Open(s.path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("bbolt open: %w", err)
	}
	s.db = db
	return nil
}

// Init creates the buckets and seeds the default habits and rewards once.
func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		if meta.Get(keySeeded) != nil {
			return nil
		}
		t := &boltTx{tx: tx}
		if err := t.SaveHabits(models.DefaultHabits()); err != nil {
			return fmt.Errorf("failed to seed habits: %w", err)
		}
		if err := t.SaveRewards(models.DefaultRewardBook()); err != nil {
			return fmt.Errorf("failed to seed rewards: %w", err)
		}
		return meta.Put(keySeeded, []byte("1"))
	})
}

// Load opens the database, initializing it on first run.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	return s.Init()
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) Update(fn func(storage.Tx) error) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (s *Store) view(fn func(*boltTx) error) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

type boltTx struct {
	tx *bolt.Tx
}

func seqKey(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func (t *boltTx) bucket(name []byte) (*bolt.Bucket, error) {
	b := t.tx.Bucket(name)
	if b == nil {
		return nil, fmt.Errorf("bucket %s missing, run init", name)
	}
	return b, nil
}

// loadSequence decodes every value of a sequence bucket in key order,
// skipping values that fail to decode or validate.
func loadSequence[T any, P interface {
	*T
	Validate() error
}](t *boltTx, name []byte) ([]T, error) {
	b, err := t.bucket(name)
	if err != nil {
		return nil, err
	}
	out := []T{}
	err = b.ForEach(func(k, v []byte) error {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			logger.Warn("Skipping undecodable record", "bucket", string(name), "error", err)
			return nil
		}
		if err := P(&item).Validate(); err != nil {
			logger.Warn("Skipping invalid record", "bucket", string(name), "error", err)
			return nil
		}
		out = append(out, item)
		return nil
	})
	return out, err
}

func (t *boltTx) appendSequence(name []byte, v any) ([]byte, error) {
	b, err := t.bucket(name)
	if err != nil {
		return nil, err
	}
	n, err := b.NextSequence()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	key := seqKey(n)
	return key, b.Put(key, data)
}

// loadDoc decodes a collection document; a corrupt document yields the zero
// value and a warning.
func loadDoc[T any](t *boltTx, key []byte) (T, error) {
	var doc T
	b, err := t.bucket(bucketCollections)
	if err != nil {
		return doc, err
	}
	v := b.Get(key)
	if v == nil {
		return doc, nil
	}
	if err := json.Unmarshal(v, &doc); err != nil {
		logger.Warn("Corrupt collection document, using empty collection", "key", string(key), "error", err)
		var zero T
		return zero, nil
	}
	return doc, nil
}

func (t *boltTx) saveDoc(key []byte, v any) error {
	b, err := t.bucket(bucketCollections)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return b.Put(key, data)
}

func (t *boltTx) LoadActivityLog() ([]models.ActivityLogEntry, error) {
	return loadSequence[models.ActivityLogEntry](t, bucketActivity)
}

func (t *boltTx) AppendActivityLog(e models.ActivityLogEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	ids, err := t.bucket(bucketActivityIDs)
	if err != nil {
		return err
	}
	if ids.Get([]byte(e.ID)) != nil {
		return fmt.Errorf("%w: activity %s", storage.ErrAlreadyExists, e.ID)
	}
	key, err := t.appendSequence(bucketActivity, e)
	if err != nil {
		return err
	}
	return ids.Put([]byte(e.ID), key)
}

func (t *boltTx) DeleteActivityLog(id string) error {
	ids, err := t.bucket(bucketActivityIDs)
	if err != nil {
		return err
	}
	key := ids.Get([]byte(id))
	if key == nil {
		return fmt.Errorf("%w: activity %s", storage.ErrNotFound, id)
	}
	key = append([]byte(nil), key...)
	log, err := t.bucket(bucketActivity)
	if err != nil {
		return err
	}
	if err := log.Delete(key); err != nil {
		return err
	}
	return ids.Delete([]byte(id))
}

func (t *boltTx) LoadTodos() ([]models.TodoItem, error) {
	todos, err := loadDoc[[]models.TodoItem](t, keyTodos)
	if todos == nil && err == nil {
		todos = []models.TodoItem{}
	}
	return todos, err
}

func (t *boltTx) SaveTodos(todos []models.TodoItem) error {
	if err := storage.ValidateAll(todos); err != nil {
		return err
	}
	if todos == nil {
		todos = []models.TodoItem{}
	}
	return t.saveDoc(keyTodos, todos)
}

func (t *boltTx) LoadHabits() ([]models.Habit, error) {
	habits, err := loadDoc[[]models.Habit](t, keyHabits)
	if habits == nil && err == nil {
		habits = []models.Habit{}
	}
	return habits, err
}

func (t *boltTx) SaveHabits(habits []models.Habit) error {
	if err := storage.ValidateAll(habits); err != nil {
		return err
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return t.saveDoc(keyHabits, habits)
}

func (t *boltTx) LoadRewards() (models.RewardBook, error) {
	book, err := loadDoc[models.RewardBook](t, keyRewards)
	if book.Rewards == nil {
		book.Rewards = []models.Reward{}
	}
	if book.History == nil {
		book.History = []models.Redemption{}
	}
	return book, err
}

func (t *boltTx) SaveRewards(book models.RewardBook) error {
	if err := book.Validate(); err != nil {
		return err
	}
	return t.saveDoc(keyRewards, book)
}

func (t *boltTx) LoadEmotionalLog() ([]models.EmotionalCheckIn, error) {
	return loadSequence[models.EmotionalCheckIn](t, bucketEmotions)
}

func (t *boltTx) AppendEmotionalLog(c models.EmotionalCheckIn) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := t.appendSequence(bucketEmotions, c)
	return err
}
