package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/storage"
	"github.com/julianstephens/innerlevel/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "innerlevel.bolt"))
	require.NoError(t, s.Load())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return newTestStore(t)
	})
}

func TestCorruptRecordsAreSkipped(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AppendActivityLog(storagetest.Entry("2025-01-01", constants.CategoryPersonal, 4)))

	require.NoError(t, s.DB().Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketActivity).Put(seqKey(999), []byte("{oops")); err != nil {
			return err
		}
		return tx.Bucket(bucketCollections).Put(keyTodos, []byte("not json"))
	}))

	entries, err := s.LoadActivityLog()
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	todos, err := s.LoadTodos()
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestReopenDoesNotReseed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "innerlevel.bolt")
	s := New(path)
	require.NoError(t, s.Load())
	require.NoError(t, s.SaveHabits(nil))
	require.NoError(t, s.Close())

	s = New(path)
	require.NoError(t, s.Load())
	defer s.Close()
	habits, err := s.LoadHabits()
	require.NoError(t, err)
	assert.Empty(t, habits)
}
