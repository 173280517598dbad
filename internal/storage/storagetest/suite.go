// Package storagetest holds the behaviour every storage.Provider backend must
// share. Backend packages call Run from their own tests.
package storagetest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

// Factory returns a fresh, loaded store. It should register its own cleanup.
type Factory func(t *testing.T) storage.Provider

func Run(t *testing.T, newStore Factory) {
	t.Run("SeedsDefaults", func(t *testing.T) { testSeedsDefaults(t, newStore(t)) })
	t.Run("ActivityLog", func(t *testing.T) { testActivityLog(t, newStore(t)) })
	t.Run("DeleteActivityLog", func(t *testing.T) { testDeleteActivityLog(t, newStore(t)) })
	t.Run("RejectsInvalidRecords", func(t *testing.T) { testRejectsInvalid(t, newStore(t)) })
	t.Run("Todos", func(t *testing.T) { testTodos(t, newStore(t)) })
	t.Run("Habits", func(t *testing.T) { testHabits(t, newStore(t)) })
	t.Run("Rewards", func(t *testing.T) { testRewards(t, newStore(t)) })
	t.Run("EmotionalLog", func(t *testing.T) { testEmotionalLog(t, newStore(t)) })
	t.Run("UpdateDiscardsOnError", func(t *testing.T) { testUpdateDiscards(t, newStore(t)) })
	t.Run("UpdateIsExclusive", func(t *testing.T) { testUpdateExclusive(t, newStore(t)) })
}

// Entry builds a valid activity entry for tests.
func Entry(date, category string, points int) models.ActivityLogEntry {
	return models.ActivityLogEntry{
		ID:          uuid.New().String(),
		Date:        date,
		Category:    category,
		Description: "test activity",
		Points:      points,
	}
}

func testSeedsDefaults(t *testing.T, s storage.Provider) {
	habits, err := s.LoadHabits()
	require.NoError(t, err)
	assert.Len(t, habits, len(models.DefaultHabits()))

	book, err := s.LoadRewards()
	require.NoError(t, err)
	assert.Len(t, book.Rewards, 3)
	assert.Empty(t, book.History)

	entries, err := s.LoadActivityLog()
	require.NoError(t, err)
	assert.Empty(t, entries)

	// A second Init must not reseed or wipe data
	require.NoError(t, s.AppendActivityLog(Entry("2025-01-01", constants.CategoryPersonal, 5)))
	require.NoError(t, s.Init())
	entries, err = s.LoadActivityLog()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	habits, err = s.LoadHabits()
	require.NoError(t, err)
	assert.Len(t, habits, len(models.DefaultHabits()))
}

func testActivityLog(t *testing.T, s storage.Provider) {
	e := Entry("2025-01-02", constants.CategoryProfessional, 10)
	e.Comment = "shipped"
	e.EmotionBefore = "Anxious"
	e.EmotionAfter = "Peaceful"
	e.EnergyLevel = models.Energy(4)

	require.NoError(t, s.AppendActivityLog(e))
	require.NoError(t, s.AppendActivityLog(Entry("2025-01-03", constants.CategoryPersonal, 3)))

	entries, err := s.LoadActivityLog()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, e, entries[0], "append order and every field survive a round trip")

	err = s.AppendActivityLog(e)
	assert.True(t, errors.Is(err, storage.ErrAlreadyExists), "duplicate id: %v", err)
}

func testDeleteActivityLog(t *testing.T, s storage.Provider) {
	a := Entry("2025-01-02", constants.CategoryPersonal, 4)
	b := Entry("2025-01-03", constants.CategoryPersonal, 6)
	require.NoError(t, s.AppendActivityLog(a))
	require.NoError(t, s.AppendActivityLog(b))

	require.NoError(t, s.DeleteActivityLog(a.ID))
	entries, err := s.LoadActivityLog()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, b.ID, entries[0].ID)

	assert.ErrorIs(t, s.DeleteActivityLog(a.ID), storage.ErrNotFound)
}

func testRejectsInvalid(t *testing.T, s storage.Provider) {
	bad := Entry("2025-01-02", constants.CategoryPersonal, 0)
	assert.Error(t, s.AppendActivityLog(bad))

	assert.Error(t, s.SaveTodos([]models.TodoItem{{ID: "t1", Task: "", DueDate: "2025-01-01", Priority: constants.PriorityHigh, Status: constants.StatusPending, Points: 5}}))
	assert.Error(t, s.SaveHabits([]models.Habit{{Name: "x", Category: "y", Points: 0}}))
	assert.Error(t, s.AppendEmotionalLog(models.EmotionalCheckIn{ID: "c", Date: "2025-01-01"}))

	entries, err := s.LoadActivityLog()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func testTodos(t *testing.T, s storage.Provider) {
	todos := []models.TodoItem{
		{ID: uuid.New().String(), Task: "Write report", DueDate: "2025-02-01", Priority: constants.PriorityHigh, Status: constants.StatusPending, Points: 10},
		{ID: uuid.New().String(), Task: "Call mom", DueDate: "2025-02-02", Priority: constants.PriorityLow, Status: constants.StatusInProgress, Points: 5},
	}
	require.NoError(t, s.SaveTodos(todos))

	got, err := s.LoadTodos()
	require.NoError(t, err)
	assert.ElementsMatch(t, todos, got)

	require.NoError(t, s.SaveTodos(todos[:1]))
	got, err = s.LoadTodos()
	require.NoError(t, err)
	assert.Equal(t, todos[:1], got)

	require.NoError(t, s.SaveTodos(nil))
	got, err = s.LoadTodos()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testHabits(t *testing.T, s storage.Provider) {
	habits := []models.Habit{
		{Name: "Stretch", Category: constants.CategorySelfCare, Points: 4},
		{Name: "Stretch", Category: constants.CategoryPersonal, Points: 2},
	}
	require.NoError(t, s.SaveHabits(habits))

	got, err := s.LoadHabits()
	require.NoError(t, err)
	assert.ElementsMatch(t, habits, got)
}

func testRewards(t *testing.T, s storage.Provider) {
	book, err := s.LoadRewards()
	require.NoError(t, err)
	require.NotEmpty(t, book.Rewards)

	book.Rewards[0].Redeemed = true
	book.History = append(book.History, models.Redemption{
		RewardID:   book.Rewards[0].ID,
		Name:       book.Rewards[0].Name,
		PointsCost: book.Rewards[0].PointsRequired,
		RedeemedOn: "2025-03-01",
	})
	require.NoError(t, s.SaveRewards(book))

	got, err := s.LoadRewards()
	require.NoError(t, err)
	assert.ElementsMatch(t, book.Rewards, got.Rewards)
	assert.Equal(t, book.History, got.History)

	// History outlives its reward
	got.Rewards = got.Rewards[1:]
	require.NoError(t, s.SaveRewards(got))
	again, err := s.LoadRewards()
	require.NoError(t, err)
	assert.Len(t, again.Rewards, len(book.Rewards)-1)
	assert.Len(t, again.History, 1)
}

func testEmotionalLog(t *testing.T, s storage.Provider) {
	c := models.EmotionalCheckIn{
		ID: uuid.New().String(), Date: "2025-01-05",
		MorningEmotion: "Tired", MorningEnergy: 2, MorningNotes: "slow start",
		EveningEmotion: "Peaceful", EveningEnergy: 4, EveningNotes: "good walk",
		Gratitude: "tea",
	}
	dup := c
	dup.ID = uuid.New().String()

	require.NoError(t, s.AppendEmotionalLog(c))
	require.NoError(t, s.AppendEmotionalLog(dup))

	logs, err := s.LoadEmotionalLog()
	require.NoError(t, err)
	require.Len(t, logs, 2, "check-ins sharing a date are independent")
	assert.Equal(t, c, logs[0])
}

func testUpdateDiscards(t *testing.T, s storage.Provider) {
	boom := errors.New("boom")
	err := s.Update(func(tx storage.Tx) error {
		if err := tx.AppendActivityLog(Entry("2025-01-01", constants.CategoryPersonal, 5)); err != nil {
			return err
		}
		entries, err := tx.LoadActivityLog()
		if err != nil {
			return err
		}
		if len(entries) != 1 {
			return fmt.Errorf("tx should see its own write, got %d entries", len(entries))
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := s.LoadActivityLog()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// testUpdateExclusive runs read-modify-write cycles concurrently; a lost
// update would leave fewer todos than workers.
func testUpdateExclusive(t *testing.T, s storage.Provider) {
	const workers = 12
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Update(func(tx storage.Tx) error {
				todos, err := tx.LoadTodos()
				if err != nil {
					return err
				}
				todos = append(todos, models.TodoItem{
					ID: uuid.New().String(), Task: fmt.Sprintf("task %d", i), DueDate: "2025-01-01",
					Priority: constants.PriorityMedium, Status: constants.StatusPending, Points: 1,
				})
				return tx.SaveTodos(todos)
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	todos, err := s.LoadTodos()
	require.NoError(t, err)
	assert.Len(t, todos, workers)
}
