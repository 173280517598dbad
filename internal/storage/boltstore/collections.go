package boltstore

import (
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

func (s *Store) LoadActivityLog() (entries []models.ActivityLogEntry, err error) {
	err = s.view(func(t *boltTx) error {
		entries, err = t.LoadActivityLog()
		return err
	})
	return entries, err
}

func (s *Store) AppendActivityLog(e models.ActivityLogEntry) error {
	return s.Update(func(tx storage.Tx) error { return tx.AppendActivityLog(e) })
}

func (s *Store) DeleteActivityLog(id string) error {
	return s.Update(func(tx storage.Tx) error { return tx.DeleteActivityLog(id) })
}

func (s *Store) LoadTodos() (todos []models.TodoItem, err error) {
	err = s.view(func(t *boltTx) error {
		todos, err = t.LoadTodos()
		return err
	})
	return todos, err
}

func (s *Store) SaveTodos(todos []models.TodoItem) error {
	return s.Update(func(tx storage.Tx) error { return tx.SaveTodos(todos) })
}

func (s *Store) LoadHabits() (habits []models.Habit, err error) {
	err = s.view(func(t *boltTx) error {
		habits, err = t.LoadHabits()
		return err
	})
	return habits, err
}

func (s *Store) SaveHabits(habits []models.Habit) error {
	return s.Update(func(tx storage.Tx) error { return tx.SaveHabits(habits) })
}

func (s *Store) LoadRewards() (book models.RewardBook, err error) {
	err = s.view(func(t *boltTx) error {
		book, err = t.LoadRewards()
		return err
	})
	return book, err
}

func (s *Store) SaveRewards(book models.RewardBook) error {
	return s.Update(func(tx storage.Tx) error { return tx.SaveRewards(book) })
}

func (s *Store) LoadEmotionalLog() (logs []models.EmotionalCheckIn, err error) {
	err = s.view(func(t *boltTx) error {
		logs, err = t.LoadEmotionalLog()
		return err
	})
	return logs, err
}

func (s *Store) AppendEmotionalLog(c models.EmotionalCheckIn) error {
	return s.Update(func(tx storage.Tx) error { return tx.AppendEmotionalLog(c) })
}
