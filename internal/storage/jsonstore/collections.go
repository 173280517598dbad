package jsonstore

import (
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

func (s *Store) LoadActivityLog() ([]models.ActivityLogEntry, error) {
	data, err := s.readFile(activityFile, false)
	if err != nil {
		return nil, err
	}
	return readDoc[activityDoc](activityFile, data).Entries, nil
}

func (s *Store) AppendActivityLog(entry models.ActivityLogEntry) error {
	return s.Update(func(tx storage.Tx) error {
		return tx.AppendActivityLog(entry)
	})
}

func (s *Store) DeleteActivityLog(id string) error {
	return s.Update(func(tx storage.Tx) error {
		return tx.DeleteActivityLog(id)
	})
}

func (s *Store) LoadTodos() ([]models.TodoItem, error) {
	data, err := s.readFile(todoFile, false)
	if err != nil {
		return nil, err
	}
	return readDoc[todoDoc](todoFile, data).Todos, nil
}

func (s *Store) SaveTodos(todos []models.TodoItem) error {
	return s.Update(func(tx storage.Tx) error {
		return tx.SaveTodos(todos)
	})
}

func (s *Store) LoadHabits() ([]models.Habit, error) {
	data, err := s.readFile(habitFile, false)
	if err != nil {
		return nil, err
	}
	return readDoc[habitDoc](habitFile, data).Habits, nil
}

func (s *Store) SaveHabits(habits []models.Habit) error {
	return s.Update(func(tx storage.Tx) error {
		return tx.SaveHabits(habits)
	})
}

func (s *Store) LoadRewards() (models.RewardBook, error) {
	data, err := s.readFile(rewardFile, false)
	if err != nil {
		return models.RewardBook{}, err
	}
	return readDoc[models.RewardBook](rewardFile, data), nil
}

func (s *Store) SaveRewards(book models.RewardBook) error {
	return s.Update(func(tx storage.Tx) error {
		return tx.SaveRewards(book)
	})
}

func (s *Store) LoadEmotionalLog() ([]models.EmotionalCheckIn, error) {
	data, err := s.readFile(emotionFile, false)
	if err != nil {
		return nil, err
	}
	return readDoc[emotionDoc](emotionFile, data).Logs, nil
}

func (s *Store) AppendEmotionalLog(c models.EmotionalCheckIn) error {
	return s.Update(func(tx storage.Tx) error {
		return tx.AppendEmotionalLog(c)
	})
}
