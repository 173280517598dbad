package storage

import (
	"errors"

	"github.com/julianstephens/innerlevel/internal/models"
)

var (
	// ErrNotFound is returned when an addressed record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when appending a record whose ID is taken
	ErrAlreadyExists = errors.New("record already exists")
	// ErrNotLoaded is returned when a store is used before Load or Init
	ErrNotLoaded = errors.New("storage not loaded")
)

// Provider is the event store boundary. Every backend gives read-after-write
// visibility within a process, and every mutating call runs inside the same
// exclusive scope that Update exposes.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Activity log
	LoadActivityLog() ([]models.ActivityLogEntry, error)
	AppendActivityLog(models.ActivityLogEntry) error
	DeleteActivityLog(id string) error

	// Todos
	LoadTodos() ([]models.TodoItem, error)
	SaveTodos([]models.TodoItem) error

	// Habits
	LoadHabits() ([]models.Habit, error)
	SaveHabits([]models.Habit) error

	// Rewards
	LoadRewards() (models.RewardBook, error)
	SaveRewards(models.RewardBook) error

	// Emotional log
	LoadEmotionalLog() ([]models.EmotionalCheckIn, error)
	AppendEmotionalLog(models.EmotionalCheckIn) error

	// Update runs fn with exclusive access to the store. Writes made through
	// the Tx become visible only if fn returns nil.
	Update(fn func(Tx) error) error

	// Utils
	GetConfigPath() string
}

// Tx is the view of the store inside an Update scope.
type Tx interface {
	LoadActivityLog() ([]models.ActivityLogEntry, error)
	AppendActivityLog(models.ActivityLogEntry) error
	DeleteActivityLog(id string) error
	LoadTodos() ([]models.TodoItem, error)
	SaveTodos([]models.TodoItem) error
	LoadHabits() ([]models.Habit, error)
	SaveHabits([]models.Habit) error
	LoadRewards() (models.RewardBook, error)
	SaveRewards(models.RewardBook) error
	LoadEmotionalLog() ([]models.EmotionalCheckIn, error)
	AppendEmotionalLog(models.EmotionalCheckIn) error
}

// ValidateAll runs Validate on every element of a collection before it is
// persisted.
func ValidateAll[T any, P interface {
	*T
	Validate() error
}](items []T) error {
	for i := range items {
		if err := P(&items[i]).Validate(); err != nil {
			return err
		}
	}
	return nil
}
