package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

func (l *Ledger) AddTodo(task, dueDate string, priority constants.Priority, points int) (models.TodoItem, error) {
	item := models.TodoItem{
		ID:       uuid.New().String(),
		Task:     strings.TrimSpace(task),
		DueDate:  dueDate,
		Priority: priority,
		Status:   constants.StatusPending,
		Points:   points,
	}
	if item.DueDate == "" {
		item.DueDate = l.TodayString()
	}
	if err := item.Validate(); err != nil {
		return models.TodoItem{}, err
	}
	err := l.store.Update(func(tx storage.Tx) error {
		todos, err := tx.LoadTodos()
		if err != nil {
			return err
		}
		return tx.SaveTodos(append(todos, item))
	})
	if err != nil {
		return models.TodoItem{}, err
	}
	return item, nil
}

// Todos returns items matching the status and priority sets, ordered by
// priority then due date.
func (l *Ledger) Todos(statuses []constants.TodoStatus, priorities []constants.Priority) ([]models.TodoItem, error) {
	todos, err := l.store.LoadTodos()
	if err != nil {
		return nil, err
	}
	out := models.FilterTodos(todos, statuses, priorities)
	models.SortTodos(out)
	return out, nil
}

// withTodo runs fn on the addressed to-do inside one exclusive scope and
// saves the list afterwards.
func (l *Ledger) withTodo(id string, fn func(tx storage.Tx, item *models.TodoItem) error) error {
	return l.store.Update(func(tx storage.Tx) error {
		todos, err := tx.LoadTodos()
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(todos, func(t models.TodoItem) bool { return t.ID == id })
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrTodoNotFound, id)
		}
		if err := fn(tx, &todos[idx]); err != nil {
			return err
		}
		return tx.SaveTodos(todos)
	})
}

// StartTodo moves a pending to-do to In Progress.
func (l *Ledger) StartTodo(id string) error {
	return l.withTodo(id, func(_ storage.Tx, item *models.TodoItem) error {
		if item.Status == constants.StatusCompleted {
			return fmt.Errorf("%w: %s", ErrTodoAlreadyCompleted, item.Task)
		}
		item.Status = constants.StatusInProgress
		return nil
	})
}

// CompleteTodo marks a to-do completed and credits its points as a Personal
// activity dated today. Completing twice is rejected so points are earned
// once.
func (l *Ledger) CompleteTodo(id string) (models.ActivityLogEntry, error) {
	var entry models.ActivityLogEntry
	err := l.withTodo(id, func(tx storage.Tx, item *models.TodoItem) error {
		if item.Status == constants.StatusCompleted {
			return fmt.Errorf("%w: %s", ErrTodoAlreadyCompleted, item.Task)
		}
		var err error
		entry, err = l.newEntry(constants.CategoryPersonal, "Completed: "+item.Task, item.Points, LogDetails{
			Comment: "Completed to-do item: " + item.Task,
		})
		if err != nil {
			return err
		}
		if err := tx.AppendActivityLog(entry); err != nil {
			return err
		}
		item.Status = constants.StatusCompleted
		return nil
	})
	if err != nil {
		return models.ActivityLogEntry{}, err
	}
	logger.Debug("To-do completed", "id", id, "points", entry.Points)
	return entry, nil
}

// RemoveTodo deletes a to-do. Points already credited for it stay.
func (l *Ledger) RemoveTodo(id string) error {
	return l.store.Update(func(tx storage.Tx) error {
		todos, err := tx.LoadTodos()
		if err != nil {
			return err
		}
		idx := slices.IndexFunc(todos, func(t models.TodoItem) bool { return t.ID == id })
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrTodoNotFound, id)
		}
		return tx.SaveTodos(slices.Delete(todos, idx, idx+1))
	})
}
