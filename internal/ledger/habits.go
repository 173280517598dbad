package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

// Habits lists the saved habits grouped by category.
func (l *Ledger) Habits() ([]models.Habit, error) {
	habits, err := l.store.LoadHabits()
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(habits, func(a, b models.Habit) int {
		return strings.Compare(a.Category, b.Category)
	})
	return habits, nil
}

func (l *Ledger) AddHabit(h models.Habit) error {
	h.Name = strings.TrimSpace(h.Name)
	h.Category = strings.TrimSpace(h.Category)
	if err := h.Validate(); err != nil {
		return err
	}
	return l.store.Update(func(tx storage.Tx) error {
		habits, err := tx.LoadHabits()
		if err != nil {
			return err
		}
		if models.FindHabit(habits, h.Name, h.Category) >= 0 {
			return fmt.Errorf("%w: %s", ErrHabitExists, h.Key())
		}
		return tx.SaveHabits(append(habits, h))
	})
}

// EditHabit replaces the habit identified by name and category. Past
// entries logged from it are not touched.
func (l *Ledger) EditHabit(name, category string, updated models.Habit) error {
	updated.Name = strings.TrimSpace(updated.Name)
	updated.Category = strings.TrimSpace(updated.Category)
	if err := updated.Validate(); err != nil {
		return err
	}
	return l.store.Update(func(tx storage.Tx) error {
		habits, err := tx.LoadHabits()
		if err != nil {
			return err
		}
		idx := models.FindHabit(habits, name, category)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, name)
		}
		if other := models.FindHabit(habits, updated.Name, updated.Category); other >= 0 && other != idx {
			return fmt.Errorf("%w: %s", ErrHabitExists, updated.Key())
		}
		habits[idx] = updated
		return tx.SaveHabits(habits)
	})
}

func (l *Ledger) RemoveHabit(name, category string) error {
	return l.store.Update(func(tx storage.Tx) error {
		habits, err := tx.LoadHabits()
		if err != nil {
			return err
		}
		idx := models.FindHabit(habits, name, category)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, name)
		}
		return tx.SaveHabits(slices.Delete(habits, idx, idx+1))
	})
}
