package models

import (
	"fmt"
	"strings"

	"github.com/julianstephens/innerlevel/internal/constants"
)

// Habit is a quick-log template. Its identity is the (Name, Category) pair.
type Habit struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Points   int    `json:"points"`
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	if strings.TrimSpace(h.Category) == "" {
		return fmt.Errorf("habit category cannot be empty")
	}
	if h.Points < 1 {
		return fmt.Errorf("habit points must be at least 1, got %d", h.Points)
	}
	return nil
}

// Key is the habit's identity.
func (h *Habit) Key() string {
	return h.Category + "/" + h.Name
}

// FindHabit returns the index of the habit with the given name and category,
// or -1. Names compare case-insensitively.
func FindHabit(habits []Habit, name, category string) int {
	for i, h := range habits {
		if strings.EqualFold(h.Name, name) && (category == "" || strings.EqualFold(h.Category, category)) {
			return i
		}
	}
	return -1
}

// DefaultHabits is the habit set seeded into a fresh store.
func DefaultHabits() []Habit {
	return []Habit{
		{Name: "Daily Coding", Category: constants.CategoryProfessional, Points: 5},
		{Name: "LinkedIn Post", Category: constants.CategoryProfessional, Points: 10},
		{Name: "Job Application", Category: constants.CategoryProfessional, Points: 15},
		{Name: "Exercise", Category: constants.CategoryPersonal, Points: 5},
		{Name: "Reading", Category: constants.CategoryPersonal, Points: 3},
		{Name: "Slept well 7 hours", Category: constants.CategorySelfCare, Points: 10},
		{Name: "Screen-free break (20 min)", Category: constants.CategorySelfCare, Points: 5},
		{Name: "Wrote how I felt today", Category: constants.CategorySelfCare, Points: 15},
		{Name: "Guilt-free rest", Category: constants.CategorySelfCare, Points: 20},
		{Name: "Meditation", Category: constants.CategorySelfCare, Points: 10},
	}
}
