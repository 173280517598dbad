package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/utils"
)

type TodoItem struct {
	ID       string               `json:"id"`
	Task     string               `json:"task"`
	DueDate  string               `json:"due_date"` // YYYY-MM-DD
	Priority constants.Priority   `json:"priority"`
	Status   constants.TodoStatus `json:"status"`
	Points   int                  `json:"points"`
}

func (t *TodoItem) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("todo id cannot be empty")
	}
	if strings.TrimSpace(t.Task) == "" {
		return fmt.Errorf("todo task cannot be empty")
	}
	if _, err := utils.ParseDate(t.DueDate); err != nil {
		return err
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return err
	}
	if t.Points < 1 {
		return fmt.Errorf("todo points must be at least 1, got %d", t.Points)
	}
	return nil
}

// ParsePriority accepts a priority name in any letter case.
func ParsePriority(s string) (constants.Priority, error) {
	for _, p := range []constants.Priority{constants.PriorityHigh, constants.PriorityMedium, constants.PriorityLow} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q (expected High, Medium or Low)", s)
}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(s string) (constants.TodoStatus, error) {
	for _, st := range []constants.TodoStatus{constants.StatusPending, constants.StatusInProgress, constants.StatusCompleted} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (expected Pending, In Progress or Completed)", s)
}

func priorityRank(p constants.Priority) int {
	switch p {
	case constants.PriorityHigh:
		return 0
	case constants.PriorityMedium:
		return 1
	default:
		return 2
	}
}

// SortTodos orders items by priority (High first), then due date, then task.
func SortTodos(items []TodoItem) {
	slices.SortStableFunc(items, func(a, b TodoItem) int {
		if d := priorityRank(a.Priority) - priorityRank(b.Priority); d != 0 {
			return d
		}
		if c := strings.Compare(a.DueDate, b.DueDate); c != 0 {
			return c
		}
		return strings.Compare(a.Task, b.Task)
	})
}

// FilterTodos keeps items whose status and priority are in the given sets.
// An empty set matches everything.
func FilterTodos(items []TodoItem, statuses []constants.TodoStatus, priorities []constants.Priority) []TodoItem {
	var out []TodoItem
	for _, it := range items {
		if len(statuses) > 0 && !slices.Contains(statuses, it.Status) {
			continue
		}
		if len(priorities) > 0 && !slices.Contains(priorities, it.Priority) {
			continue
		}
		out = append(out, it)
	}
	return out
}
