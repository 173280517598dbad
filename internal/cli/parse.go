package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/utils"
)

// SplitList splits a comma-separated flag value, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParsePriorities parses a comma-separated priority list.
func ParsePriorities(s string) ([]constants.Priority, error) {
	var out []constants.Priority
	for _, part := range SplitList(s) {
		p, err := models.ParsePriority(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseStatuses parses a comma-separated status list. "in-progress" is
// accepted for "In Progress".
func ParseStatuses(s string) ([]constants.TodoStatus, error) {
	var out []constants.TodoStatus
	for _, part := range SplitList(s) {
		st, err := models.ParseStatus(strings.ReplaceAll(part, "-", " "))
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// ValidateDate accepts an empty string (meaning today) or YYYY-MM-DD.
func ValidateDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := utils.ParseDate(s); err != nil {
		return fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return nil
}

// ShortID trims a UUID for table display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ValueOr returns s, or fallback when s is empty.
func ValueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// ResolveID expands a unique ID prefix to the full ID. An exact match always
// wins; an unknown or ambiguous prefix is returned unchanged so the caller's
// not-found error reports it.
func ResolveID(prefix string, ids []string) string {
	var match string
	for _, id := range ids {
		if id == prefix {
			return id
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return prefix
			}
			match = id
		}
	}
	if match == "" {
		return prefix
	}
	return match
}
