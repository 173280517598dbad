package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/utils"
)

// ActivityLogEntry is one point-earning activity. Entries are never edited
// after creation; they can only be removed with an explicit delete.
type ActivityLogEntry struct {
	ID            string `json:"id"`
	Date          string `json:"date"` // YYYY-MM-DD
	Category      string `json:"category"`
	Description   string `json:"task"`
	Points        int    `json:"points"`
	Comment       string `json:"comment,omitempty"`
	EmotionBefore string `json:"emotional_state_before,omitempty"`
	EmotionAfter  string `json:"emotional_state_after,omitempty"`
	EnergyLevel   *int   `json:"energy_level,omitempty"` // 1-5
}

// NewActivityLogEntry builds a validated entry with a fresh ID.
func NewActivityLogEntry(date, category, description string, points int) (ActivityLogEntry, error) {
	e := ActivityLogEntry{
		ID:          uuid.New().String(),
		Date:        date,
		Category:    category,
		Description: description,
		Points:      points,
	}
	if err := e.Validate(); err != nil {
		return ActivityLogEntry{}, err
	}
	return e, nil
}

func (e *ActivityLogEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("activity id cannot be empty")
	}
	if _, err := utils.ParseDate(e.Date); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return fmt.Errorf("activity category cannot be empty")
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("activity description cannot be empty")
	}
	if e.Points < 1 {
		return fmt.Errorf("activity points must be at least 1, got %d", e.Points)
	}
	if e.EnergyLevel != nil && (*e.EnergyLevel < constants.MinEnergy || *e.EnergyLevel > constants.MaxEnergy) {
		return fmt.Errorf("energy level must be between %d and %d, got %d", constants.MinEnergy, constants.MaxEnergy, *e.EnergyLevel)
	}
	return nil
}

// HasTransition reports whether both emotion fields are recorded.
func (e *ActivityLogEntry) HasTransition() bool {
	return e.EmotionBefore != "" && e.EmotionAfter != ""
}

// Energy returns a pointer to v, for filling EnergyLevel.
func Energy(v int) *int {
	return &v
}
