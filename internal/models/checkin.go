package models

import (
	"fmt"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/utils"
)

// EmotionalCheckIn is a daily morning/evening check-in. Several check-ins
// may share a date; each is independent.
type EmotionalCheckIn struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	MorningEmotion string `json:"morning_emotion"`
	MorningEnergy  int    `json:"morning_energy"`
	MorningNotes   string `json:"morning_notes"`
	EveningEmotion string `json:"evening_emotion"`
	EveningEnergy  int    `json:"evening_energy"`
	EveningNotes   string `json:"evening_notes"`
	Gratitude      string `json:"gratitude"`
}

func (c *EmotionalCheckIn) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("check-in id cannot be empty")
	}
	if _, err := utils.ParseDate(c.Date); err != nil {
		return err
	}
	if c.MorningEmotion == "" || c.EveningEmotion == "" {
		return fmt.Errorf("check-in requires both morning and evening emotions")
	}
	for _, e := range []int{c.MorningEnergy, c.EveningEnergy} {
		if e < constants.MinEnergy || e > constants.MaxEnergy {
			return fmt.Errorf("energy level must be between %d and %d, got %d", constants.MinEnergy, constants.MaxEnergy, e)
		}
	}
	return nil
}

// EnergyDelta is evening energy minus morning energy.
func (c *EmotionalCheckIn) EnergyDelta() int {
	return c.EveningEnergy - c.MorningEnergy
}
