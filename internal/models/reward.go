package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/innerlevel/internal/utils"
)

// Reward is something points can be spent on. Once Redeemed is true it
// stays true.
type Reward struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PointsRequired int    `json:"points_required"`
	Category       string `json:"category"`
	Redeemed       bool   `json:"redeemed"`
}

func (r *Reward) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("reward id cannot be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("reward name cannot be empty")
	}
	if r.PointsRequired < 1 {
		return fmt.Errorf("reward points required must be at least 1, got %d", r.PointsRequired)
	}
	return nil
}

// Redemption is an append-only record of a spend. It can outlive the reward
// it refers to.
type Redemption struct {
	RewardID   string `json:"reward_id"`
	Name       string `json:"name"`
	PointsCost int    `json:"points_spent"`
	RedeemedOn string `json:"date_redeemed"` // YYYY-MM-DD
}

func (r *Redemption) Validate() error {
	if r.RewardID == "" {
		return fmt.Errorf("redemption reward id cannot be empty")
	}
	if r.PointsCost < 1 {
		return fmt.Errorf("redemption cost must be at least 1, got %d", r.PointsCost)
	}
	if _, err := utils.ParseDate(r.RedeemedOn); err != nil {
		return err
	}
	return nil
}

// RewardBook is the persisted reward document: the catalogue plus the
// redemption history.
type RewardBook struct {
	Rewards []Reward     `json:"rewards"`
	History []Redemption `json:"redeemed_history"`
}

func (b *RewardBook) Validate() error {
	seen := make(map[string]bool, len(b.Rewards))
	for i := range b.Rewards {
		if err := b.Rewards[i].Validate(); err != nil {
			return err
		}
		if seen[b.Rewards[i].ID] {
			return fmt.Errorf("duplicate reward id %s", b.Rewards[i].ID)
		}
		seen[b.Rewards[i].ID] = true
	}
	for i := range b.History {
		if err := b.History[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the index of the reward with the given id, or -1.
func (b *RewardBook) Find(id string) int {
	for i, r := range b.Rewards {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// NewReward builds a validated, unredeemed reward with a fresh ID.
func NewReward(name, description string, pointsRequired int, category string) (Reward, error) {
	r := Reward{
		ID:             uuid.New().String(),
		Name:           name,
		Description:    description,
		PointsRequired: pointsRequired,
		Category:       category,
	}
	if err := r.Validate(); err != nil {
		return Reward{}, err
	}
	return r, nil
}

// DefaultRewardBook is the reward catalogue seeded into a fresh store.
func DefaultRewardBook() RewardBook {
	return RewardBook{
		Rewards: []Reward{
			{ID: uuid.New().String(), Name: "Coffee Shop Visit", Description: "Treat yourself to a nice coffee", PointsRequired: 50, Category: "Small Treat"},
			{ID: uuid.New().String(), Name: "Movie Night", Description: "Watch that movie you've been wanting to see", PointsRequired: 100, Category: "Entertainment"},
			{ID: uuid.New().String(), Name: "New Book", Description: "Buy that book from your wishlist", PointsRequired: 200, Category: "Learning"},
		},
		History: []Redemption{},
	}
}
