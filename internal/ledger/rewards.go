package ledger

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

// Redeem spends points on a reward and returns the new available balance.
// The balance check, the history append and the flag flip happen in one
// exclusive store scope; on any error the store is left untouched.
func (l *Ledger) Redeem(rewardID string) (int, error) {
	var available int
	var name string
	err := l.store.Update(func(tx storage.Tx) error {
		book, err := tx.LoadRewards()
		if err != nil {
			return err
		}
		idx := book.Find(rewardID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrRewardNotFound, rewardID)
		}
		reward := book.Rewards[idx]
		if reward.Redeemed {
			return &AlreadyRedeemedError{RewardID: reward.ID, Name: reward.Name}
		}

		entries, err := tx.LoadActivityLog()
		if err != nil {
			return err
		}
		bal := balanceOf(entries, book)
		if bal.Available < reward.PointsRequired {
			return &InsufficientPointsError{Required: reward.PointsRequired, Available: bal.Available}
		}

		book.Rewards[idx].Redeemed = true
		book.History = append(book.History, models.Redemption{
			RewardID:   reward.ID,
			Name:       reward.Name,
			PointsCost: reward.PointsRequired,
			RedeemedOn: l.TodayString(),
		})
		if err := tx.SaveRewards(book); err != nil {
			return err
		}
		available = bal.Available - reward.PointsRequired
		name = reward.Name
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("Reward redeemed", "reward", name, "available", available)
	return available, nil
}

// AddReward appends a new, unredeemed reward to the catalogue.
func (l *Ledger) AddReward(name, description string, pointsRequired int, category string) (models.Reward, error) {
	reward, err := models.NewReward(strings.TrimSpace(name), description, pointsRequired, category)
	if err != nil {
		return models.Reward{}, err
	}
	err = l.store.Update(func(tx storage.Tx) error {
		book, err := tx.LoadRewards()
		if err != nil {
			return err
		}
		book.Rewards = append(book.Rewards, reward)
		return tx.SaveRewards(book)
	})
	if err != nil {
		return models.Reward{}, err
	}
	return reward, nil
}

// RemoveReward drops a reward from the catalogue. Its redemption history is
// kept, so the spent points stay spent.
func (l *Ledger) RemoveReward(rewardID string) error {
	return l.store.Update(func(tx storage.Tx) error {
		book, err := tx.LoadRewards()
		if err != nil {
			return err
		}
		idx := book.Find(rewardID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrRewardNotFound, rewardID)
		}
		book.Rewards = slices.Delete(book.Rewards, idx, idx+1)
		return tx.SaveRewards(book)
	})
}

// Rewards lists the catalogue, cheapest first.
func (l *Ledger) Rewards() ([]models.Reward, error) {
	book, err := l.store.LoadRewards()
	if err != nil {
		return nil, err
	}
	rewards := slices.Clone(book.Rewards)
	slices.SortStableFunc(rewards, func(a, b models.Reward) int {
		if a.PointsRequired != b.PointsRequired {
			return a.PointsRequired - b.PointsRequired
		}
		return strings.Compare(a.Name, b.Name)
	})
	return rewards, nil
}

// Progress is how close the balance is to an unredeemed reward.
type Progress struct {
	Reward  models.Reward
	Percent float64 // 0-100
	Needed  int
}

// Affordable reports whether the reward can be redeemed now.
func (p Progress) Affordable() bool {
	return p.Needed == 0
}

func progressFor(r models.Reward, available int) Progress {
	pct := 0.0
	if available > 0 {
		pct = math.Min(100, float64(available)/float64(r.PointsRequired)*100)
	}
	return Progress{
		Reward:  r,
		Percent: pct,
		Needed:  max(0, r.PointsRequired-available),
	}
}

// RewardProgress reports progress towards every unredeemed reward, cheapest
// first.
func (l *Ledger) RewardProgress() ([]Progress, error) {
	var out []Progress
	err := l.store.Update(func(tx storage.Tx) error {
		entries, err := tx.LoadActivityLog()
		if err != nil {
			return err
		}
		book, err := tx.LoadRewards()
		if err != nil {
			return err
		}
		available := balanceOf(entries, book).Available
		for _, r := range book.Rewards {
			if r.Redeemed {
				continue
			}
			out = append(out, progressFor(r, available))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b Progress) int {
		return a.Reward.PointsRequired - b.Reward.PointsRequired
	})
	return out, nil
}

// RedemptionHistory returns every redemption, newest first.
func (l *Ledger) RedemptionHistory() ([]models.Redemption, error) {
	book, err := l.store.LoadRewards()
	if err != nil {
		return nil, err
	}
	history := slices.Clone(book.History)
	slices.Reverse(history)
	slices.SortStableFunc(history, func(a, b models.Redemption) int {
		return strings.Compare(b.RedeemedOn, a.RedeemedOn)
	})
	return history, nil
}
