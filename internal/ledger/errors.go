package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrRewardNotFound       = errors.New("reward not found")
	ErrAlreadyRedeemed      = errors.New("reward already redeemed")
	ErrTodoNotFound         = errors.New("to-do not found")
	ErrTodoAlreadyCompleted = errors.New("to-do already completed")
	ErrHabitNotFound        = errors.New("habit not found")
	ErrHabitExists          = errors.New("habit already exists")
	ErrActivityNotFound     = errors.New("activity not found")
	ErrPointsOutOfRange     = errors.New("points out of range")
)

// InsufficientPointsError is returned by Redeem when the balance does not
// cover the reward. Nothing is written.
type InsufficientPointsError struct {
	Required  int
	Available int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("not enough points: need %d more points", e.Needed())
}

// Needed is the shortfall.
func (e *InsufficientPointsError) Needed() int {
	return e.Required - e.Available
}

// AlreadyRedeemedError is returned by Redeem for a reward whose redeemed
// flag is already set, whatever the balance.
type AlreadyRedeemedError struct {
	RewardID string
	Name     string
}

func (e *AlreadyRedeemedError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("reward %q already redeemed", e.Name)
	}
	return fmt.Sprintf("reward %s already redeemed", e.RewardID)
}

func (e *AlreadyRedeemedError) Unwrap() error {
	return ErrAlreadyRedeemed
}
