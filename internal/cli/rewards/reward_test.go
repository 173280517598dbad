package rewards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/innerlevel/internal/cli/clitest"
	"github.com/julianstephens/innerlevel/internal/ledger"
)

func TestRedeemFlow(t *testing.T) {
	ctx, out := clitest.New(t)

	_, err := ctx.Ledger.LogCustom("Personal", "Deep clean", 50, ledger.LogDetails{})
	require.NoError(t, err)

	require.NoError(t, (&RewardAddCmd{Name: "Concert ticket", Points: 60, Category: "entertainment"}).Run(ctx))
	rewards, err := ctx.Ledger.Rewards()
	require.NoError(t, err)
	var id string
	for _, r := range rewards {
		if r.Name == "Concert ticket" {
			id = r.ID
			assert.Equal(t, "Entertainment", r.Category)
		}
	}
	require.NotEmpty(t, id)

	err = (&RewardRedeemCmd{ID: id[:8]}).Run(ctx)
	var insufficient *ledger.InsufficientPointsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Needed())

	_, err = ctx.Ledger.LogCustom("Personal", "Gym", 15, ledger.LogDetails{})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, (&RewardRedeemCmd{ID: id[:8]}).Run(ctx))
	assert.Contains(t, out.String(), "Remaining points: 5")

	err = (&RewardRedeemCmd{ID: id}).Run(ctx)
	assert.ErrorIs(t, err, ledger.ErrAlreadyRedeemed)

	out.Reset()
	require.NoError(t, (&RewardHistoryCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Concert ticket")
	assert.Contains(t, out.String(), "Total spent: 60 points")
}

func TestRewardList(t *testing.T) {
	ctx, out := clitest.New(t)
	_, err := ctx.Ledger.LogCustom("Personal", "Deep clean", 60, ledger.LogDetails{})
	require.NoError(t, err)

	require.NoError(t, (&RewardListCmd{}).Run(ctx))
	s := out.String()
	assert.Contains(t, s, "Available points: 60")
	// seeded catalogue
	assert.Contains(t, s, "Coffee Shop Visit")
	assert.Contains(t, s, "ready to redeem")
	assert.Contains(t, s, "40 more needed")
}

func TestRewardRemoveKeepsHistory(t *testing.T) {
	ctx, _ := clitest.New(t)
	_, err := ctx.Ledger.LogCustom("Personal", "Deep clean", 80, ledger.LogDetails{})
	require.NoError(t, err)
	r, err := ctx.Ledger.AddReward("Pizza", "", 30, "Small Treat")
	require.NoError(t, err)
	require.NoError(t, (&RewardRedeemCmd{ID: r.ID}).Run(ctx))
	require.NoError(t, (&RewardRemoveCmd{ID: r.ID}).Run(ctx))

	available, err := ctx.Ledger.AvailablePoints()
	require.NoError(t, err)
	assert.Equal(t, 50, available)

	assert.ErrorIs(t, (&RewardRemoveCmd{ID: r.ID}).Run(ctx), ledger.ErrRewardNotFound)
}

func TestRewardHistoryEmpty(t *testing.T) {
	ctx, out := clitest.New(t)
	require.NoError(t, (&RewardHistoryCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No rewards redeemed yet")
}
