package habits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/innerlevel/internal/cli/clitest"
	"github.com/julianstephens/innerlevel/internal/ledger"
	"github.com/julianstephens/innerlevel/internal/models"
)

func TestHabitCommands(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&HabitAddCmd{Name: "Stretching", Category: "Self-Care", Points: 4}).Run(ctx))
	err := (&HabitAddCmd{Name: "stretching", Category: "Self-Care", Points: 4}).Run(ctx)
	assert.ErrorIs(t, err, ledger.ErrHabitExists)

	require.NoError(t, (&HabitEditCmd{Name: "Stretching", Points: 6}).Run(ctx))
	habits, err := ctx.Ledger.Habits()
	require.NoError(t, err)
	idx := models.FindHabit(habits, "Stretching", "Self-Care")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, 6, habits[idx].Points)

	_, err = ctx.Ledger.LogHabit("Stretching", "", ledger.LogDetails{})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, (&HabitListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Stretching")
	assert.Contains(t, out.String(), "✓")
	// seeded habits are listed too
	assert.Contains(t, out.String(), "Meditation")

	require.NoError(t, (&HabitRemoveCmd{Name: "Stretching"}).Run(ctx))
	assert.ErrorIs(t, (&HabitRemoveCmd{Name: "Stretching"}).Run(ctx), ledger.ErrHabitNotFound)
}

func TestHabitEditNoChange(t *testing.T) {
	ctx, out := clitest.New(t)
	require.NoError(t, (&HabitEditCmd{Name: "Reading"}).Run(ctx))
	assert.Contains(t, out.String(), "Nothing to change.")

	assert.Error(t, (&HabitEditCmd{Name: "Juggling", Points: 3}).Run(ctx))
}

func TestHabitEditRename(t *testing.T) {
	ctx, _ := clitest.New(t)
	require.NoError(t, (&HabitEditCmd{Name: "Reading", NewName: "Reading (30 min)", NewCategory: "Self-Care"}).Run(ctx))

	habits, err := ctx.Ledger.Habits()
	require.NoError(t, err)
	assert.Less(t, models.FindHabit(habits, "Reading", ""), 0)
	assert.GreaterOrEqual(t, models.FindHabit(habits, "Reading (30 min)", "Self-Care"), 0)
}
