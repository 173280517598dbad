package habits

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/ledger"
	"github.com/julianstephens/innerlevel/internal/models"
)

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Category string `short:"c" default:"Personal" help:"Category the habit's points count towards."`
	Points   int    `short:"p" required:"" help:"Points per completion."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	h := models.Habit{Name: c.Name, Category: c.Category, Points: c.Points}
	if err := ctx.Ledger.AddHabit(h); err != nil {
		return err
	}
	ctx.Printf("Added habit: %s (%s, %d points)\n", c.Name, c.Category, c.Points)
	return nil
}

type HabitEditCmd struct {
	Name        string `arg:"" help:"Current habit name."`
	Category    string `short:"c" help:"Current category, needed when two habits share a name."`
	NewName     string `help:"New name."`
	NewCategory string `help:"New category."`
	Points      int    `short:"p" help:"New points value."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Ledger.Habits()
	if err != nil {
		return err
	}
	idx := models.FindHabit(habits, c.Name, c.Category)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ledger.ErrHabitNotFound, c.Name)
	}
	current := habits[idx]

	updated := current
	if c.NewName != "" {
		updated.Name = c.NewName
	}
	if c.NewCategory != "" {
		updated.Category = c.NewCategory
	}
	if c.Points != 0 {
		updated.Points = c.Points
	}
	if updated == current {
		ctx.Println("Nothing to change.")
		return nil
	}

	if err := ctx.Ledger.EditHabit(current.Name, current.Category, updated); err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s (%s, %d points)\n", updated.Name, updated.Category, updated.Points)
	return nil
}

type HabitRemoveCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Category string `short:"c" help:"Category, needed when two habits share a name."`
}

func (c *HabitRemoveCmd) Run(ctx *cli.Context) error {
	if err := ctx.Ledger.RemoveHabit(c.Name, c.Category); err != nil {
		return err
	}
	ctx.Println("Removed habit", c.Name)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Ledger.Habits()
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}
	if len(habits) == 0 {
		ctx.Println("No habits found")
		return nil
	}

	entries, err := ctx.Store.LoadActivityLog()
	if err != nil {
		return err
	}
	today := ctx.Ledger.TodayString()
	doneToday := make(map[string]bool)
	for _, e := range entries {
		if e.Date == today {
			doneToday[e.Category+"/"+e.Description] = true
		}
	}

	rows := make([][]string, 0, len(habits))
	for _, h := range habits {
		mark := ""
		if doneToday[h.Key()] {
			mark = "✓"
		}
		rows = append(rows, []string{h.Category, h.Name, strconv.Itoa(h.Points), mark})
	}
	ctx.Println(cli.Table([]string{"Category", "Habit", "Points", "Today"}, rows))
	return nil
}
