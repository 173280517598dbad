package activities

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/ledger"
	"github.com/julianstephens/innerlevel/internal/models"
)

// MoodFlags are shared by every command that logs an activity.
type MoodFlags struct {
	Date    string `short:"d" help:"Date of the activity (YYYY-MM-DD). Defaults to today."`
	Comment string `short:"c" help:"Free-form comment."`
	Before  string `help:"Emotional state before the activity."`
	After   string `help:"Emotional state after the activity."`
	Energy  int    `short:"e" help:"Energy level 1-5 (0 to omit)."`
}

func (f *MoodFlags) validate() error {
	if err := cli.ValidateDate(f.Date); err != nil {
		return err
	}
	if f.Energy != 0 && (f.Energy < constants.MinEnergy || f.Energy > constants.MaxEnergy) {
		return fmt.Errorf("energy must be between %d and %d", constants.MinEnergy, constants.MaxEnergy)
	}
	return nil
}

func (f *MoodFlags) details(ctx *cli.Context) (ledger.LogDetails, error) {
	d := ledger.LogDetails{Date: f.Date, Comment: f.Comment}
	vocab := ctx.Vocabulary()
	if f.Before != "" {
		s, err := vocab.Normalize(f.Before)
		if err != nil {
			return d, err
		}
		d.EmotionBefore = s
	}
	if f.After != "" {
		s, err := vocab.Normalize(f.After)
		if err != nil {
			return d, err
		}
		d.EmotionAfter = s
	}
	if f.Energy != 0 {
		d.Energy = models.Energy(f.Energy)
	}
	return d, nil
}

type LogHabitCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Category string `help:"Habit category, needed when two habits share a name."`

	Mood MoodFlags `embed:""`
}

func (c *LogHabitCmd) Validate() error {
	return c.Mood.validate()
}

func (c *LogHabitCmd) Run(ctx *cli.Context) error {
	d, err := c.Mood.details(ctx)
	if err != nil {
		return err
	}
	entry, err := ctx.Ledger.LogHabit(c.Name, c.Category, d)
	if err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("Logged %s: +%d points", entry.Description, entry.Points)))
	return nil
}

type LogCustomCmd struct {
	Description string `arg:"" help:"What you did."`
	Points      int    `short:"p" required:"" help:"Points earned (1-100)."`
	Category    string `default:"Personal" help:"Activity category."`

	Mood MoodFlags `embed:""`
}

func (c *LogCustomCmd) Validate() error {
	if c.Points < constants.MinCustomPoints || c.Points > constants.MaxCustomPoints {
		return fmt.Errorf("points must be between %d and %d", constants.MinCustomPoints, constants.MaxCustomPoints)
	}
	return c.Mood.validate()
}

func (c *LogCustomCmd) Run(ctx *cli.Context) error {
	d, err := c.Mood.details(ctx)
	if err != nil {
		return err
	}
	entry, err := ctx.Ledger.LogCustom(c.Category, c.Description, c.Points, d)
	if err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("Logged %s: +%d points", entry.Description, entry.Points)))
	return nil
}

type LogListCmd struct {
	Categories string `help:"Comma-separated categories to include."`
	From       string `help:"Earliest date (YYYY-MM-DD)."`
	To         string `help:"Latest date (YYYY-MM-DD)."`
	Limit      int    `short:"n" default:"20" help:"Maximum rows, 0 for all."`
	ShowIDs    bool   `help:"Show activity IDs." name:"show-ids"`
}

func (c *LogListCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Ledger.History(ledger.Filter{
		Categories: cli.SplitList(c.Categories),
		From:       c.From,
		To:         c.To,
		Limit:      c.Limit,
	})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ctx.Println("No activities found")
		return nil
	}

	headers := []string{"Date", "Category", "Activity", "Points", "Mood", "Energy"}
	if c.ShowIDs {
		headers = append([]string{"ID"}, headers...)
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{e.Date, e.Category, e.Description, strconv.Itoa(e.Points), mood(e), energy(e)}
		if c.ShowIDs {
			row = append([]string{e.ID}, row...)
		}
		rows = append(rows, row)
	}
	ctx.Println(cli.Table(headers, rows))
	return nil
}

func mood(e models.ActivityLogEntry) string {
	switch {
	case e.HasTransition():
		return e.EmotionBefore + " → " + e.EmotionAfter
	case e.EmotionAfter != "":
		return e.EmotionAfter
	case e.EmotionBefore != "":
		return e.EmotionBefore
	}
	return ""
}

func energy(e models.ActivityLogEntry) string {
	if e.EnergyLevel == nil {
		return ""
	}
	return strconv.Itoa(*e.EnergyLevel)
}

type LogDeleteCmd struct {
	ID  string `arg:"" help:"Activity ID (see 'log list --show-ids')."`
	Yes bool   `short:"y" help:"Skip confirmation."`
}

func (c *LogDeleteCmd) Run(ctx *cli.Context) error {
	if !c.Yes && !ctx.Confirm(fmt.Sprintf("Delete activity %s? Its points are removed from your balance.", c.ID)) {
		ctx.Println("Delete cancelled.")
		return nil
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Ledger.DeleteActivity(c.ID); err != nil {
		return err
	}
	ctx.Println("Deleted activity", c.ID)
	return nil
}
