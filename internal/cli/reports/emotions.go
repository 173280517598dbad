package reports

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/emotion"
	"github.com/julianstephens/innerlevel/internal/models"
)

// Check-ins shown under "Recent check-ins"
const recentCheckIns = 7

type EmotionsCmd struct{}

func (c *EmotionsCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.Store.LoadActivityLog()
	if err != nil {
		return fmt.Errorf("failed to load activity log: %w", err)
	}
	checkIns, err := ctx.Store.LoadEmotionalLog()
	if err != nil {
		return fmt.Errorf("failed to load emotional log: %w", err)
	}

	ctx.Println(cli.TitleStyle.Render("Emotional patterns"))

	transitions := emotion.SortedTransitions(emotion.Transitions(entries))
	ctx.Println(cli.SectionStyle.Render("Emotional transitions"))
	if len(transitions) == 0 {
		ctx.Println(cli.MutedStyle.Render("Log activities with --before and --after to see transitions."))
	} else {
		rows := make([][]string, 0, len(transitions))
		for _, t := range transitions {
			rows = append(rows, []string{t.Before, t.After, strconv.Itoa(t.Count)})
		}
		ctx.Println(cli.Table([]string{"Before", "After", "Count"}, rows))
	}

	if effective := ctx.Vocabulary().EffectiveActivities(entries); len(effective) > 0 {
		ctx.Println()
		ctx.Println(cli.SectionStyle.Render("Activities that lift your mood"))
		rows := make([][]string, 0, len(effective))
		for _, a := range effective {
			rows = append(rows, []string{a.Description, strconv.Itoa(a.Count)})
		}
		ctx.Println(cli.Table([]string{"Activity", "Times"}, rows))
	}

	ctx.Println()
	ctx.Println(cli.SectionStyle.Render("Daily check-ins"))
	if len(checkIns) == 0 {
		ctx.Println(cli.MutedStyle.Render("No check-ins yet. Record one with 'innerlevel checkin'."))
		return nil
	}
	trend := emotion.EnergyTrend(checkIns)
	ctx.Printf("%s (mean change %+.2f)\n", trend, trend.MeanDelta)

	freq := emotion.EmotionFrequency(checkIns)
	rows := make([][]string, 0, max(len(freq.Morning), len(freq.Evening)))
	for i := range max(len(freq.Morning), len(freq.Evening)) {
		row := []string{"", "", "", ""}
		if i < len(freq.Morning) {
			row[0], row[1] = freq.Morning[i].State, strconv.Itoa(freq.Morning[i].Count)
		}
		if i < len(freq.Evening) {
			row[2], row[3] = freq.Evening[i].State, strconv.Itoa(freq.Evening[i].Count)
		}
		rows = append(rows, row)
	}
	ctx.Println(cli.Table([]string{"Morning", "Count", "Evening", "Count"}, rows))

	recent := emotion.Recent(checkIns, recentCheckIns)
	rows = make([][]string, 0, len(recent))
	for _, ci := range recent {
		rows = append(rows, []string{
			ci.Date,
			fmt.Sprintf("%s (%d)", ci.MorningEmotion, ci.MorningEnergy),
			fmt.Sprintf("%s (%d)", ci.EveningEmotion, ci.EveningEnergy),
			ci.Gratitude,
		})
	}
	ctx.Println()
	ctx.Println(cli.SectionStyle.Render("Recent check-ins"))
	ctx.Println(cli.Table([]string{"Date", "Morning", "Evening", "Gratitude"}, rows))
	return nil
}

type CheckinCmd struct {
	Date          string `short:"d" help:"Date of the check-in (YYYY-MM-DD). Defaults to today."`
	Morning       string `required:"" help:"Morning emotional state."`
	MorningEnergy int    `default:"3" help:"Morning energy 1-5."`
	MorningNotes  string `help:"Morning notes."`
	Evening       string `required:"" help:"Evening emotional state."`
	EveningEnergy int    `default:"3" help:"Evening energy 1-5."`
	EveningNotes  string `help:"Evening notes."`
	Gratitude     string `short:"g" help:"Something you are grateful for."`
}

func (c *CheckinCmd) Validate() error {
	if err := cli.ValidateDate(c.Date); err != nil {
		return err
	}
	for _, e := range []int{c.MorningEnergy, c.EveningEnergy} {
		if e < constants.MinEnergy || e > constants.MaxEnergy {
			return fmt.Errorf("energy must be between %d and %d", constants.MinEnergy, constants.MaxEnergy)
		}
	}
	return nil
}

func (c *CheckinCmd) Run(ctx *cli.Context) error {
	vocab := ctx.Vocabulary()
	morning, err := vocab.Normalize(c.Morning)
	if err != nil {
		return err
	}
	evening, err := vocab.Normalize(c.Evening)
	if err != nil {
		return err
	}
	ci := models.EmotionalCheckIn{
		ID:             uuid.New().String(),
		Date:           cli.ValueOr(c.Date, ctx.Ledger.TodayString()),
		MorningEmotion: morning,
		MorningEnergy:  c.MorningEnergy,
		MorningNotes:   c.MorningNotes,
		EveningEmotion: evening,
		EveningEnergy:  c.EveningEnergy,
		EveningNotes:   c.EveningNotes,
		Gratitude:      c.Gratitude,
	}
	if err := ci.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AppendEmotionalLog(ci); err != nil {
		return fmt.Errorf("failed to save check-in: %w", err)
	}
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("Check-in saved for %s", ci.Date)))
	return nil
}
