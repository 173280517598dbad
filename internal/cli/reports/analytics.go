package reports

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/trends"
)

type AnalyticsCmd struct {
	Window int `short:"w" default:"7" help:"Rolling average window in days."`
	Days   int `default:"14" help:"Days of the rolling average to show."`
}

func (c *AnalyticsCmd) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("window must be at least 1 day")
	}
	return nil
}

func (c *AnalyticsCmd) Run(ctx *cli.Context) error {
	eng, err := ctx.Trends()
	if err != nil {
		return err
	}
	best, ok := eng.MostProductiveDay()
	if !ok {
		ctx.Println("No activities logged yet. Analytics appear once you log something.")
		return nil
	}

	ctx.Println(cli.TitleStyle.Render("Analytics"))

	ctx.Println(cli.SectionStyle.Render("By day of week"))
	rows := make([][]string, 0, 7)
	for _, d := range eng.DayOfWeek() {
		rows = append(rows, []string{d.Weekday.String(), strconv.Itoa(d.Sum), strconv.Itoa(d.Count)})
	}
	ctx.Println(cli.Table([]string{"Day", "Points", "Entries"}, rows))
	ctx.Printf("Most productive day: %s (%d points)\n", best.Weekday, best.Sum)

	if rate, ok := eng.ActivityRate(); ok {
		ctx.Printf("Activity rate: %.1f%% of days\n", rate)
	}

	avg := eng.RollingAverage(c.Window)
	if c.Days > 0 && len(avg) > c.Days {
		avg = avg[len(avg)-c.Days:]
	}
	ctx.Println()
	ctx.Println(cli.SectionStyle.Render(fmt.Sprintf("%d-day rolling average", c.Window)))
	rows = make([][]string, 0, len(avg))
	for _, p := range avg {
		a := "-"
		if p.Average != nil {
			a = fmt.Sprintf("%.1f", *p.Average)
		}
		rows = append(rows, []string{p.Date.Format("2006-01-02"), strconv.Itoa(p.Points), a})
	}
	ctx.Println(cli.Table([]string{"Date", "Points", "Average"}, rows))

	ctx.Println()
	ctx.Println(cli.SectionStyle.Render("Categories"))
	rows = nil
	for _, s := range eng.CategoryStats() {
		rows = append(rows, []string{s.Category, strconv.Itoa(s.Total), fmt.Sprintf("%.2f", s.Mean), strconv.Itoa(s.Count)})
	}
	ctx.Println(cli.Table([]string{"Category", "Total", "Mean", "Entries"}, rows))

	if byCat := eng.EnergyByCategory(); len(byCat) > 0 {
		ctx.Println()
		ctx.Println(cli.SectionStyle.Render("Energy by category"))
		rows = nil
		for _, e := range byCat {
			rows = append(rows, []string{e.Category, fmt.Sprintf("%.2f", e.Mean)})
		}
		ctx.Println(cli.Table([]string{"Category", "Mean energy"}, rows))
	}

	mean, advice := eng.RecentEnergy(constants.RecentEnergyWindow)
	ctx.Println()
	if advice == trends.EnergyNoData {
		ctx.Println(cli.MutedStyle.Render(advice.Message()))
		return nil
	}
	ctx.Printf("Recent energy: %.2f\n", mean)
	ctx.Println(cli.WarningStyle.Render(advice.Message()))
	return nil
}
