package reports

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/ledger"
)

type DashboardCmd struct{}

func (c *DashboardCmd) Run(ctx *cli.Context) error {
	bal, err := ctx.Ledger.Balance()
	if err != nil {
		return err
	}
	eng, err := ctx.Trends()
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render("innerlevel dashboard"))
	ctx.Printf("Total points:     %d\n", bal.Earned)
	ctx.Printf("Available points: %d\n", bal.Available)

	week := eng.WeeklyDelta()
	line := fmt.Sprintf("This week:        %d (%s vs last week", week.ThisWeek, cli.Signed(week.Delta))
	if week.PreviousWeek != 0 {
		line += fmt.Sprintf(", %+.1f%%", week.Percent)
	}
	ctx.Println(line + ")")
	ctx.Printf("Current streak:   %d day(s)\n", eng.CurrentStreak())
	ctx.Printf("Longest streak:   %d day(s)\n", eng.LongestStreak())

	shares, err := ctx.Ledger.CategorySplit()
	if err != nil {
		return err
	}
	if len(shares) > 0 {
		ctx.Println()
		ctx.Println(cli.SectionStyle.Render("Points by category"))
		rows := make([][]string, 0, len(shares))
		for _, s := range shares {
			rows = append(rows, []string{s.Category, strconv.Itoa(s.Points), strconv.Itoa(s.Percent) + "%"})
		}
		ctx.Println(cli.Table([]string{"Category", "Points", "Share"}, rows))
	}

	recent, err := ctx.Ledger.History(ledger.Filter{Limit: constants.DashboardRecentRows})
	if err != nil {
		return err
	}
	ctx.Println()
	ctx.Println(cli.SectionStyle.Render("Recent activities"))
	if len(recent) == 0 {
		ctx.Println(cli.MutedStyle.Render("Nothing logged yet. Try 'innerlevel log habit Exercise'."))
	} else {
		rows := make([][]string, 0, len(recent))
		for _, e := range recent {
			rows = append(rows, []string{e.Date, e.Category, e.Description, strconv.Itoa(e.Points)})
		}
		ctx.Println(cli.Table([]string{"Date", "Category", "Activity", "Points"}, rows))
	}

	todos, err := ctx.Ledger.Todos([]constants.TodoStatus{constants.StatusPending, constants.StatusInProgress}, nil)
	if err != nil {
		return err
	}
	ctx.Println()
	ctx.Println(cli.SectionStyle.Render("Open to-dos"))
	if len(todos) == 0 {
		ctx.Println(cli.MutedStyle.Render("No open to-dos"))
		return nil
	}
	if len(todos) > constants.DashboardRecentRows {
		todos = todos[:constants.DashboardRecentRows]
	}
	rows := make([][]string, 0, len(todos))
	for _, t := range todos {
		rows = append(rows, []string{t.Task, t.DueDate, string(t.Priority), string(t.Status)})
	}
	ctx.Println(cli.Table([]string{"Task", "Due", "Priority", "Status"}, rows))
	return nil
}
