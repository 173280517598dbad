package rewards

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/constants"
)

func resolve(ctx *cli.Context, prefix string) (string, error) {
	book, err := ctx.Store.LoadRewards()
	if err != nil {
		return "", err
	}
	ids := make([]string, len(book.Rewards))
	for i, r := range book.Rewards {
		ids[i] = r.ID
	}
	return cli.ResolveID(prefix, ids), nil
}

type RewardAddCmd struct {
	Name        string `arg:"" help:"Reward name."`
	Points      int    `short:"p" required:"" help:"Points required to redeem."`
	Category    string `short:"c" default:"Custom" help:"Reward category."`
	Description string `short:"d" help:"Optional description."`
}

func (c *RewardAddCmd) Validate() error {
	if c.Points < 1 {
		return fmt.Errorf("points must be at least 1")
	}
	return nil
}

func (c *RewardAddCmd) Run(ctx *cli.Context) error {
	category := c.Category
	if i := slices.IndexFunc(constants.RewardCategories, func(s string) bool { return strings.EqualFold(s, category) }); i >= 0 {
		category = constants.RewardCategories[i]
	}
	r, err := ctx.Ledger.AddReward(c.Name, c.Description, c.Points, category)
	if err != nil {
		return err
	}
	ctx.Printf("Added reward: %s (ID: %s, %d points)\n", r.Name, cli.ShortID(r.ID), r.PointsRequired)
	return nil
}

type RewardListCmd struct {
	All bool `short:"a" help:"Include redeemed rewards."`
}

func (c *RewardListCmd) Run(ctx *cli.Context) error {
	bal, err := ctx.Ledger.Balance()
	if err != nil {
		return err
	}
	ctx.Println(cli.TitleStyle.Render(fmt.Sprintf("Available points: %d", bal.Available)))

	progress, err := ctx.Ledger.RewardProgress()
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(progress))
	for _, p := range progress {
		status := fmt.Sprintf("%d more needed", p.Needed)
		if p.Affordable() {
			status = cli.SuccessStyle.Render("ready to redeem")
		}
		rows = append(rows, []string{
			cli.ShortID(p.Reward.ID), p.Reward.Name, p.Reward.Category,
			strconv.Itoa(p.Reward.PointsRequired), cli.ProgressBar(p.Percent, 20), status,
		})
	}

	if c.All {
		rewards, err := ctx.Ledger.Rewards()
		if err != nil {
			return err
		}
		for _, r := range rewards {
			if r.Redeemed {
				rows = append(rows, []string{
					cli.ShortID(r.ID), r.Name, r.Category,
					strconv.Itoa(r.PointsRequired), "", cli.MutedStyle.Render("redeemed"),
				})
			}
		}
	}

	if len(rows) == 0 {
		ctx.Println("No rewards available. Add one with 'innerlevel reward add'.")
		return nil
	}
	ctx.Println(cli.Table([]string{"ID", "Reward", "Category", "Cost", "Progress", "Status"}, rows))
	return nil
}

type RewardRedeemCmd struct {
	ID string `arg:"" help:"Reward ID or unique prefix."`
}

func (c *RewardRedeemCmd) Run(ctx *cli.Context) error {
	id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	available, err := ctx.Ledger.Redeem(id)
	if err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render("Reward redeemed! Enjoy it."))
	ctx.Printf("Remaining points: %d\n", available)
	return nil
}

type RewardRemoveCmd struct {
	ID string `arg:"" help:"Reward ID or unique prefix."`
}

func (c *RewardRemoveCmd) Run(ctx *cli.Context) error {
	id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Ledger.RemoveReward(id); err != nil {
		return err
	}
	ctx.Println("Removed reward", cli.ShortID(id))
	return nil
}

type RewardHistoryCmd struct{}

func (c *RewardHistoryCmd) Run(ctx *cli.Context) error {
	history, err := ctx.Ledger.RedemptionHistory()
	if err != nil {
		return err
	}
	if len(history) == 0 {
		ctx.Println("No rewards redeemed yet")
		return nil
	}
	rows := make([][]string, 0, len(history))
	total := 0
	for _, h := range history {
		rows = append(rows, []string{h.RedeemedOn, h.Name, strconv.Itoa(h.PointsCost)})
		total += h.PointsCost
	}
	ctx.Println(cli.Table([]string{"Date", "Reward", "Points"}, rows))
	ctx.Printf("Total spent: %d points\n", total)
	return nil
}
