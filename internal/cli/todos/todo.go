package todos

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/models"
)

func resolve(ctx *cli.Context, prefix string) (string, error) {
	items, err := ctx.Store.LoadTodos()
	if err != nil {
		return "", err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return cli.ResolveID(prefix, ids), nil
}

type TodoAddCmd struct {
	Task     string `arg:"" help:"What needs doing."`
	Due      string `help:"Due date (YYYY-MM-DD). Defaults to today."`
	Priority string `short:"p" default:"Medium" help:"Priority (High|Medium|Low)."`
	Points   int    `default:"10" help:"Points awarded on completion."`
}

func (c *TodoAddCmd) Validate() error {
	if err := cli.ValidateDate(c.Due); err != nil {
		return err
	}
	if _, err := models.ParsePriority(c.Priority); err != nil {
		return err
	}
	if c.Points < 1 {
		return fmt.Errorf("points must be at least 1")
	}
	return nil
}

func (c *TodoAddCmd) Run(ctx *cli.Context) error {
	priority, err := models.ParsePriority(c.Priority)
	if err != nil {
		return err
	}
	item, err := ctx.Ledger.AddTodo(c.Task, c.Due, priority, c.Points)
	if err != nil {
		return err
	}
	ctx.Printf("Added to-do: %s (ID: %s, due %s, %d points)\n", item.Task, cli.ShortID(item.ID), item.DueDate, item.Points)
	return nil
}

type TodoListCmd struct {
	Status   string `short:"s" default:"Pending,In Progress" help:"Comma-separated statuses to show."`
	Priority string `short:"p" help:"Comma-separated priorities to show."`
	All      bool   `short:"a" help:"Show every to-do regardless of status."`
}

func (c *TodoListCmd) Run(ctx *cli.Context) error {
	var statuses []constants.TodoStatus
	if !c.All {
		var err error
		if statuses, err = cli.ParseStatuses(c.Status); err != nil {
			return err
		}
	}
	priorities, err := cli.ParsePriorities(c.Priority)
	if err != nil {
		return err
	}

	items, err := ctx.Ledger.Todos(statuses, priorities)
	if err != nil {
		return fmt.Errorf("failed to get to-dos: %w", err)
	}
	if len(items) == 0 {
		ctx.Println("No to-dos found")
		return nil
	}

	ctx.Println(Table(items))
	return nil
}

// Table renders to-dos with their short IDs.
func Table(items []models.TodoItem) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{cli.ShortID(it.ID), it.Task, it.DueDate, string(it.Priority), string(it.Status), strconv.Itoa(it.Points)})
	}
	return cli.Table([]string{"ID", "Task", "Due", "Priority", "Status", "Points"}, rows)
}

type TodoStartCmd struct {
	ID string `arg:"" help:"To-do ID or unique prefix."`
}

func (c *TodoStartCmd) Run(ctx *cli.Context) error {
	id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Ledger.StartTodo(id); err != nil {
		return err
	}
	ctx.Println("Started to-do", cli.ShortID(id))
	return nil
}

type TodoCompleteCmd struct {
	ID string `arg:"" help:"To-do ID or unique prefix."`
}

func (c *TodoCompleteCmd) Run(ctx *cli.Context) error {
	id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	entry, err := ctx.Ledger.CompleteTodo(id)
	if err != nil {
		return err
	}
	ctx.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s: +%d points", entry.Description, entry.Points)))
	return nil
}

type TodoRemoveCmd struct {
	ID string `arg:"" help:"To-do ID or unique prefix."`
}

func (c *TodoRemoveCmd) Run(ctx *cli.Context) error {
	id, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := ctx.Ledger.RemoveTodo(id); err != nil {
		return err
	}
	ctx.Println("Removed to-do", cli.ShortID(id))
	return nil
}
