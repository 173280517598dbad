package system

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/config"
	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
	"github.com/julianstephens/innerlevel/internal/storage/boltstore"
	"github.com/julianstephens/innerlevel/internal/storage/jsonstore"
	"github.com/julianstephens/innerlevel/internal/storage/sqlstore"
)

type InitCmd struct {
	Source        string `help:"Store to copy data from: a data directory, database file or PostgreSQL connection string."`
	SourceBackend string `help:"Backend of --source (json, sqlite, bolt, postgres). Guessed from the source when empty."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized innerlevel storage at: %s\n", ctx.Store.GetConfigPath())

	if err := writeDefaultConfig(ctx); err != nil {
		return err
	}

	if c.Source == "" {
		return nil
	}
	src, err := openSource(c.Source, c.SourceBackend)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	ctx.Printf("Copying data from: %s\n", c.Source)
	counts, err := copyStore(src, ctx.Store)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	ctx.Printf("  %d activities, %d to-dos, %d habits, %d rewards, %d check-ins\n",
		counts.activities, counts.todos, counts.habits, counts.rewards, counts.checkIns)
	ctx.Println(cli.SuccessStyle.Render("Migration completed successfully!"))
	return nil
}

func writeDefaultConfig(ctx *cli.Context) error {
	path := ctx.Config.Path()
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}
	if err := ctx.Config.Save(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	ctx.Printf("Wrote default configuration to: %s\n", ctx.Config.Path())
	return nil
}

func openSource(source, backend string) (storage.Provider, error) {
	if backend == "" {
		backend = guessBackend(source)
	}
	if backend != constants.BackendPostgres {
		if _, err := os.Stat(source); err != nil {
			return nil, fmt.Errorf("source store not found: %w", err)
		}
	}
	switch backend {
	case constants.BackendPostgres:
		if err := sqlstore.ValidateConnString(source); err != nil {
			if errors.Is(err, sqlstore.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL source connection string contains embedded credentials; use PGPASSWORD or .pgpass instead")
			}
			return nil, err
		}
		return sqlstore.NewPostgres(source), nil
	case constants.BackendJSON:
		return jsonstore.New(source), nil
	case constants.BackendSQLite:
		return sqlstore.NewSQLite(source), nil
	case constants.BackendBolt:
		return boltstore.New(source), nil
	}
	return nil, fmt.Errorf("unknown source backend %q", backend)
}

func guessBackend(source string) string {
	if sqlstore.IsPostgresURL(source) {
		return constants.BackendPostgres
	}
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return constants.BackendJSON
	}
	switch filepath.Ext(source) {
	case ".bolt":
		return constants.BackendBolt
	case ".json":
		return constants.BackendJSON
	}
	return constants.BackendSQLite
}

type copyCounts struct {
	activities, todos, habits, rewards, checkIns int
}

// copyStore replaces the destination's to-dos, habits and rewards with the
// source's and appends log records whose IDs the destination lacks.
func copyStore(src storage.Provider, dst storage.Provider) (copyCounts, error) {
	var n copyCounts
	entries, err := src.LoadActivityLog()
	if err != nil {
		return n, err
	}
	todos, err := src.LoadTodos()
	if err != nil {
		return n, err
	}
	habits, err := src.LoadHabits()
	if err != nil {
		return n, err
	}
	book, err := src.LoadRewards()
	if err != nil {
		return n, err
	}
	checkIns, err := src.LoadEmotionalLog()
	if err != nil {
		return n, err
	}

	err = dst.Update(func(tx storage.Tx) error {
		existing, err := tx.LoadActivityLog()
		if err != nil {
			return err
		}
		seen := idSet(existing, func(e models.ActivityLogEntry) string { return e.ID })
		for _, e := range entries {
			if seen[e.ID] {
				continue
			}
			if err := tx.AppendActivityLog(e); err != nil {
				return fmt.Errorf("activity %s: %w", e.ID, err)
			}
			n.activities++
		}

		existingCheckIns, err := tx.LoadEmotionalLog()
		if err != nil {
			return err
		}
		seen = idSet(existingCheckIns, func(c models.EmotionalCheckIn) string { return c.ID })
		for _, ci := range checkIns {
			if seen[ci.ID] {
				continue
			}
			if err := tx.AppendEmotionalLog(ci); err != nil {
				return fmt.Errorf("check-in %s: %w", ci.ID, err)
			}
			n.checkIns++
		}

		if err := tx.SaveTodos(todos); err != nil {
			return err
		}
		if err := tx.SaveHabits(habits); err != nil {
			return err
		}
		if err := tx.SaveRewards(book); err != nil {
			return err
		}
		n.todos, n.habits, n.rewards = len(todos), len(habits), len(book.Rewards)
		return nil
	})
	return n, err
}

func idSet[T any](items []T, id func(T) string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[id(it)] = true
	}
	return set
}
