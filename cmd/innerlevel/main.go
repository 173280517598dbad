package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/cli/activities"
	"github.com/julianstephens/innerlevel/internal/cli/backups"
	"github.com/julianstephens/innerlevel/internal/cli/habits"
	"github.com/julianstephens/innerlevel/internal/cli/insights"
	"github.com/julianstephens/innerlevel/internal/cli/reports"
	"github.com/julianstephens/innerlevel/internal/cli/rewards"
	"github.com/julianstephens/innerlevel/internal/cli/system"
	"github.com/julianstephens/innerlevel/internal/cli/todos"
	"github.com/julianstephens/innerlevel/internal/config"
	"github.com/julianstephens/innerlevel/internal/constants"
	apperrors "github.com/julianstephens/innerlevel/internal/errors"
	"github.com/julianstephens/innerlevel/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"~/.config/innerlevel/config.yaml"`
	Store   string `help:"Override the store backend (json, sqlite, postgres, bolt)."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init      system.InitCmd       `cmd:"" help:"Initialize innerlevel storage and write a default config."`
	Doctor    system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Dashboard reports.DashboardCmd `cmd:"" help:"Show points, streaks and recent activity." default:"1"`
	Analytics reports.AnalyticsCmd `cmd:"" help:"Show productivity trends."`
	Emotions  reports.EmotionsCmd  `cmd:"" help:"Show emotional patterns."`
	Checkin   reports.CheckinCmd   `cmd:"" help:"Record a daily emotional check-in."`

	Log struct {
		Habit  activities.LogHabitCmd  `cmd:"" help:"Log a completed habit."`
		Custom activities.LogCustomCmd `cmd:"" help:"Log a custom activity."`
		List   activities.LogListCmd   `cmd:"" help:"Show the activity log."`
		Delete activities.LogDeleteCmd `cmd:"" help:"Delete an activity."`
	} `cmd:"" help:"Log activities and earn points."`
	Todo struct {
		Add      todos.TodoAddCmd      `cmd:"" help:"Add a to-do."`
		List     todos.TodoListCmd     `cmd:"" help:"List to-dos." default:"1"`
		Start    todos.TodoStartCmd    `cmd:"" help:"Mark a to-do in progress."`
		Complete todos.TodoCompleteCmd `cmd:"" help:"Complete a to-do and earn its points."`
		Remove   todos.TodoRemoveCmd   `cmd:"" help:"Remove a to-do."`
	} `cmd:"" help:"Manage to-dos."`
	Habit struct {
		Add    habits.HabitAddCmd    `cmd:"" help:"Add a habit."`
		Edit   habits.HabitEditCmd   `cmd:"" help:"Edit a habit."`
		Remove habits.HabitRemoveCmd `cmd:"" help:"Remove a habit."`
		List   habits.HabitListCmd   `cmd:"" help:"List habits." default:"1"`
	} `cmd:"" help:"Manage habits."`
	Reward struct {
		Add     rewards.RewardAddCmd     `cmd:"" help:"Add a reward."`
		List    rewards.RewardListCmd    `cmd:"" help:"Show rewards and progress towards them." default:"1"`
		Redeem  rewards.RewardRedeemCmd  `cmd:"" help:"Spend points on a reward."`
		Remove  rewards.RewardRemoveCmd  `cmd:"" help:"Remove a reward."`
		History rewards.RewardHistoryCmd `cmd:"" help:"Show redeemed rewards."`
	} `cmd:"" help:"Manage rewards."`
	Insight struct {
		Task     insights.TaskCmd     `cmd:"" help:"Suggest a small task for today."`
		Emotions insights.EmotionsCmd `cmd:"" help:"Look for patterns in your check-ins."`
		Habit    insights.HabitCmd    `cmd:"" help:"Analyse a habit's completion record."`
		Rewards  insights.RewardsCmd  `cmd:"" help:"Suggest rewards for your progress."`
		Goal     insights.GoalCmd     `cmd:"" help:"Assess progress towards a goal."`
		Predict  insights.PredictCmd  `cmd:"" help:"Forecast the coming week."`
		Learning insights.LearningCmd `cmd:"" help:"Review practice sessions of a skill."`
	} `cmd:"" help:"Ask the AI coach for insights."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a secret (db or insight) in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete a stored secret."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Level up your life: earn points for habits and to-dos, spend them on rewards."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := run(kctx); err != nil {
		apperrors.Fatal(err)
	}
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Store != "" {
		cfg.Store.Backend = CLI.Store
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, DataDir: cfg.Dir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	command := kctx.Command()
	// keyring commands must work before a PostgreSQL store is reachable
	if strings.HasPrefix(command, "keyring") {
		return kctx.Run(cli.NewContext(cfg, nil))
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	// init creates the store; doctor reports load failures itself
	if command != "init" && command != "doctor" {
		if err := store.Load(); err != nil {
			return fmt.Errorf("failed to load %s store: %w", cfg.Store.Backend, err)
		}
	}

	logger.Debug("Running command", "command", command, "backend", cfg.Store.Backend)
	return kctx.Run(cli.NewContext(cfg, store))
}
