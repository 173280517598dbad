package system

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/keyring"
	"github.com/julianstephens/innerlevel/internal/storage/sqlstore"
	"github.com/julianstephens/innerlevel/internal/utils"
)

// For testing
var (
	listProcesses    = ps.Processes
	keyringAvailable = keyring.IsAvailable
	now              = time.Now
)

type severity int

const (
	fail severity = iota
	warn
)

type check struct {
	name      string
	severity  severity
	needStore bool
	run       func(*cli.Context) error
}

const storeCheck = "Store reachable"

var checks = []check{
	{storeCheck, fail, false, checkStoreReachable},
	{"Schema version", fail, true, checkSchema},
	{"Ledger consistency", fail, true, checkLedger},
	{"Emotion vocabulary", fail, false, checkVocabulary},
	{"Clock/timezone", fail, false, checkClockTimezone},
	{"Backups present", warn, true, checkBackupsPresent},
	{"OS keyring", warn, false, checkKeyring},
	{"Insight endpoint", warn, false, checkInsightProcess},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	storeOK := true
	for _, c := range checks {
		if c.needStore && !storeOK {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.severity == warn:
			ctx.Println(cli.WarningStyle.Render(fmt.Sprintf("⚠ %s: WARNING", c.name)))
			ctx.Printf("   %v\n", err)
		default:
			ctx.Println(cli.DangerStyle.Render(fmt.Sprintf("❌ %s: FAIL", c.name)))
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == storeCheck {
				storeOK = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if s, ok := ctx.Store.(*sqlstore.Store); ok {
		if s.DB() == nil {
			return errors.New("database connection is nil")
		}
		if err := s.DB().Ping(); err != nil {
			return fmt.Errorf("failed to reach database: %w", err)
		}
	}
	return nil
}

func checkSchema(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlstore.Store)
	if !ok {
		return nil
	}
	st, err := s.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if st.Current > st.Latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", st.Current, st.Latest)
	}
	if !st.UpToDate() {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", st.Current, st.Latest)
	}
	return nil
}

func checkLedger(ctx *cli.Context) error {
	report, err := ctx.Ledger.Audit()
	if err != nil {
		return err
	}
	if !report.OK() {
		return errors.New(strings.Join(report.Issues, "; "))
	}
	return nil
}

func checkVocabulary(ctx *cli.Context) error {
	return ctx.Vocabulary().Validate()
}

func checkClockTimezone(ctx *cli.Context) error {
	t := now()
	if t.Year() < 2020 || t.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", t.Format(time.RFC3339))
	}
	if _, err := utils.LoadLocation(ctx.Config.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", ctx.Config.Timezone, err)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.Backups()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'innerlevel backup create'")
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyringAvailable() {
		return errors.New("OS keyring is not available; PostgreSQL credentials and the insight token must come from the environment")
	}
	return nil
}

// checkInsightProcess looks for a running generation server when the
// endpoint is on this machine.
func checkInsightProcess(ctx *cli.Context) error {
	u, err := url.Parse(ctx.Config.Insight.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid insight base URL: %w", err)
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
	default:
		return nil
	}
	procs, err := listProcesses()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}
	for _, p := range procs {
		if strings.EqualFold(strings.TrimSuffix(p.Executable(), ".exe"), constants.InsightProcessName) {
			return nil
		}
	}
	return fmt.Errorf("no %s process found; insights will use default suggestions until it is started", constants.InsightProcessName)
}
