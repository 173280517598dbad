package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/innerlevel/internal/backup"
	"github.com/julianstephens/innerlevel/internal/config"
	"github.com/julianstephens/innerlevel/internal/emotion"
	"github.com/julianstephens/innerlevel/internal/insight"
	"github.com/julianstephens/innerlevel/internal/ledger"
	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/storage"
	"github.com/julianstephens/innerlevel/internal/storage/boltstore"
	"github.com/julianstephens/innerlevel/internal/trends"
)

// Context is handed to every command's Run method.
type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Ledger  *ledger.Ledger
	Insight *insight.Client

	Out io.Writer
	In  io.Reader
}

// NewContext wires the ledger and insight client for store.
func NewContext(cfg *config.Config, store storage.Provider, opts ...ledger.Option) *Context {
	opts = append([]ledger.Option{ledger.WithLocation(cfg.Location())}, opts...)
	return &Context{
		Config:  cfg,
		Store:   store,
		Ledger:  ledger.New(store, opts...),
		Insight: insight.New(cfg.InsightClientConfig()),
		Out:     os.Stdout,
		In:      os.Stdin,
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question and defaults to no.
func (c *Context) Confirm(prompt string) bool {
	c.Printf("%s (y/N): ", prompt)
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// Vocabulary is the configured emotion vocabulary.
func (c *Context) Vocabulary() emotion.Vocabulary {
	return c.Config.Emotions
}

// Trends builds a trend engine over the whole activity log as of today.
func (c *Context) Trends() (*trends.Engine, error) {
	entries, err := c.Store.LoadActivityLog()
	if err != nil {
		return nil, fmt.Errorf("failed to load activity log: %w", err)
	}
	return trends.New(entries, c.Ledger.Today()), nil
}

// Backups returns a backup manager for the configured store.
func (c *Context) Backups() (*backup.Manager, error) {
	var opts []backup.Option
	if bs, ok := c.Store.(*boltstore.Store); ok && bs.DB() != nil {
		opts = append(opts, backup.WithBoltDB(bs.DB()))
	}
	return backup.NewManager(c.Config.Store.Backend, c.Store.GetConfigPath(), opts...)
}

// PerformAutomaticBackup snapshots the store before a destructive command.
// Failures are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	mgr, err := c.Backups()
	if err != nil {
		logger.Debug("Automatic backup skipped", "reason", err)
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
