// Package clitest builds command contexts over a throwaway JSON store.
package clitest

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/innerlevel/internal/cli"
	"github.com/julianstephens/innerlevel/internal/config"
	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/ledger"
	"github.com/julianstephens/innerlevel/internal/storage/jsonstore"
)

// Now is the fixed clock every test context runs at.
var Now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

// Today is Now as a date string.
const Today = "2024-01-10"

// New returns a context over a freshly initialized JSON store and the
// buffer that receives its output. The OS keyring is replaced by an
// in-memory mock.
func New(t testing.TB) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	cfg := config.Default()
	cfg.Timezone = "UTC"
	cfg.Store.Backend = constants.BackendJSON
	cfg.Store.Path = filepath.Join(t.TempDir(), "data")

	store := jsonstore.New(cfg.Store.Path)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := cli.NewContext(cfg, store, ledger.WithClock(func() time.Time { return Now }))
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.In = strings.NewReader("")
	return ctx, out
}

// Answer makes the next confirmation prompts read the given lines.
func Answer(ctx *cli.Context, lines ...string) {
	ctx.In = strings.NewReader(strings.Join(lines, "\n") + "\n")
}
