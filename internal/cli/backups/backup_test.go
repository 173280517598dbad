package backups

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/innerlevel/internal/cli/clitest"
	"github.com/julianstephens/innerlevel/internal/ledger"
)

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")

	out.Reset()
	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Backup created: innerlevel-")

	out.Reset()
	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Available backups (1 total, keeping most recent 14)")
	assert.Contains(t, out.String(), ".json")
}

func TestBackupRestore(t *testing.T) {
	ctx, out := clitest.New(t)
	_, err := ctx.Ledger.LogCustom("Personal", "Before backup", 10, ledger.LogDetails{})
	require.NoError(t, err)

	mgr, err := ctx.Backups()
	require.NoError(t, err)
	backupPath, err := mgr.CreateBackup()
	require.NoError(t, err)

	_, err = ctx.Ledger.LogCustom("Personal", "After backup", 20, ledger.LogDetails{})
	require.NoError(t, err)

	clitest.Answer(ctx, "y")
	require.NoError(t, (&BackupRestoreCmd{BackupFile: filepath.Base(backupPath)}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Data restored successfully!")
	assert.Contains(t, out.String(), "Previous data saved as: innerlevel-")

	entries, err := ctx.Store.LoadActivityLog()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Before backup", entries[0].Description)
}

func TestBackupRestoreCancelled(t *testing.T) {
	ctx, out := clitest.New(t)
	mgr, err := ctx.Backups()
	require.NoError(t, err)
	backupPath, err := mgr.CreateBackup()
	require.NoError(t, err)

	clitest.Answer(ctx, "n")
	require.NoError(t, (&BackupRestoreCmd{BackupFile: backupPath}).Run(ctx))
	assert.Contains(t, out.String(), "Restore cancelled.")
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := clitest.New(t)
	err := (&BackupRestoreCmd{BackupFile: "innerlevel-20200101-000000.json", Yes: true}).Run(ctx)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "backup file not found"))

	abs := filepath.Join(t.TempDir(), "missing.json")
	_, statErr := os.Stat(abs)
	require.Error(t, statErr)
	assert.Error(t, (&BackupRestoreCmd{BackupFile: abs, Yes: true}).Run(ctx))
}
