package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/.config/innerlevel")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/innerlevel"), got)

	got, err = ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = ExpandHome("/var/lib/innerlevel")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/innerlevel", got)

	got, err = ExpandHome("~other/data")
	require.NoError(t, err)
	assert.Equal(t, "~other/data", got)
}
