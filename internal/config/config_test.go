package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/keyring"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvStore, EnvConnection, EnvInsightURL, EnvInsightModel, EnvInsightToken} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, constants.BackendJSON, cfg.Store.Backend)
	assert.Equal(t, constants.DefaultInsightBaseURL, cfg.Insight.BaseURL)
	assert.Equal(t, 3, cfg.Insight.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Insight.Delay)
	assert.Equal(t, constants.DefaultEmotionStates, cfg.Emotions.States)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
timezone: America/New_York
store:
  backend: sqlite
  path: /tmp/innerlevel-test.db
insight:
  model: llama3
  max_attempts: 5
  delay: 250ms
emotions:
  states: [Ansioso, Motivado, Tranquilo]
  positive: [Tranquilo]
  negative: [Ansioso]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, constants.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "llama3", cfg.Insight.Model)
	assert.Equal(t, 5, cfg.Insight.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Insight.Delay)
	// unset keys keep their defaults
	assert.Equal(t, constants.DefaultInsightBaseURL, cfg.Insight.BaseURL)
	assert.Equal(t, constants.DefaultInsightTimeout, cfg.Insight.Timeout)
	assert.Equal(t, []string{"Tranquilo"}, cfg.Emotions.Positive)
	assert.Equal(t, "America/New_York", cfg.Location().String())

	p, err := cfg.StorePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/innerlevel-test.db", p)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvStore, "bolt")
	t.Setenv(EnvInsightURL, "http://gpu-box:11434/api")
	t.Setenv(EnvInsightModel, "phi3")
	path := writeConfig(t, "store:\n  backend: sqlite\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, constants.BackendBolt, cfg.Store.Backend)
	assert.Equal(t, "http://gpu-box:11434/api", cfg.Insight.BaseURL)
	assert.Equal(t, "phi3", cfg.Insight.Model)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad yaml", content: "store: [unclosed"},
		{name: "unknown backend", content: "store:\n  backend: mongo\n"},
		{name: "bad timezone", content: "timezone: Mars/Olympus\n"},
		{name: "zero attempts", content: "insight:\n  max_attempts: 0\n"},
		{name: "negative delay", content: "insight:\n  delay: -1s\n"},
		{
			name:    "bucket outside states",
			content: "emotions:\n  states: [Calm]\n  positive: [Joyful]\n  negative: []\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "INNERLEVEL_DOTENV_PROBE"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-dotenv\n"), 0o600))

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv(key))

	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestStorePathDefaults(t *testing.T) {
	cfg := Default()
	cfg.path = "/home/user/.config/innerlevel/config.yaml"

	tests := []struct {
		backend string
		want    string
	}{
		{constants.BackendJSON, "/home/user/.config/innerlevel/data"},
		{constants.BackendSQLite, "/home/user/.config/innerlevel/innerlevel.db"},
		{constants.BackendBolt, "/home/user/.config/innerlevel/innerlevel.bolt"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg.Store.Backend = tt.backend
			got, err := cfg.StorePath()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	cfg.Store.Backend = constants.BackendPostgres
	_, err := cfg.StorePath()
	assert.Error(t, err)
}

func TestConnectionString(t *testing.T) {
	gokeyring.MockInit()
	_ = keyring.DeleteConnectionString()

	cfg := Default()
	cfg.Store.Backend = constants.BackendPostgres

	_, err := cfg.ConnectionString()
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	require.NoError(t, keyring.SetConnectionString("postgres://tracker@localhost:5432/innerlevel"))
	got, err := cfg.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://tracker@localhost:5432/innerlevel", got)

	cfg.Store.Connection = "host=db user=tracker dbname=innerlevel"
	got, err = cfg.ConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "host=db user=tracker dbname=innerlevel", got)
}

func TestInsightClientConfig(t *testing.T) {
	gokeyring.MockInit()
	clearEnv(t)

	cfg := Default()
	cfg.Insight.Model = "llama3"

	require.NoError(t, keyring.Set(keyring.InsightToken, "from-keyring"))
	ic := cfg.InsightClientConfig()
	assert.Equal(t, "llama3", ic.Model)
	assert.Equal(t, "from-keyring", ic.Token)
	assert.Equal(t, 3, ic.MaxAttempts)

	t.Setenv(EnvInsightToken, "from-env")
	assert.Equal(t, "from-env", cfg.InsightClientConfig().Token)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Store.Backend = constants.BackendSQLite
	cfg.Insight.Delay = 2 * time.Second
	require.NoError(t, cfg.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, constants.BackendSQLite, again.Store.Backend)
	assert.Equal(t, 2*time.Second, again.Insight.Delay)
	assert.Equal(t, cfg.Emotions, again.Emotions)
}
