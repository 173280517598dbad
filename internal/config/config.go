// Package config loads the InnerLevel configuration file stored at
// ~/.config/innerlevel/config.yaml, layered under environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/emotion"
	"github.com/julianstephens/innerlevel/internal/insight"
	"github.com/julianstephens/innerlevel/internal/keyring"
	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/utils"
)

// Environment variables that override the file.
const (
	EnvStore        = "INNERLEVEL_STORE"
	EnvConnection   = "INNERLEVEL_DB_CONNECTION"
	EnvInsightURL   = "INNERLEVEL_INSIGHT_URL"
	EnvInsightModel = "INNERLEVEL_INSIGHT_MODEL"
	EnvInsightToken = "INNERLEVEL_INSIGHT_TOKEN"
)

// DotEnvFile is read from the working directory before the environment is
// consulted. Variables already set in the environment win.
const DotEnvFile = ".env"

var backends = []string{
	constants.BackendJSON,
	constants.BackendSQLite,
	constants.BackendPostgres,
	constants.BackendBolt,
}

type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Path is the data directory (json) or database file (sqlite, bolt).
	Path string `yaml:"path,omitempty"`
	// Connection is the PostgreSQL connection string, without a password.
	Connection string `yaml:"connection,omitempty"`
}

type InsightConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Config struct {
	Timezone string             `yaml:"timezone"`
	Store    StoreConfig        `yaml:"store"`
	Insight  InsightConfig      `yaml:"insight"`
	Emotions emotion.Vocabulary `yaml:"emotions"`

	path string
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Timezone: "Local",
		Store: StoreConfig{
			Backend: constants.BackendJSON,
		},
		Insight: InsightConfig{
			BaseURL:     constants.DefaultInsightBaseURL,
			Model:       constants.DefaultInsightModel,
			MaxAttempts: constants.DefaultInsightMaxAttempts,
			Delay:       constants.DefaultInsightDelay,
			Timeout:     constants.DefaultInsightTimeout,
		},
		Emotions: emotion.DefaultVocabulary(),
	}
}

// DefaultPath is ~/.config/innerlevel/config.yaml.
func DefaultPath() (string, error) {
	dir, err := utils.ExpandHome(constants.DefaultConfigDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// Load reads the config at path, falling back to defaults when the file
// does not exist, then applies .env and environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	path, err := utils.ExpandHome(path)
	if err != nil {
		return nil, err
	}

	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("No config file, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.path = path

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func loadDotEnv(name string) error {
	err := godotenv.Load(name)
	if err == nil {
		logger.Debug("Loaded environment file", "path", name)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("reading %s: %w", name, err)
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvStore); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(EnvConnection); v != "" {
		c.Store.Connection = v
	}
	if v := os.Getenv(EnvInsightURL); v != "" {
		c.Insight.BaseURL = v
	}
	if v := os.Getenv(EnvInsightModel); v != "" {
		c.Insight.Model = v
	}
}

// Validate checks every section. It does not contact the keyring.
func (c *Config) Validate() error {
	if !slices.Contains(backends, c.Store.Backend) {
		return fmt.Errorf("unknown store backend %q (want one of %v)", c.Store.Backend, backends)
	}
	if _, err := utils.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Insight.MaxAttempts < 1 {
		return fmt.Errorf("insight.max_attempts must be at least 1, got %d", c.Insight.MaxAttempts)
	}
	if c.Insight.Delay < 0 {
		return fmt.Errorf("insight.delay cannot be negative")
	}
	if c.Insight.Timeout <= 0 {
		return fmt.Errorf("insight.timeout must be positive")
	}
	if err := c.Emotions.Validate(); err != nil {
		return fmt.Errorf("emotions: %w", err)
	}
	return nil
}

// Path is the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Dir is the directory holding the config file; data and logs live under it
// unless configured otherwise.
func (c *Config) Dir() string {
	if c.path == "" {
		if p, err := DefaultPath(); err == nil {
			return filepath.Dir(p)
		}
	}
	return filepath.Dir(c.path)
}

// Location is the timezone that decides what "today" means.
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// StorePath resolves where the selected file-backed store lives.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return utils.ExpandHome(c.Store.Path)
	}
	switch c.Store.Backend {
	case constants.BackendJSON:
		return filepath.Join(c.Dir(), "data"), nil
	case constants.BackendSQLite:
		return filepath.Join(c.Dir(), constants.AppName+".db"), nil
	case constants.BackendBolt:
		return filepath.Join(c.Dir(), constants.AppName+".bolt"), nil
	}
	return "", fmt.Errorf("store backend %q has no file path", c.Store.Backend)
}

// ConnectionString returns the PostgreSQL connection string from the
// config or environment, falling back to the OS keyring.
func (c *Config) ConnectionString() (string, error) {
	if c.Store.Connection != "" {
		return c.Store.Connection, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		return "", fmt.Errorf("no PostgreSQL connection string: set store.connection, %s, or run 'innerlevel keyring set db': %w", EnvConnection, err)
	}
	return connStr, nil
}

// InsightClientConfig builds the insight client settings. The bearer token
// comes from the environment or the keyring and is optional.
func (c *Config) InsightClientConfig() insight.Config {
	token := os.Getenv(EnvInsightToken)
	if token == "" {
		if v, err := keyring.GetInsightToken(); err == nil {
			token = v
		} else if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Insight token lookup failed", "error", err)
		}
	}
	return insight.Config{
		BaseURL:     c.Insight.BaseURL,
		Model:       c.Insight.Model,
		Token:       token,
		MaxAttempts: c.Insight.MaxAttempts,
		Delay:       c.Insight.Delay,
		Timeout:     c.Insight.Timeout,
	}
}

// Save writes the config to its path, creating the directory if needed.
func (c *Config) Save() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = p
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.path, data, 0o600)
}
