// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/gnsstime/internal/domain/entities"
)

const (
	// DefaultConfigDir is the directory name for gnsstime configuration.
	DefaultConfigDir = ".gnsstime"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatasetsFile is the default datasets file name.
	DefaultDatasetsFile = "datasets.yaml"
	// DefaultDataset is the dataset used when none is selected.
	DefaultDataset = "default"
)

var (
	// reNonAlphanumeric matches characters that aren't alphanumeric or underscore.
	reNonAlphanumeric = regexp.MustCompile(`[^a-z0-9_]`)
	// reMultipleUnderscores matches consecutive underscores.
	reMultipleUnderscores = regexp.MustCompile(`_+`)
)

// Config holds static configuration (read-only after init).
type Config struct {
	SQLite     SQLiteConfig     `yaml:"sqlite,omitempty"`
	Conversion ConversionConfig `yaml:"conversion,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Metrics    MetricsConfig    `yaml:"metrics,omitempty"`
	Watch      WatchConfig      `yaml:"watch,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite correction store.
type SQLiteConfig struct {
	// Path overrides the per-dataset database path when set.
	Path string `yaml:"path,omitempty"`
}

// ConversionConfig controls the corrections database.
type ConversionConfig struct {
	StrictValidity bool   `yaml:"strict_validity"`
	PathCacheSize  int    `yaml:"path_cache_size"`
	DefaultTarget  string `yaml:"default_target,omitempty"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development"`
}

// MetricsConfig controls the prometheus endpoint served by long-running commands.
type MetricsConfig struct {
	// Addr is the listen address, e.g. ":9464". Empty disables the endpoint.
	Addr string `yaml:"addr,omitempty"`
}

// WatchConfig controls the correction file watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Conversion: ConversionConfig{
			PathCacheSize: 16,
			DefaultTarget: entities.GPST.String(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load loads configuration from the .gnsstime directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'gnsstime init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("GNSSTIME_DB_PATH"); path != "" {
		c.SQLite.Path = path
	}
	if level := os.Getenv("GNSSTIME_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Conversion.PathCacheSize < 0 {
		return fmt.Errorf("conversion.path_cache_size must not be negative, got %d", c.Conversion.PathCacheSize)
	}
	if c.Conversion.DefaultTarget != "" {
		if _, err := entities.ParseTimeScale(c.Conversion.DefaultTarget); err != nil {
			return fmt.Errorf("conversion.default_target: %w", err)
		}
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// DatabasePath returns the SQLite path for a dataset, honoring sqlite.path.
func (c *Config) DatabasePath(basePath, dataset string) string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return SQLitePathForDataset(basePath, dataset)
}

// ConfigDir returns the path to the .gnsstime config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// DatasetsFilePath returns the path to the datasets file.
func DatasetsFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultDatasetsFile)
}

// SanitizeDatasetName converts a dataset name to a safe directory name.
func SanitizeDatasetName(name string) string {
	name = strings.ToLower(name)

	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	name = reNonAlphanumeric.ReplaceAllString(name, "")
	name = reMultipleUnderscores.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	if name == "" {
		return DefaultDataset
	}

	return name
}

// DatasetDir returns the directory path for a given dataset.
func DatasetDir(basePath, dataset string) string {
	return filepath.Join(basePath, DefaultConfigDir, "datasets", SanitizeDatasetName(dataset))
}

// SQLitePathForDataset returns the SQLite database path for a given dataset.
func SQLitePathForDataset(basePath, dataset string) string {
	return filepath.Join(DatasetDir(basePath, dataset), "corrections.db")
}
