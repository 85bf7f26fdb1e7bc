// Package config provides configuration file and environment variable support for countdown.
//
// Configuration priority (highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Config file (~/.countdown/config.toml)
//  4. Built-in defaults
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Config represents the countdown configuration.
type Config struct {
	// DB is the path to the store file.
	// Default: ~/.countdown/countdown.db (sqlite) or ~/.countdown/countdown.bolt (bolt)
	DB string `toml:"db"`

	// Backend selects the key-value store: sqlite, bolt or memory.
	// Default: sqlite
	Backend string `toml:"backend"`

	// NoColor disables colored output.
	// Default: false
	NoColor bool `toml:"no_color"`

	// Formats are the format specs rendered for every timer, one column each.
	// Default: ["dhms"]
	Formats []string `toml:"formats"`

	// TickMillis is the refresh interval for watch and the web page.
	// Default: 1000
	TickMillis int `toml:"tick_ms"`

	Backup BackupConfig `toml:"backup"`
	Server ServerConfig `toml:"server"`
}

// BackupConfig controls automatic rotating backups of the store file.
type BackupConfig struct {
	// Enabled turns automatic backups on.
	// Default: true
	Enabled bool `toml:"enabled"`

	// IntervalHours is the minimum age of the newest backup before another is made.
	// Default: 24
	IntervalHours int `toml:"interval_hours"`

	// MaxCount is the number of backups kept.
	// Default: 5
	MaxCount int `toml:"max_count"`

	// Path is the backup directory. Empty means next to the store file.
	Path string `toml:"path"`
}

// ServerConfig holds defaults for `countdown serve`.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// Advertise announces the server over mDNS.
	Advertise bool `toml:"advertise"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		DB:         "", // Empty means use the backend's default path
		Backend:    BackendSQLite,
		NoColor:    false,
		Formats:    []string{"dhms"},
		TickMillis: 1000,
		Backup: BackupConfig{
			Enabled:       true,
			IntervalHours: 24,
			MaxCount:      5,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 18181,
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".countdown", "config.toml")
}

// Load loads configuration from the config file and environment variables.
// Environment variables take precedence over file settings.
// Returns default config if the config file doesn't exist.
func Load() (*Config, error) {
	return LoadFromPath(DefaultConfigPath())
}

// LoadFromPath loads configuration from a specific file path.
// Environment variables take precedence over file settings.
// Returns default config if the config file doesn't exist.
func LoadFromPath(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv applies environment variable overrides to the config.
func (c *Config) applyEnv() {
	if db := os.Getenv("COUNTDOWN_DB"); db != "" {
		c.DB = db
	}

	if backend := os.Getenv("COUNTDOWN_BACKEND"); backend != "" {
		c.Backend = strings.ToLower(backend)
	}

	// COUNTDOWN_NO_COLOR - any value means true
	if _, ok := os.LookupEnv("COUNTDOWN_NO_COLOR"); ok {
		c.NoColor = true
	}

	if formats := os.Getenv("COUNTDOWN_FORMATS"); formats != "" {
		c.Formats = strings.Split(formats, ";")
	}

	if tick := os.Getenv("COUNTDOWN_TICK_MS"); tick != "" {
		if ms, err := strconv.Atoi(tick); err == nil && ms > 0 {
			c.TickMillis = ms
		}
	}
}

// GetDB returns the store path, empty meaning the backend default.
func (c *Config) GetDB() string {
	return c.DB
}

// GetBackend returns the configured backend, defaulting to sqlite.
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// SampleConfig returns a sample configuration file content.
func SampleConfig() string {
	return `# Countdown Configuration File
# Location: ~/.countdown/config.toml
#
# Configuration priority (highest to lowest):
#   1. Command-line flags
#   2. Environment variables (COUNTDOWN_*)
#   3. This config file
#   4. Built-in defaults

# Path to the store file
# Default: ~/.countdown/countdown.db (sqlite), ~/.countdown/countdown.bolt (bolt)
# Environment: COUNTDOWN_DB
# db = "/path/to/countdown.db"

# Key-value backend: sqlite, bolt or memory
# Environment: COUNTDOWN_BACKEND
# backend = "sqlite"

# Disable colored output
# Environment: COUNTDOWN_NO_COLOR (any value = true)
# no_color = false

# Format specs, one rendered column per spec
# Environment: COUNTDOWN_FORMATS (separated by ';')
# formats = ["dhms", "wdhms"]

# Refresh interval in milliseconds for watch and the web page
# Environment: COUNTDOWN_TICK_MS
# tick_ms = 1000

[backup]
# enabled = true
# interval_hours = 24
# max_count = 5
# path = ""

[server]
# host = "localhost"
# port = 18181
# advertise = false
`
}

// WriteConfigFile writes the sample config file to the specified path.
// Creates parent directories if needed.
func WriteConfigFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(SampleConfig()), 0644)
}
