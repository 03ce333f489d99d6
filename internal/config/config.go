// Package config loads editor host configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds all editor host configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Grid    GridConfig    `yaml:"grid"`
	API     APIConfig     `yaml:"api"`
	Editor  EditorConfig  `yaml:"editor"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects and locates the persistence backend
type StorageConfig struct {
	Backend    string `yaml:"backend"`     // json | sqlite
	Dir        string `yaml:"dir"`         // root holding the Maps directory
	SQLitePath string `yaml:"sqlite_path"` // database file for the sqlite backend
}

// GridConfig holds the grid generated at startup
type GridConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	HexSize    float64 `yaml:"hex_size"`
	InitialMap string  `yaml:"initial_map"` // loaded instead of generating when set
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	Port      int    `yaml:"port"`
	AdminKey  string `yaml:"admin_key"`
	SaveLimit int    `yaml:"save_limit"` // save/load requests per IP per minute
}

// EditorConfig holds interaction timing
type EditorConfig struct {
	TooltipDelayMS  int `yaml:"tooltip_delay_ms"`
	FrameMS         int `yaml:"frame_ms"`
	AutosaveMinutes int `yaml:"autosave_minutes"` // 0 disables autosave
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // auto | text | json
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; environment variables override both.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendJSON
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "data/maps.db"
	}
	if c.Grid.Width == 0 {
		c.Grid.Width = 10
	}
	if c.Grid.Height == 0 {
		c.Grid.Height = 10
	}
	if c.Grid.HexSize == 0 {
		c.Grid.HexSize = 1
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.SaveLimit == 0 {
		c.API.SaveLimit = 30
	}
	if c.Editor.TooltipDelayMS == 0 {
		c.Editor.TooltipDelayMS = 500
	}
	if c.Editor.FrameMS == 0 {
		c.Editor.FrameMS = 16
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "auto"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HEXMAP_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("HEXMAP_ADMIN_KEY"); v != "" {
		c.API.AdminKey = v
	}
	if v := os.Getenv("HEXMAP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.API.Port = p
		}
	}
}

// Validate rejects settings the host cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Grid.Width < 0 || c.Grid.Height < 0 {
		return fmt.Errorf("grid dimensions must not be negative: %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Grid.HexSize < 0 {
		return fmt.Errorf("hex_size must not be negative: %v", c.Grid.HexSize)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// TooltipDelay returns the hover delay before a tooltip shows.
func (c *Config) TooltipDelay() time.Duration {
	return time.Duration(c.Editor.TooltipDelayMS) * time.Millisecond
}

// FrameInterval returns the editor update interval.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Editor.FrameMS) * time.Millisecond
}

// AutosaveInterval returns the autosave period, zero when disabled.
func (c *Config) AutosaveInterval() time.Duration {
	return time.Duration(c.Editor.AutosaveMinutes) * time.Minute
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
