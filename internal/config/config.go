// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/javiermolinar/daybook/internal/availability"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Storage  StorageConfig  `toml:"storage"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
	LLM      LLMConfig      `toml:"llm"`
	UI       UIConfig       `toml:"ui"`
}

// ScheduleConfig holds the default user's scheduling settings.
type ScheduleConfig struct {
	User       string                  `toml:"user"`     // user id used by the CLI
	Timezone   string                  `toml:"timezone"` // IANA name, e.g. "Europe/Madrid"
	AwakeHours availability.AwakeHours `toml:"awake_hours"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string `toml:"addr"`
	RequestTimeout string `toml:"request_timeout"` // e.g. "15s"
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `toml:"level"` // "debug", "info", "warn", "error"
	Development bool   `toml:"development"`
}

// LLMConfig holds the provider used for week reviews.
// An empty provider disables reviews.
type LLMConfig struct {
	Provider string `toml:"provider"` // "ollama", "lmstudio" or "openai"
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
}

// UIConfig holds settings of the interactive day view.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "frappe" or "latte"
}

// Default returns the default configuration.
func Default() *Config {
	hours := availability.AwakeHours{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		hours[day] = &availability.HourRange{Start: 9, End: 17}
	}
	return &Config{
		Schedule: ScheduleConfig{
			User:       "local",
			Timezone:   "UTC",
			AwakeHours: hours,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: "15s",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			Theme: "mocha",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "daybook.db"
	}
	return filepath.Join(home, ".local", "share", "daybook", "daybook.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "daybook", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	// A file that sets awake_hours replaces the default week instead of merging into it.
	defaults := cfg.Schedule.AwakeHours
	cfg.Schedule.AwakeHours = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Schedule.AwakeHours == nil {
		cfg.Schedule.AwakeHours = defaults
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DAYBOOK_USER"); v != "" {
		cfg.Schedule.User = v
	}
	if v := os.Getenv("DAYBOOK_TIMEZONE"); v != "" {
		cfg.Schedule.Timezone = v
	}

	if v := os.Getenv("DAYBOOK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("DAYBOOK_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DAYBOOK_REQUEST_TIMEOUT"); v != "" {
		cfg.Server.RequestTimeout = v
	}

	if v := os.Getenv("DAYBOOK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DAYBOOK_LOG_DEVELOPMENT"); v != "" {
		cfg.Log.Development = v == "1" || strings.EqualFold(v, "true")
	}

	if v := os.Getenv("DAYBOOK_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("DAYBOOK_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("DAYBOOK_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("DAYBOOK_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Schedule.User) == "" {
		return errors.New("user must be set")
	}
	if _, err := availability.LoadLocation(c.Schedule.Timezone); err != nil {
		return err
	}
	if err := c.Schedule.AwakeHours.Validate(); err != nil {
		return fmt.Errorf("awake_hours: %w", err)
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Server.Addr == "" {
		return errors.New("server addr must be set")
	}
	if _, err := c.Server.Timeout(); err != nil {
		return err
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.LLM.Provider != "" && strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm model must be set when a provider is configured")
	}
	return nil
}

// Location returns the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return availability.LoadLocation(c.Schedule.Timezone)
}

// Timeout parses the request timeout.
func (s ServerConfig) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("request_timeout must be a duration, got %q", s.RequestTimeout)
	}
	if d <= 0 {
		return 0, fmt.Errorf("request_timeout must be positive, got %q", s.RequestTimeout)
	}
	return d, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
