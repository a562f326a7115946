package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/vintagevoice/internal/db"
)

// Environment variables that override the config file.
const (
	EnvDBPath         = "VV_DB_PATH"
	EnvDBDriver       = "VV_DB_DRIVER"
	EnvBlobDir        = "VV_BLOB_DIR"
	EnvUserID         = "VV_USER_ID"
	EnvSweepInterval  = "VV_SWEEP_INTERVAL"
	EnvPromptInterval = "VV_PROMPT_INTERVAL"
	EnvPromptCatalog  = "VV_PROMPT_CATALOG"
	EnvLogLevel       = "VV_LOG_LEVEL"
	EnvLogFormat      = "VV_LOG_FORMAT"
)

// Duration is a time.Duration that reads and writes as "1m30s" in JSON.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"1m\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the process-wide configuration, built once at start.
type Config struct {
	Version        string   `json:"version"`
	UserID         string   `json:"user_id,omitempty"`        // acting user for the CLI
	DBPath         string   `json:"db_path,omitempty"`        // default ~/.vintagevoice/vintagevoice.db
	DBDriver       string   `json:"db_driver,omitempty"`      // "sqlite3" or "sqlite"
	BlobDir        string   `json:"blob_dir,omitempty"`       // default ~/.vintagevoice/audio
	SweepInterval  Duration `json:"sweep_interval,omitempty"` // max delivery visibility latency
	PromptInterval Duration `json:"prompt_interval,omitempty"`
	PromptCatalog  string   `json:"prompt_catalog,omitempty"` // YAML file; built-in catalog when empty
	LogLevel       string   `json:"log_level,omitempty"`
	LogFormat      string   `json:"log_format,omitempty"` // "text" or "json"

	// NotificationsEnabled gates enqueueing push notifications.
	NotificationsEnabled bool `json:"notifications_enabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:              "1",
		DBDriver:             db.DriverCGo,
		SweepInterval:        Duration(time.Minute),
		PromptInterval:       Duration(5 * time.Minute),
		LogLevel:             "info",
		LogFormat:            "text",
		NotificationsEnabled: true,
	}
}

// Load builds the configuration for dir.
// Resolution order: defaults, then dir/.vintagevoice/config.json when present,
// then VV_* environment variables (after loading dir/.env when present).
func Load(dir string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath(dir))
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	for env, field := range map[string]*string{
		EnvDBPath:        &c.DBPath,
		EnvDBDriver:      &c.DBDriver,
		EnvBlobDir:       &c.BlobDir,
		EnvUserID:        &c.UserID,
		EnvPromptCatalog: &c.PromptCatalog,
		EnvLogLevel:      &c.LogLevel,
		EnvLogFormat:     &c.LogFormat,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}

	for env, field := range map[string]*Duration{
		EnvSweepInterval:  &c.SweepInterval,
		EnvPromptInterval: &c.PromptInterval,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		*field = Duration(d)
	}
	return nil
}

// Validate rejects unusable settings.
func (c *Config) Validate() error {
	if !db.ValidDriver(c.DBDriver) {
		return fmt.Errorf("unsupported db_driver %q (use %q or %q)", c.DBDriver, db.DriverCGo, db.DriverPure)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	if c.PromptInterval <= 0 {
		return fmt.Errorf("prompt_interval must be positive")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log_format %q (use text or json)", c.LogFormat)
	}
	return nil
}

// ResolvedDBPath returns DBPath or the default location.
func (c *Config) ResolvedDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	return db.DefaultPath()
}

// ResolvedBlobDir returns BlobDir or ~/.vintagevoice/audio.
func (c *Config) ResolvedBlobDir() (string, error) {
	if c.BlobDir != "" {
		return c.BlobDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".vintagevoice", "audio"), nil
}

// SaveConfig writes config.json to dir/.vintagevoice.
func SaveConfig(dir string, cfg *Config) error {
	vvDir := filepath.Join(dir, ".vintagevoice")
	if err := os.MkdirAll(vvDir, 0755); err != nil {
		return fmt.Errorf("failed to create .vintagevoice dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func configPath(dir string) string {
	return filepath.Join(dir, ".vintagevoice", "config.json")
}
