// Package config loads the desktop app settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// AppDirName is the per-user directory holding the database and fallback
// secrets.
const AppDirName = "scoremaster-desktop"

// Config holds every tunable of the app.
type Config struct {
	DataDir        string `env:"SCOREMASTER_DATA_DIR"`
	DBName         string `env:"SCOREMASTER_DB_NAME" envDefault:"scoremaster.db"`
	StateKey       string `env:"SCOREMASTER_STATE_KEY" envDefault:"scoremaster_pro_state_v2"`
	APIEnabled     bool   `env:"SCOREMASTER_API_ENABLED" envDefault:"true"`
	APIPort        int    `env:"SCOREMASTER_API_PORT" envDefault:"17890"`
	APIToken       string `env:"SCOREMASTER_API_TOKEN"`
	RequireToken   bool   `env:"SCOREMASTER_API_REQUIRE_TOKEN" envDefault:"true"`
	KeyringService string `env:"SCOREMASTER_KEYRING_SERVICE" envDefault:"scoremaster-desktop"`
}

// Load parses the environment. An unset data directory resolves to the
// user's config directory.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = AppDataDir()
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return Config{}, fmt.Errorf("parse env: SCOREMASTER_API_PORT out of range: %d", cfg.APIPort)
	}
	return cfg, nil
}

// DBPath is the SQLite database file.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBName)
}

// SecretsPath is the file used when no OS keyring is available.
func (c Config) SecretsPath() string {
	return filepath.Join(c.DataDir, "fallback_secrets.json")
}

// AppDataDir returns an OS-appropriate writable directory.
func AppDataDir() string {
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, AppDirName)
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, "."+AppDirName)
	}
	return "."
}
