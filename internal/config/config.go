// Package config resolves runtime settings for the feedql commands.
//
// Precedence, lowest to highest: built-in defaults, the optional YAML config
// file, environment variables, then command-line flags (applied by the CLI
// layer). The environment variable names match the ssb-server conventions so
// an existing .env keeps working.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvDatabase  = "DATABASE_URL"
	EnvOffsetLog = "OFFSET_LOG_PATH"
	EnvPubKey    = "PUB_KEY"
)

// Config holds the settings shared across commands.
type Config struct {
	// Database is the path to the SQLite index database.
	Database string `yaml:"database"`
	// OffsetLog is the path to the append-only offset log file.
	OffsetLog string `yaml:"offset_log"`
	// PubKey is the public identifier of the local author, used to mark
	// the is_me row. Optional.
	PubKey string `yaml:"pub_key"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Database: "feedql.db",
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto the config.
func (c Config) ApplyEnv() Config {
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvOffsetLog); v != "" {
		c.OffsetLog = v
	}
	if v := os.Getenv(EnvPubKey); v != "" {
		c.PubKey = v
	}
	return c
}
