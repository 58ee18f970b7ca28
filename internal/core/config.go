package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "config.yaml"
	envFile    = ".env"

	// DefaultLoadLimit is the window size used by load when none is configured.
	DefaultLoadLimit = 30
)

// Environment overrides, read from the process and from .scrollback/.env.
const (
	EnvUser      = "SCROLLBACK_USER"
	EnvTimezone  = "SCROLLBACK_TZ"
	EnvLoadLimit = "SCROLLBACK_LIMIT"
)

// Config holds per-project settings.
type Config struct {
	User          string `yaml:"user,omitempty"`
	Timezone      string `yaml:"timezone,omitempty"`
	LoadLimit     int    `yaml:"load_limit,omitempty"`
	HideJoinLeave bool   `yaml:"hide_join_leave,omitempty"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() Config {
	return Config{Timezone: "UTC", LoadLimit: DefaultLoadLimit}
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadConfig reads config.yaml from the state dir and applies overrides
// from .env and the process environment, in that order.
func LoadConfig(stateDir string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(stateDir, configFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, err
	}

	env, err := godotenv.Read(filepath.Join(stateDir, envFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("parse %s: %w", envFile, err)
	}
	if env == nil {
		env = map[string]string{}
	}
	for _, key := range []string{EnvUser, EnvTimezone, EnvLoadLimit} {
		if value := os.Getenv(key); value != "" {
			env[key] = value
		}
	}

	if value := env[EnvUser]; value != "" {
		config.User = value
	}
	if value := env[EnvTimezone]; value != "" {
		config.Timezone = value
	}
	if value := env[EnvLoadLimit]; value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil || limit <= 0 {
			return Config{}, fmt.Errorf("invalid %s: %q", EnvLoadLimit, value)
		}
		config.LoadLimit = limit
	}
	if config.LoadLimit <= 0 {
		config.LoadLimit = DefaultLoadLimit
	}

	return config, nil
}

// WriteConfig writes config.yaml to the state dir.
func WriteConfig(stateDir string, config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(stateDir, configFile), data, 0o644)
}
