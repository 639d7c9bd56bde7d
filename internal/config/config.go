// Package config loads the server configuration from a TOML file, falling
// back to sensible defaults when the file or individual keys are absent.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	Retention RetentionConfig `toml:"retention"`
	Log       LogConfig       `toml:"log"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	// JWTSecret signs session tokens. Must be set in production; the default
	// exists only so a fresh checkout runs.
	JWTSecret string `toml:"jwt_secret"`
	// TokenTTL is how long a session token stays valid, e.g. "24h".
	TokenTTL string `toml:"token_ttl"`
}

type RetentionConfig struct {
	// MaxGroupAgeDays is how long a group may sit untouched before the purge
	// deletes it. Zero disables the purge.
	MaxGroupAgeDays int `toml:"max_group_age_days"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database:  DatabaseConfig{Path: "data/rachaai.db"},
		Auth:      AuthConfig{JWTSecret: "dev-secret-change-me", TokenTTL: "24h"},
		Retention: RetentionConfig{MaxGroupAgeDays: 30},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads the config file at path on top of the defaults. A missing file
// is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	// The JWT secret can come from the environment so it stays out of
	// checked-in config files.
	if secret := os.Getenv("RACHAAI_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// TokenTTL parses the configured token lifetime.
func (c *Config) TokenTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Auth.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid auth.token_ttl %q: %w", c.Auth.TokenTTL, err)
	}
	return d, nil
}

// GroupMaxAge returns the retention window as a duration.
func (c *Config) GroupMaxAge() time.Duration {
	return time.Duration(c.Retention.MaxGroupAgeDays) * 24 * time.Hour
}
