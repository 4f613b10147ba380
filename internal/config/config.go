package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Discogs  DiscogsConfig  `yaml:"discogs"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

// DatabaseConfig holds SQLite settings for the saved-search store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DiscogsConfig holds credentials and pacing for the Discogs API client.
// MinRequestInterval is the minimum gap between any two outbound requests;
// the authenticated free tier allows 60 requests per minute, so the default
// stays comfortably under that.
type DiscogsConfig struct {
	Token              string        `yaml:"token"`
	UserAgent          string        `yaml:"user_agent"`
	MinRequestInterval time.Duration `yaml:"min_request_interval"`
	RetryMax           int           `yaml:"retry_max"`
}

// SearchConfig holds knobs for the expansion engine.
type SearchConfig struct {
	// MaxReleases caps how many seed search results are scanned for credits.
	MaxReleases int `yaml:"max_releases"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			BasePath: "",
		},
		Database: DatabaseConfig{
			Path: "/data/periphery.db",
		},
		Discogs: DiscogsConfig{
			UserAgent:          "Periphery/1.0",
			MinRequestInterval: 1100 * time.Millisecond,
			RetryMax:           3,
		},
		Search: SearchConfig{
			MaxReleases: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("VP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("VP_BASE_PATH"); v != "" {
		c.Server.BasePath = v
	}
	if v := os.Getenv("VP_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("VP_DISCOGS_TOKEN"); v != "" {
		c.Discogs.Token = v
	}
	if v := os.Getenv("VP_DISCOGS_USER_AGENT"); v != "" {
		c.Discogs.UserAgent = v
	}
	if v := os.Getenv("VP_DISCOGS_MIN_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Discogs.MinRequestInterval = d
		}
	}
	if v := os.Getenv("VP_DISCOGS_RETRY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Discogs.RetryMax = n
		}
	}
	if v := os.Getenv("VP_MAX_RELEASES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxReleases = n
		}
	}
	if v := os.Getenv("VP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("VP_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("VP_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Discogs.MinRequestInterval <= 0 {
		return fmt.Errorf("discogs min_request_interval must be positive")
	}
	if c.Discogs.RetryMax < 0 {
		return fmt.Errorf("discogs retry_max must not be negative")
	}
	if c.Search.MaxReleases < 1 {
		return fmt.Errorf("search max_releases must be at least 1")
	}
	c.Server.BasePath = strings.TrimRight(c.Server.BasePath, "/")
	return nil
}
