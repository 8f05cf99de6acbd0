package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/coffeematch/internal/constants"
	"github.com/julianstephens/coffeematch/internal/utils"
)

// FileName is the name of the optional YAML config inside the config directory.
const FileName = "config.yaml"

// Config holds client and server settings
type Config struct {
	APIURL        string       `yaml:"api_url"`
	Timezone      string       `yaml:"timezone"`
	DateRangeDays int          `yaml:"date_range_days"`
	Debug         bool         `yaml:"debug"`
	Server        ServerConfig `yaml:"server"`
}

// ServerConfig holds reference backend configuration
type ServerConfig struct {
	Addr      string  `yaml:"addr"`
	Database  string  `yaml:"database"`
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
	LogLevel  string  `yaml:"log_level"`
}

// Overrides carries values set by flags or environment variables.
// Zero values mean "not set".
type Overrides struct {
	APIURL        string
	Timezone      string
	DateRangeDays int
	Debug         bool
	ServerAddr    string
	Database      string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		APIURL:        constants.DefaultAPIURL,
		Timezone:      constants.DefaultTimezone,
		DateRangeDays: constants.DateRangeDays,
		Server: ServerConfig{
			Addr:      constants.DefaultServerAddr,
			Database:  constants.DefaultDatabase,
			RateLimit: constants.DefaultRateLimit,
			RateBurst: constants.DefaultRateBurst,
			LogLevel:  "info",
		},
	}
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment are not overwritten.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads <configDir>/config.yaml over the defaults and then applies overrides.
// A missing file is not an error.
func Load(configDir string, o Overrides) (*Config, error) {
	cfg := Default()

	path := filepath.Join(utils.ExpandPath(configDir), FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(o Overrides) {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}
	if o.DateRangeDays > 0 {
		c.DateRangeDays = o.DateRangeDays
	}
	if o.Debug {
		c.Debug = true
	}
	if o.ServerAddr != "" {
		c.Server.Addr = o.ServerAddr
	}
	if o.Database != "" {
		c.Server.Database = o.Database
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return fmt.Errorf("api_url cannot be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url must start with http:// or https://: %s", c.APIURL)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone: %s", c.Timezone)
	}
	if c.DateRangeDays < 1 || c.DateRangeDays > 31 {
		return fmt.Errorf("date_range_days must be between 1 and 31, got %d", c.DateRangeDays)
	}
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = constants.DefaultRateLimit
	}
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = constants.DefaultRateBurst
	}
	return nil
}

// IsPostgres reports whether the server database setting is a PostgreSQL connection string.
func (s ServerConfig) IsPostgres() bool {
	return strings.HasPrefix(s.Database, "postgres://") || strings.HasPrefix(s.Database, "postgresql://")
}

// Save writes the configuration to <configDir>/config.yaml.
func (c *Config) Save(configDir string) error {
	dir := utils.ExpandPath(configDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
