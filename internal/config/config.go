// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DATABASE_DRIVER"`
	Filename string `yaml:"filename" env:"DATABASE_FILENAME"`
}

type RateLimitConfig struct {
	WriteCooldown     time.Duration `yaml:"write_cooldown" env:"RATE_LIMIT_WRITE_COOLDOWN"`
	WriteMaxPerHour   int           `yaml:"write_max_per_hour" env:"RATE_LIMIT_WRITE_MAX_PER_HOUR"`
	WriteMaxIPPerHour int           `yaml:"write_max_ip_per_hour" env:"RATE_LIMIT_WRITE_MAX_IP_PER_HOUR"`
	TrustProxy        bool          `yaml:"trust_proxy" env:"RATE_LIMIT_TRUST_PROXY"`
}

type MatchesConfig struct {
	// StaleCleanupCron schedules removal of abandoned in-progress matches.
	StaleCleanupCron string        `yaml:"stale_cleanup_cron" env:"MATCHES_STALE_CLEANUP_CRON"`
	StaleAfter       time.Duration `yaml:"stale_after" env:"MATCHES_STALE_AFTER"`
	FillIncomplete   bool          `yaml:"fill_incomplete" env:"MATCHES_FILL_INCOMPLETE"`
}

type LocaleConfig struct {
	Default         string   `yaml:"default" env:"LOCALE_DEFAULT"`
	DefaultTimezone string   `yaml:"default_timezone" env:"LOCALE_DEFAULT_TIMEZONE"`
	Supported       []string `yaml:"supported" env:"LOCALE_SUPPORTED" envSeparator:","`
	DefaultRegion   string   `yaml:"default_region" env:"LOCALE_DEFAULT_REGION"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name" env:"APP_NAME"`
		Environment string `yaml:"environment" env:"APP_ENVIRONMENT"`
		Port        int    `yaml:"port" env:"PORT"`
		BaseURL     string `yaml:"base_url" env:"APP_BASE_URL"`
		// AdminTokenHash is a bcrypt hash, loaded from the environment only.
		AdminTokenHash string `yaml:"-" env:"ADMIN_TOKEN_HASH"`
	} `yaml:"app"`

	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Matches   MatchesConfig   `yaml:"matches"`
	Locale    LocaleConfig    `yaml:"locale"`

	Features struct {
		EnableLivePreview bool `yaml:"enable_live_preview" env:"FEATURE_LIVE_PREVIEW"`
		EnableDebug       bool `yaml:"enable_debug" env:"FEATURE_DEBUG"`
	} `yaml:"features"`
}

// Default returns the configuration used for any value the YAML file leaves unset.
func Default() Config {
	var cfg Config
	cfg.App.Name = "matchtrack"
	cfg.App.Environment = "development"
	cfg.App.Port = 8080
	cfg.Database.Driver = "sqlite"
	cfg.Database.Filename = "data/matchtrack.db"
	cfg.RateLimit = RateLimitConfig{
		WriteCooldown:     200 * time.Millisecond,
		WriteMaxPerHour:   600,
		WriteMaxIPPerHour: 1200,
	}
	cfg.Matches = MatchesConfig{
		StaleCleanupCron: "0 * * * *",
		StaleAfter:       72 * time.Hour,
	}
	cfg.Locale = LocaleConfig{
		Default:         "en-GB",
		DefaultTimezone: "UTC",
		Supported:       []string{"en-GB", "en-AU", "en-US", "es-ES", "sv-SE"},
		DefaultRegion:   "GB",
	}
	cfg.Features.EnableLivePreview = true
	return cfg
}

// Load reads the YAML file at configPath, loads a sibling .env file if present,
// and applies environment overrides on top.
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app port must be between 1 and 65535")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if strings.TrimSpace(c.Matches.StaleCleanupCron) != "" {
		if _, err := cron.ParseStandard(c.Matches.StaleCleanupCron); err != nil {
			return fmt.Errorf("matches stale_cleanup_cron is invalid: %w", err)
		}
		if c.Matches.StaleAfter <= 0 {
			return fmt.Errorf("matches stale_after must be positive when cleanup is scheduled")
		}
	}

	if c.RateLimit.WriteMaxPerHour <= 0 || c.RateLimit.WriteMaxIPPerHour <= 0 {
		return fmt.Errorf("rate limit hourly maximums must be positive")
	}
	if c.RateLimit.WriteCooldown < 0 {
		return fmt.Errorf("rate limit write_cooldown must not be negative")
	}

	if len(c.Locale.Supported) == 0 {
		return fmt.Errorf("at least one supported locale is required")
	}
	for _, tag := range append([]string{c.Locale.Default}, c.Locale.Supported...) {
		if _, err := language.Parse(tag); err != nil {
			return fmt.Errorf("invalid locale %q: %w", tag, err)
		}
	}
	if _, err := time.LoadLocation(c.Locale.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid default timezone %q: %w", c.Locale.DefaultTimezone, err)
	}

	return nil
}
