package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultLiveURL     = "https://jsonplaceholder.typicode.com/todos/1"
	DefaultFixtureName = "fake_response"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	LiveURL            string        `mapstructure:"live_url"`
	FixtureName        string        `mapstructure:"fixture_name"`
	FixturesDir        string        `mapstructure:"fixtures_dir"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	UserAgent          string        `mapstructure:"user_agent"`
	Accept             string        `mapstructure:"accept"`

	PublishersFile string `mapstructure:"publishers_file"`

	JournalType            string        `mapstructure:"journal_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	JournalTTLSeconds      int64         `mapstructure:"journal_ttl_seconds"`
	JournalCleanupSeconds  int64         `mapstructure:"journal_cleanup_interval_seconds"`
	JournalTTL             time.Duration `mapstructure:"-"`
	JournalCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "samvad-title-fetcher")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("live_url", DefaultLiveURL)
	v.SetDefault("fixture_name", DefaultFixtureName)
	v.SetDefault("fixtures_dir", "")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("user_agent", "samvad-title-fetcher/1.0")
	v.SetDefault("accept", "application/json")
	v.SetDefault("publishers_file", "")
	v.SetDefault("journal_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/journal.db")
	v.SetDefault("journal_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("journal_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.LiveURL = strings.TrimSpace(cfg.LiveURL)
	cfg.FixtureName = strings.TrimSpace(cfg.FixtureName)
	if cfg.FixtureName == "" {
		return nil, fmt.Errorf("invalid fixture_name (must not be empty)")
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.JournalTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_ttl_seconds (must be positive seconds)")
	}
	if cfg.JournalCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid journal_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.JournalTTL = time.Duration(cfg.JournalTTLSeconds) * time.Second
	cfg.JournalCleanupInterval = time.Duration(cfg.JournalCleanupSeconds) * time.Second

	return &cfg, nil
}
