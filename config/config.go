package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GIFTGUARD_SERVER_PORT.
const EnvPrefix = "GIFTGUARD"

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Repository RepositoryConfig `yaml:"repository"`
	Reminder   ReminderConfig   `yaml:"reminder"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Timezone   string           `yaml:"timezone" split_words:"true"`
	Location   *time.Location   `yaml:"-" ignored:"true"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port               int      `yaml:"port" split_words:"true"`
	RateLimitPerSec    float64  `yaml:"rate_limit_per_sec" split_words:"true"`
	RateLimitBurst     int      `yaml:"rate_limit_burst" split_words:"true"`
	CacheTTLSeconds    int      `yaml:"cache_ttl_seconds" split_words:"true"`
	ShutdownTimeoutSec int      `yaml:"shutdown_timeout_seconds" split_words:"true"`
	CORSAllowOrigins   []string `yaml:"cors_allow_origins" split_words:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Pretty bool   `yaml:"pretty" split_words:"true"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" split_words:"true"` // "postgres" or "sqlite"
	DSN                    string `yaml:"dsn" split_words:"true"`
	MaxOpenConns           int    `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns           int    `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" split_words:"true"`
	LogLevel               string `yaml:"log_level" split_words:"true"`
}

// RepositoryConfig selects where vouchers are kept.
type RepositoryConfig struct {
	// Backend is "memory" (seed data on every start) or "database".
	Backend string `yaml:"backend" split_words:"true"`
}

// ReminderConfig controls the expiry reminder loop.
type ReminderConfig struct {
	Enabled         bool          `yaml:"enabled" split_words:"true"`
	IntervalSeconds int           `yaml:"interval_seconds" split_words:"true"`
	Interval        time.Duration `yaml:"-" ignored:"true"`
	WithinDays      int           `yaml:"within_days" split_words:"true"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key" split_words:"true"`
	PrivateKey string `yaml:"vapid_private_key" split_words:"true"`
	Subject    string `yaml:"subject" split_words:"true"`
	TTL        int    `yaml:"ttl" split_words:"true"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size" split_words:"true"`
}

// Load reads the configuration from the given path, then applies
// GIFTGUARD_* environment overrides and defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	if cfg.Server.ShutdownTimeoutSec <= 0 {
		cfg.Server.ShutdownTimeoutSec = 5
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "giftguard.db"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Repository.Backend == "" {
		cfg.Repository.Backend = "memory"
	}

	if cfg.Reminder.IntervalSeconds <= 0 {
		cfg.Reminder.IntervalSeconds = 3600
	}
	cfg.Reminder.Interval = time.Duration(cfg.Reminder.IntervalSeconds) * time.Second
	if cfg.Reminder.WithinDays <= 0 {
		cfg.Reminder.WithinDays = 3
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Warn().Msg("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Seoul"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return err
	}
	cfg.Location = loc
	return nil
}
