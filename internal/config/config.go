// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Monitor       MonitorConfig       `yaml:"monitor"`
	Scrape        ScrapeConfig        `yaml:"scrape"`
	DLQ           DLQConfig           `yaml:"dlq"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Sources       []SourceConfig      `yaml:"sources"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// MonitorConfig defines the check-cycle scheduling behavior.
type MonitorConfig struct {
	CheckInterval      time.Duration `yaml:"check_interval"`
	ErrorRetryInterval time.Duration `yaml:"error_retry_interval"`
	AlertCooldown      time.Duration `yaml:"alert_cooldown"`
	HistoryRetention   time.Duration `yaml:"history_retention"`
	CleanupEveryCycles int           `yaml:"cleanup_every_cycles"`
}

// ScrapeConfig defines HTTP fetch and per-source resilience settings.
type ScrapeConfig struct {
	DelayMin       time.Duration `yaml:"delay_min"`
	DelayMax       time.Duration `yaml:"delay_max"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryBase      time.Duration `yaml:"retry_base"`
	RespectRobots  bool          `yaml:"respect_robots"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig defines circuit breaker thresholds.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `yaml:"recovery_timeout"`
}

// DLQConfig defines dead-letter queue retry behavior.
type DLQConfig struct {
	MaxRetries    int           `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool    `yaml:"enabled"`
	WebhookURL string  `yaml:"webhook_url"`
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
}

// SourceConfig defines one retailer source.
type SourceConfig struct {
	Key     string `yaml:"key"`
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	Enabled *bool  `yaml:"enabled"`
}

// IsEnabled reports whether the source should be checked. Sources are
// enabled unless explicitly disabled.
func (s *SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyMonitorDefaults(&cfg.Monitor)
	applyScrapeDefaults(&cfg.Scrape)
	applyDLQDefaults(&cfg.DLQ)
	applyNotificationDefaults(&cfg.Notifications)
	applyLoggingDefaults(&cfg.Logging)
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}
}

// DefaultSources returns the built-in retailer set.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Key: "eb_games", Name: "EB Games", BaseURL: "https://www.ebgames.com.au"},
		{Key: "jb_hifi", Name: "JB Hi-Fi", BaseURL: "https://www.jbhifi.com.au"},
		{Key: "target_au", Name: "Target", BaseURL: "https://www.target.com.au"},
		{Key: "big_w", Name: "Big W", BaseURL: "https://www.bigw.com.au"},
		{Key: "kmart", Name: "Kmart", BaseURL: "https://www.kmart.com.au"},
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyMonitorDefaults(m *MonitorConfig) {
	if m.CheckInterval == 0 {
		m.CheckInterval = 2 * time.Minute
	}
	if m.ErrorRetryInterval == 0 {
		m.ErrorRetryInterval = time.Minute
	}
	if m.AlertCooldown == 0 {
		m.AlertCooldown = 5 * time.Minute
	}
	if m.HistoryRetention == 0 {
		m.HistoryRetention = 30 * 24 * time.Hour
	}
	if m.CleanupEveryCycles == 0 {
		// Once a day at the default two-minute interval.
		m.CleanupEveryCycles = 720
	}
}

func applyScrapeDefaults(s *ScrapeConfig) {
	if s.DelayMin == 0 {
		s.DelayMin = 3 * time.Second
	}
	if s.DelayMax == 0 {
		s.DelayMax = 7 * time.Second
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = 30 * time.Second
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = 3
	}
	if s.RetryBase == 0 {
		s.RetryBase = time.Second
	}
	if s.Breaker.FailureThreshold == 0 {
		s.Breaker.FailureThreshold = 5
	}
	if s.Breaker.RecoveryTimeout == 0 {
		s.Breaker.RecoveryTimeout = 5 * time.Minute
	}
}

func applyDLQDefaults(d *DLQConfig) {
	if d.MaxRetries == 0 {
		d.MaxRetries = 3
	}
	if d.RetryInterval == 0 {
		d.RetryInterval = 5 * time.Minute
	}
	if d.RetryDelay == 0 {
		d.RetryDelay = 5 * time.Minute
	}
}

func applyNotificationDefaults(n *NotificationsConfig) {
	if n.Discord.PerSecond == 0 {
		n.Discord.PerSecond = 1.0
	}
	if n.Discord.Burst == 0 {
		n.Discord.Burst = 5
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.Scrape.DelayMin > cfg.Scrape.DelayMax {
		errs = append(errs, fmt.Errorf(
			"scrape.delay_min (%s) must not exceed scrape.delay_max (%s)",
			cfg.Scrape.DelayMin, cfg.Scrape.DelayMax,
		))
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf(
			"notifications.discord.webhook_url is required when discord is enabled",
		))
	}

	seen := make(map[string]struct{}, len(cfg.Sources))
	for i := range cfg.Sources {
		s := &cfg.Sources[i]
		if s.Key == "" {
			errs = append(errs, fmt.Errorf("sources[%d].key is required", i))
			continue
		}
		if _, dup := seen[s.Key]; dup {
			errs = append(errs, fmt.Errorf("duplicate source key %q", s.Key))
		}
		seen[s.Key] = struct{}{}
		if s.BaseURL == "" {
			errs = append(errs, fmt.Errorf("sources[%d].base_url is required", i))
		}
	}

	return errors.Join(errs...)
}
