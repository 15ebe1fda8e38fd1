package domain

import (
	"time"
)

// Config represents the main application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Sensor   SensorConfig   `mapstructure:"sensor"`
	Detector DetectorConfig `mapstructure:"detector"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RateLimitPerSec   float64       `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst    int           `mapstructure:"rate_limit_burst"`
	StreamInterval    time.Duration `mapstructure:"stream_interval"`
	AllowedOriginsAll bool          `mapstructure:"allowed_origins_all"`
}

// SensorConfig represents the sensor acquisition layer configuration.
// Source selects the provider: "agent" talks to the local hardware daemon,
// "simulated" produces flagged synthetic readings for development.
type SensorConfig struct {
	Source              string        `mapstructure:"source"`
	AgentURL            string        `mapstructure:"agent_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	RateLimit           int           `mapstructure:"rate_limit"`
	AllowClientReadings bool          `mapstructure:"allow_client_readings"`
}

// DetectorConfig represents the vision detector configuration.
type DetectorConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	SidecarURL          string        `mapstructure:"sidecar_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	RateLimit           int           `mapstructure:"rate_limit"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	IoUThreshold        float64       `mapstructure:"iou_threshold"`
	BreakerMaxRequests  uint32        `mapstructure:"breaker_max_requests"`
	BreakerInterval     time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout      time.Duration `mapstructure:"breaker_timeout"`
	CacheSize           int           `mapstructure:"cache_size"`
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	RedisURL            string        `mapstructure:"redis_url"`
}

// HistoryConfig represents the verdict history store configuration.
// Backend is one of "sqlite", "postgres" or "disabled".
type HistoryConfig struct {
	Backend        string `mapstructure:"backend"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	PostgresURL    string `mapstructure:"postgres_url"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
