// Package config loads application configuration from a YAML file,
// environment variables and built-in defaults, in ascending precedence of
// defaults < file < environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// Manager loads and validates configuration using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/smart-triage/")

	viper.SetEnvPrefix("TRIAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars suffice
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.request_timeout", "30s")
	viper.SetDefault("server.rate_limit_per_sec", 10)
	viper.SetDefault("server.rate_limit_burst", 20)
	viper.SetDefault("server.stream_interval", "2s")
	viper.SetDefault("server.allowed_origins_all", true)

	// Sensor defaults
	viper.SetDefault("sensor.source", "simulated")
	viper.SetDefault("sensor.agent_url", "http://localhost:9000")
	viper.SetDefault("sensor.timeout", "5s")
	viper.SetDefault("sensor.rate_limit", 10)
	viper.SetDefault("sensor.allow_client_readings", true)

	// Detector defaults
	viper.SetDefault("detector.enabled", true)
	viper.SetDefault("detector.sidecar_url", "http://localhost:8001")
	viper.SetDefault("detector.timeout", "10s")
	viper.SetDefault("detector.rate_limit", 5)
	viper.SetDefault("detector.confidence_threshold", 0.3)
	viper.SetDefault("detector.iou_threshold", 0.5)
	viper.SetDefault("detector.breaker_max_requests", 3)
	viper.SetDefault("detector.breaker_interval", "60s")
	viper.SetDefault("detector.breaker_timeout", "30s")
	viper.SetDefault("detector.cache_size", 1000)
	viper.SetDefault("detector.cache_ttl", "5m")
	viper.SetDefault("detector.redis_url", "")

	// History defaults
	viper.SetDefault("history.backend", "sqlite")
	viper.SetDefault("history.sqlite_path", "./data/triage.db")
	viper.SetDefault("history.postgres_url", "")
	viper.SetDefault("history.migrations_path", "./migrations")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetSensorConfig returns sensor acquisition configuration
func (m *Manager) GetSensorConfig() *domain.SensorConfig {
	return &m.config.Sensor
}

// GetDetectorConfig returns vision detector configuration
func (m *Manager) GetDetectorConfig() *domain.DetectorConfig {
	return &m.config.Detector
}

// GetHistoryConfig returns history store configuration
func (m *Manager) GetHistoryConfig() *domain.HistoryConfig {
	return &m.config.History
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimitPerSec <= 0 {
		return fmt.Errorf("server rate limit must be positive: %f", config.Server.RateLimitPerSec)
	}

	switch config.Sensor.Source {
	case "agent":
		if config.Sensor.AgentURL == "" {
			return fmt.Errorf("sensor agent URL is required when source is agent")
		}
	case "simulated":
	default:
		return fmt.Errorf("invalid sensor source: %s", config.Sensor.Source)
	}

	if config.Detector.Enabled && config.Detector.SidecarURL == "" {
		return fmt.Errorf("detector sidecar URL is required when detector is enabled")
	}
	if config.Detector.ConfidenceThreshold < 0 || config.Detector.ConfidenceThreshold > 1 {
		return fmt.Errorf("invalid detector confidence threshold: %f", config.Detector.ConfidenceThreshold)
	}

	switch config.History.Backend {
	case "sqlite":
		if config.History.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required when history backend is sqlite")
		}
	case "postgres":
		if config.History.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required when history backend is postgres")
		}
	case "disabled":
	default:
		return fmt.Errorf("invalid history backend: %s", config.History.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
