package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Rhyred/smart-triage-system/internal/api"
	"github.com/Rhyred/smart-triage-system/internal/config"
	"github.com/Rhyred/smart-triage-system/internal/database"
	"github.com/Rhyred/smart-triage-system/internal/domain"
	"github.com/Rhyred/smart-triage-system/internal/history"
	"github.com/Rhyred/smart-triage-system/internal/sensor"
	"github.com/Rhyred/smart-triage-system/internal/triage"
	"github.com/Rhyred/smart-triage-system/internal/vision"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := buildLogger(cfg.Logging)

	logger.WithFields(logrus.Fields{
		"host":            cfg.Server.Host,
		"port":            cfg.Server.Port,
		"sensor_source":   cfg.Sensor.Source,
		"history_backend": cfg.History.Backend,
	}).Info("Starting smart triage server")

	store, err := buildStore(cfg.History, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize history store")
	}
	defer store.Close()

	provider := buildProvider(cfg.Sensor, logger)

	analyzer, cleanup, err := buildAnalyzer(cfg.Detector, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize vision analyzer")
	}
	if cleanup != nil {
		defer cleanup()
	}

	engine := triage.NewEngine(logger)
	server := api.NewServer(cfg, engine, provider, analyzer, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.WithField("signal", sig.String()).Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

// buildLogger configures the application logger from config.
func buildLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// buildStore selects and initializes the verdict history backend.
func buildStore(cfg domain.HistoryConfig, logger *logrus.Logger) (history.Store, error) {
	switch cfg.Backend {
	case "postgres":
		migrator, err := database.NewMigrator(cfg.PostgresURL, cfg.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		if err := migrator.Up(); err != nil {
			migrator.Close()
			return nil, err
		}
		if err := migrator.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close migrator")
		}
		return history.NewPostgresStoreFromURL(cfg.PostgresURL)
	case "disabled":
		logger.Info("Verdict history is disabled")
		return history.NewDisabledStore(), nil
	default:
		return history.NewSQLiteStore(cfg.SQLitePath)
	}
}

// buildProvider selects the sensor acquisition source.
func buildProvider(cfg domain.SensorConfig, logger *logrus.Logger) domain.SensorProvider {
	if cfg.Source == "agent" {
		logger.WithField("agent_url", cfg.AgentURL).Info("Using hardware sensor agent")
		return sensor.NewAgentProvider(sensor.AgentConfig{
			BaseURL:   cfg.AgentURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
		})
	}

	logger.Warn("Using simulated sensor readings")
	return sensor.NewSimulatedProvider(0)
}

// buildAnalyzer assembles the detector chain: sidecar client wrapped in a
// circuit breaker wrapped in a cache. Returns a nil analyzer when the
// detector is disabled, which the server treats as vision-absent.
func buildAnalyzer(cfg domain.DetectorConfig, logger *logrus.Logger) (*vision.Analyzer, func(), error) {
	if !cfg.Enabled {
		logger.Info("Vision detector is disabled")
		return nil, nil, nil
	}

	client := vision.NewYOLOClient(vision.ClientConfig{
		BaseURL:             cfg.SidecarURL,
		Timeout:             cfg.Timeout,
		RateLimit:           cfg.RateLimit,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		IoUThreshold:        cfg.IoUThreshold,
	})

	resilient := vision.NewResilientDetector(client, vision.BreakerConfig{
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
	}, logger)

	cached, err := vision.NewCachedDetector(resilient, vision.CacheConfig{
		Size:     cfg.CacheSize,
		TTL:      cfg.CacheTTL,
		RedisURL: cfg.RedisURL,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := cached.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close detector cache")
		}
	}

	return vision.NewAnalyzer(cached, logger), cleanup, nil
}
