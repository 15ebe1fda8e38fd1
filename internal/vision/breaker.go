package vision

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// BreakerConfig represents circuit breaker configuration for the detector.
type BreakerConfig struct {
	MaxRequests uint32        `json:"max_requests"`
	Interval    time.Duration `json:"interval"`
	Timeout     time.Duration `json:"timeout"`
}

// ResilientDetector wraps a Detector in a circuit breaker so a flapping or
// dead inference sidecar fails fast instead of stalling every request.
// An open breaker surfaces as a DetectorError, which the analyzer absorbs
// into a sensor-only evaluation.
type ResilientDetector struct {
	inner   domain.Detector
	breaker *gobreaker.CircuitBreaker
}

// NewResilientDetector creates a circuit-breaker-protected detector.
func NewResilientDetector(inner domain.Detector, config BreakerConfig, logger *logrus.Logger) *ResilientDetector {
	maxRequests := config.MaxRequests
	if maxRequests == 0 {
		maxRequests = 5
	}
	interval := config.Interval
	if interval == 0 {
		interval = 30 * time.Second
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Detector",
		MaxRequests: maxRequests,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("Detector circuit breaker state changed")
			}
		},
	})

	return &ResilientDetector{inner: inner, breaker: breaker}
}

// Detect runs the wrapped detector through the circuit breaker.
func (d *ResilientDetector) Detect(ctx context.Context, image []byte) (*domain.DetectionResult, error) {
	result, err := d.breaker.Execute(func() (interface{}, error) {
		return d.inner.Detect(ctx, image)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, domain.NewDetectorError("circuit breaker", err)
		}
		return nil, err
	}
	return result.(*domain.DetectionResult), nil
}

// State returns the current breaker state for health reporting.
func (d *ResilientDetector) State() gobreaker.State {
	return d.breaker.State()
}

// Counts returns breaker statistics for health reporting.
func (d *ResilientDetector) Counts() gobreaker.Counts {
	return d.breaker.Counts()
}
