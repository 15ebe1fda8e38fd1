package sensor

import (
	"context"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// StaticProvider returns a fixed reading or error on every Read. Used in
// tests and for wiring handler-level failure paths.
type StaticProvider struct {
	Reading *domain.SensorReading
	Err     error
}

// Read returns the configured reading or error.
func (p *StaticProvider) Read(ctx context.Context) (*domain.SensorReading, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	// Copy so callers can never mutate the template reading.
	reading := *p.Reading
	return &reading, nil
}
