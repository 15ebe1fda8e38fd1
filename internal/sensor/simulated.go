package sensor

import (
	"context"
	"math/rand"
	"sync"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// SimulatedProvider produces synthetic readings for development machines
// without the sensor rig. Every reading is flagged IsSimulated so the
// engine lowers its base confidence accordingly.
type SimulatedProvider struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProvider creates a simulated provider seeded for variety.
func NewSimulatedProvider(seed int64) *SimulatedProvider {
	return &SimulatedProvider{rng: rand.New(rand.NewSource(seed))}
}

// Read produces one synthetic reading in mostly-normal ranges.
func (p *SimulatedProvider) Read(ctx context.Context) (*domain.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewHardwareUnavailable("simulated read cancelled", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	hr := 60 + p.rng.Intn(55)
	rr := 12 + p.rng.Intn(12)
	return &domain.SensorReading{
		Temperature: 36.0 + p.rng.Float64()*3.0,
		SpO2:        95 + p.rng.Intn(6),
		HeartRate:   &hr,
		BloodPressure: &domain.BloodPressure{
			Systolic:  110 + p.rng.Intn(40),
			Diastolic: 70 + p.rng.Intn(30),
		},
		RespiratoryRate: &rr,
		IsSimulated:     true,
	}, nil
}
