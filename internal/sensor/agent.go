// Package sensor provides SensorProvider implementations for the triage
// engine. The actual I2C/GPIO acquisition lives in a separate local daemon;
// this package only talks to it, or simulates it for development.
package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// AgentConfig represents configuration for the sensor agent client.
type AgentConfig struct {
	BaseURL   string        `json:"base_url"`
	Timeout   time.Duration `json:"timeout"`
	RateLimit int           `json:"rate_limit"` // requests per second
}

// AgentProvider reads vitals from the local sensor-acquisition daemon over
// HTTP. Any failure to obtain a reading is a hardware-unavailable condition;
// no fallback reading is substituted.
type AgentProvider struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
}

// NewAgentProvider creates a new sensor agent client.
func NewAgentProvider(config AgentConfig) *AgentProvider {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	rps := config.RateLimit
	if rps <= 0 {
		rps = 10
	}

	return &AgentProvider{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// agentReadingResponse is the wire format of the acquisition daemon.
type agentReadingResponse struct {
	Temperature     float64               `json:"temperature"`
	SpO2            int                   `json:"spo2"`
	HeartRate       *int                  `json:"heartRate"`
	BloodPressure   *domain.BloodPressure `json:"bloodPressure"`
	RespiratoryRate *int                  `json:"respiratoryRate"`
	Error           string                `json:"error,omitempty"`
}

// Read fetches one fresh reading from the daemon.
func (p *AgentProvider) Read(ctx context.Context) (*domain.SensorReading, error) {
	if err := p.rateLimit.Wait(ctx); err != nil {
		return nil, domain.NewHardwareUnavailable("sensor agent rate limit wait aborted", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/reading", nil)
	if err != nil {
		return nil, domain.NewHardwareUnavailable("building sensor agent request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewHardwareUnavailable("sensor agent unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, domain.NewHardwareUnavailable("reading sensor agent response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewHardwareUnavailable(
			fmt.Sprintf("sensor agent returned status %d", resp.StatusCode), nil)
	}

	var decoded agentReadingResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, domain.NewHardwareUnavailable("decoding sensor agent response", err)
	}
	if decoded.Error != "" {
		return nil, domain.NewHardwareUnavailable(decoded.Error, nil)
	}

	reading := &domain.SensorReading{
		Temperature:     decoded.Temperature,
		SpO2:            decoded.SpO2,
		HeartRate:       decoded.HeartRate,
		BloodPressure:   decoded.BloodPressure,
		RespiratoryRate: decoded.RespiratoryRate,
		IsSimulated:     false,
	}
	if err := reading.Validate(); err != nil {
		// A daemon emitting impossible values is a hardware fault, not
		// a client error.
		return nil, domain.NewHardwareUnavailable("sensor agent produced invalid reading", err)
	}

	return reading, nil
}
