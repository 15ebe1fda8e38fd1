package sensor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

func TestAgentProvider_Read(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reading", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"temperature": 36.9,
			"spo2": 97,
			"heartRate": 74,
			"bloodPressure": {"systolic": 118, "diastolic": 76},
			"respiratoryRate": 15
		}`))
	}))
	defer server.Close()

	provider := NewAgentProvider(AgentConfig{BaseURL: server.URL, Timeout: time.Second})
	reading, err := provider.Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 36.9, reading.Temperature)
	assert.Equal(t, 97, reading.SpO2)
	require.NotNil(t, reading.HeartRate)
	assert.Equal(t, 74, *reading.HeartRate)
	require.NotNil(t, reading.BloodPressure)
	assert.Equal(t, 118, reading.BloodPressure.Systolic)
	assert.False(t, reading.IsSimulated)
}

func TestAgentProvider_DaemonErrorIsHardwareFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "MLX90614 not detected on I2C bus"}`))
	}))
	defer server.Close()

	provider := NewAgentProvider(AgentConfig{BaseURL: server.URL, Timeout: time.Second})
	reading, err := provider.Read(context.Background())

	require.Error(t, err)
	assert.Nil(t, reading)
	assert.True(t, domain.IsHardwareUnavailable(err))
}

func TestAgentProvider_UnreachableDaemon(t *testing.T) {
	provider := NewAgentProvider(AgentConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	})

	_, err := provider.Read(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsHardwareUnavailable(err))
}

func TestAgentProvider_InvalidReadingIsHardwareFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"temperature": 36.9, "spo2": 250}`))
	}))
	defer server.Close()

	provider := NewAgentProvider(AgentConfig{BaseURL: server.URL, Timeout: time.Second})
	_, err := provider.Read(context.Background())

	require.Error(t, err)
	assert.True(t, domain.IsHardwareUnavailable(err),
		"impossible daemon output is a hardware fault, not a caller error")
}

func TestSimulatedProvider_ReadingsAreFlaggedAndValid(t *testing.T) {
	provider := NewSimulatedProvider(42)

	for i := 0; i < 50; i++ {
		reading, err := provider.Read(context.Background())
		require.NoError(t, err)
		assert.True(t, reading.IsSimulated)
		assert.NoError(t, reading.Validate())
	}
}

func TestSimulatedProvider_CancelledContext(t *testing.T) {
	provider := NewSimulatedProvider(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Read(ctx)

	require.Error(t, err)
	assert.True(t, domain.IsHardwareUnavailable(err))
}

func TestStaticProvider_CopiesReading(t *testing.T) {
	template := &domain.SensorReading{Temperature: 36.8, SpO2: 98}
	provider := &StaticProvider{Reading: template}

	first, err := provider.Read(context.Background())
	require.NoError(t, err)
	first.SpO2 = 10

	second, err := provider.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 98, second.SpO2)
}
