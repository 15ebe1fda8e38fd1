// Package history provides persistent storage of triage verdicts for audit
// and review. The engine itself stays stateless; the HTTP boundary records
// each verdict after evaluation, and a disabled store is fully supported.
package history

import (
	"context"
	"io"
	"time"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// Record is one stored triage evaluation.
type Record struct {
	ID                 int64                 `json:"id,omitempty"`
	RequestID          string                `json:"request_id"`
	Reading            *domain.SensorReading `json:"reading"`
	RiskLevel          domain.RiskTier       `json:"risk_level"`
	Status             domain.TriageStatus   `json:"status"`
	Symptoms           []string              `json:"symptoms"`
	DetectedConditions []string              `json:"detected_conditions"`
	AnalysisMethod     domain.AnalysisMethod `json:"analysis_method"`
	Confidence         float64               `json:"confidence"`
	CreatedAt          time.Time             `json:"created_at"`
}

// NewRecord builds a history record from a verdict.
func NewRecord(requestID string, verdict *domain.TriageVerdict) *Record {
	return &Record{
		RequestID:          requestID,
		Reading:            verdict.Reading,
		RiskLevel:          verdict.RiskTier,
		Status:             verdict.Status,
		Symptoms:           verdict.Symptoms,
		DetectedConditions: verdict.DetectedConditionNames,
		AnalysisMethod:     verdict.AnalysisMethod,
		Confidence:         verdict.Confidence,
		CreatedAt:          verdict.EvaluatedAt,
	}
}

// Store defines the interface for verdict history storage.
type Store interface {
	// Save persists one record and assigns its ID.
	Save(ctx context.Context, record *Record) error

	// Get retrieves a record by ID. Returns (nil, nil) when absent.
	Get(ctx context.Context, id int64) (*Record, error)

	// List returns records newest-first with pagination.
	List(ctx context.Context, limit, offset int) ([]*Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int64, error)

	// Delete removes a record by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON writes all records as a JSON document.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close releases store resources.
	Close() error
}

// Export is the JSON export envelope.
type Export struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Records    []*Record `json:"records"`
}
