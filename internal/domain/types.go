// Package domain contains the core business entities for the smart triage
// system: physiological sensor readings, risk tiers, vision detections and
// the consolidated triage verdict returned to callers.
package domain

import (
	"time"
)

// RiskTier represents the ordered risk severity of a triage evaluation.
// The order LOW < MEDIUM < HIGH < CRITICAL is total and is used for
// escalation comparisons; a tier is never downgraded once raised within
// a single evaluation.
type RiskTier string

const (
	RiskLow      RiskTier = "LOW"
	RiskMedium   RiskTier = "MEDIUM"
	RiskHigh     RiskTier = "HIGH"
	RiskCritical RiskTier = "CRITICAL"
)

// riskRanks defines the total order used for escalation.
var riskRanks = map[RiskTier]int{
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Rank returns the numeric position of the tier in the severity order.
// Unknown tiers rank below LOW so they can never escalate a verdict.
func (r RiskTier) Rank() int {
	return riskRanks[r]
}

// IsValid reports whether the tier is one of the four known severities.
func (r RiskTier) IsValid() bool {
	_, ok := riskRanks[r]
	return ok
}

// String returns the string representation of the tier.
func (r RiskTier) String() string {
	return string(r)
}

// Escalate returns the higher of the two tiers. This is the only way tiers
// are ever combined: either side may raise urgency, neither may lower it.
func (r RiskTier) Escalate(other RiskTier) RiskTier {
	if other.Rank() > r.Rank() {
		return other
	}
	return r
}

// Status returns the triage status corresponding to this tier.
// The mapping is bijective and shared by the vision-only and fused views.
func (r RiskTier) Status() TriageStatus {
	switch r {
	case RiskCritical:
		return StatusEmergency
	case RiskHigh:
		return StatusCriticalAttention
	case RiskMedium:
		return StatusWatch
	default:
		return StatusNormal
	}
}

// Message returns the human-readable summary for this tier.
func (r RiskTier) Message() string {
	switch r {
	case RiskCritical:
		return "Immediate emergency care needed"
	case RiskHigh:
		return "Immediate medical attention needed"
	case RiskMedium:
		return "Health monitoring needed"
	default:
		return "Condition within normal limits"
	}
}

// TriageStatus is the caller-facing rendering of a RiskTier.
type TriageStatus string

const (
	StatusNormal            TriageStatus = "NORMAL"
	StatusWatch             TriageStatus = "WATCH"
	StatusCriticalAttention TriageStatus = "CRITICAL_ATTENTION"
	StatusEmergency         TriageStatus = "EMERGENCY"
)

// IsValid reports whether the status is a known triage status.
func (s TriageStatus) IsValid() bool {
	switch s {
	case StatusNormal, StatusWatch, StatusCriticalAttention, StatusEmergency:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s TriageStatus) String() string {
	return string(s)
}

// AnalysisMethod identifies which signal channels contributed to a verdict.
type AnalysisMethod string

const (
	AnalysisSensorOnly      AnalysisMethod = "SENSOR_ONLY"
	AnalysisSensorAndVision AnalysisMethod = "SENSOR_AND_VISION"
)

// IsValid reports whether the analysis method is known.
func (m AnalysisMethod) IsValid() bool {
	return m == AnalysisSensorOnly || m == AnalysisSensorAndVision
}

// String returns the string representation of the method.
func (m AnalysisMethod) String() string {
	return string(m)
}

// ModelType identifies which detector variant produced a detection.
// GENERIC_FALLBACK marks output of a general-purpose person detector used
// when the specialized medical model is unavailable; its findings must
// never be conflated with true medical detections.
type ModelType string

const (
	ModelMedical         ModelType = "MEDICAL"
	ModelGenericFallback ModelType = "GENERIC_FALLBACK"
)

// IsValid reports whether the model type is known.
func (m ModelType) IsValid() bool {
	return m == ModelMedical || m == ModelGenericFallback
}

// String returns the string representation of the model type.
func (m ModelType) String() string {
	return string(m)
}

// BloodPressure is a systolic/diastolic pair in mmHg.
type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

// SensorReading is one immutable snapshot of physiological vitals.
// Temperature and SpO2 are always present; the remaining vitals may be
// absent, which means "not assessed" and never fires a classification rule.
type SensorReading struct {
	Temperature     float64        `json:"temperature"`
	SpO2            int            `json:"spo2"`
	HeartRate       *int           `json:"heartRate,omitempty"`
	BloodPressure   *BloodPressure `json:"bloodPressure,omitempty"`
	RespiratoryRate *int           `json:"respiratoryRate,omitempty"`
	IsSimulated     bool           `json:"isSimulated"`
}

// Validate rejects physiologically impossible readings. The classifier
// assumes validated input, so the boundary must fail loudly here rather
// than clamp silently.
func (r *SensorReading) Validate() error {
	if r == nil {
		return NewInvalidReading("reading", "sensor reading is required", nil)
	}
	if r.SpO2 < 0 || r.SpO2 > 100 {
		return NewInvalidReading("spo2", "must be between 0 and 100", r.SpO2)
	}
	if r.Temperature < 20.0 || r.Temperature > 45.0 {
		return NewInvalidReading("temperature", "must be between 20.0 and 45.0 Celsius", r.Temperature)
	}
	if r.HeartRate != nil && (*r.HeartRate < 0 || *r.HeartRate > 300) {
		return NewInvalidReading("heartRate", "must be between 0 and 300 bpm", *r.HeartRate)
	}
	if r.BloodPressure != nil {
		if r.BloodPressure.Systolic <= 0 || r.BloodPressure.Diastolic <= 0 {
			return NewInvalidReading("bloodPressure", "systolic and diastolic must be positive", *r.BloodPressure)
		}
	}
	if r.RespiratoryRate != nil && (*r.RespiratoryRate < 0 || *r.RespiratoryRate > 120) {
		return NewInvalidReading("respiratoryRate", "must be between 0 and 120 breaths/min", *r.RespiratoryRate)
	}
	return nil
}

// Detection is one raw detector finding: a labeled bounding box.
type Detection struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"`
}

// DetectionResult is the complete output of one detector invocation,
// tagged with the detector variant that produced it.
type DetectionResult struct {
	Detections []Detection `json:"detections"`
	ModelType  ModelType   `json:"modelType"`
}

// HealthCondition is a health finding mapped from a single visual detection.
// It is ephemeral: produced per detection and consumed immediately by the
// vision aggregator.
type HealthCondition struct {
	Name            string    `json:"condition"`
	Severity        RiskTier  `json:"severity"`
	Symptoms        []string  `json:"symptoms"`
	Recommendations []string  `json:"recommendations"`
	Confidence      float64   `json:"confidence"`
	ModelType       ModelType `json:"modelType"`
}

// VisionVerdict is the aggregated outcome of the visual analysis channel.
// Available=false means no image was supplied or the detector failed; it is
// a distinct state from "image analyzed, nothing detected".
type VisionVerdict struct {
	Available          bool         `json:"available"`
	RiskTier           RiskTier     `json:"riskLevel"`
	Status             TriageStatus `json:"status"`
	Message            string       `json:"message"`
	Symptoms           []string     `json:"symptoms"`
	Recommendations    []string     `json:"recommendations"`
	DetectedConditions []string     `json:"detectedConditions"`
	ModelType          ModelType    `json:"modelType,omitempty"`
}

// TriageVerdict is the immutable consolidated output of one evaluation.
type TriageVerdict struct {
	Reading                *SensorReading `json:"reading"`
	Symptoms               []string       `json:"symptoms"`
	Status                 TriageStatus   `json:"status"`
	Message                string         `json:"message"`
	RiskTier               RiskTier       `json:"riskLevel"`
	Recommendations        []string       `json:"recommendations"`
	VisionInsights         []string       `json:"visionInsights"`
	DetectedConditionNames []string       `json:"detectedConditionNames"`
	AnalysisMethod         AnalysisMethod `json:"analysisMethod"`
	Confidence             float64        `json:"confidence"`
	EvaluatedAt            time.Time      `json:"evaluatedAt"`
}

// LogFields returns structured logging fields for the evaluation audit trail.
func (v *TriageVerdict) LogFields() map[string]any {
	return map[string]any{
		"risk_level":      v.RiskTier.String(),
		"status":          v.Status.String(),
		"analysis_method": v.AnalysisMethod.String(),
		"confidence":      v.Confidence,
		"symptom_count":   len(v.Symptoms),
		"is_simulated":    v.Reading != nil && v.Reading.IsSimulated,
	}
}
