package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// Confidence model: hardware-backed readings start higher than simulated
// ones, an available vision channel adds a fixed bonus, and the result is
// capped below full certainty.
const (
	baseConfidenceHardware  = 0.8
	baseConfidenceSimulated = 0.7
	visionConfidenceBonus   = 0.1
	confidenceCap           = 0.95
)

// baseRecommendations is the fixed tier-to-recommendation table applied to
// every verdict before channel-specific recommendations are merged in.
var baseRecommendations = map[domain.RiskTier][]string{
	domain.RiskLow: {
		"maintain healthy lifestyle",
		"routine checkups",
	},
	domain.RiskMedium: {
		"consult a doctor",
		"adequate rest",
		"monitor symptoms",
	},
	domain.RiskHigh: {
		"visit emergency department",
		"periodic monitoring",
		"prepare medical history",
	},
	domain.RiskCritical: {
		"contact medical team immediately",
		"continuous vital monitoring",
		"prepare resuscitation equipment",
	},
}

// Engine is the risk-fusion orchestrator. It is stateless across requests:
// each Evaluate call is an independent pure computation plus audit logging.
type Engine struct {
	logger *logrus.Logger
}

// NewEngine creates a new fusion engine.
func NewEngine(logger *logrus.Logger) *Engine {
	return &Engine{logger: logger}
}

// Evaluate classifies the sensor reading, merges in the vision verdict when
// one is available, and produces the consolidated triage verdict. Fusion is
// escalation-only: the final tier is exactly the maximum of the sensor tier
// and the vision tier, so neither channel's silence can downgrade urgency.
// A nil or unavailable vision verdict yields a sensor-only evaluation.
func (e *Engine) Evaluate(reading *domain.SensorReading, vision *domain.VisionVerdict) (*domain.TriageVerdict, error) {
	start := time.Now()

	if err := reading.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to evaluate: %w", err)
	}

	sensorSymptoms, sensorTier := ClassifyVitals(reading)

	finalTier := sensorTier
	symptoms := sensorSymptoms
	channelRecommendations := []string{}
	visionInsights := []string{}
	method := domain.AnalysisSensorOnly

	if vision != nil && vision.Available {
		method = domain.AnalysisSensorAndVision
		finalTier = sensorTier.Escalate(vision.RiskTier)
		symptoms = append(append([]string(nil), sensorSymptoms...), vision.Symptoms...)
		channelRecommendations = vision.Recommendations
		if len(vision.DetectedConditions) > 0 {
			visionInsights = append(visionInsights,
				"Visual analysis detected: "+strings.Join(vision.DetectedConditions, ", "))
		}
	}

	recommendations := append(append([]string(nil), baseRecommendations[finalTier]...), channelRecommendations...)

	verdict := &domain.TriageVerdict{
		Reading:                reading,
		Symptoms:               dedupeSorted(symptoms),
		Status:                 finalTier.Status(),
		Message:                finalTier.Message(),
		RiskTier:               finalTier,
		Recommendations:        dedupeSorted(recommendations),
		VisionInsights:         visionInsights,
		DetectedConditionNames: detectedConditionNames(vision),
		AnalysisMethod:         method,
		Confidence:             confidence(reading, vision),
		EvaluatedAt:            time.Now().UTC(),
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields(verdict.LogFields())).
			WithField("processing_time", time.Since(start)).
			Info("Triage evaluation completed")
	}

	return verdict, nil
}

// detectedConditionNames exposes the vision channel's named conditions
// distinctly from the symptom set.
func detectedConditionNames(vision *domain.VisionVerdict) []string {
	if vision == nil || !vision.Available {
		return []string{}
	}
	return append([]string(nil), vision.DetectedConditions...)
}

// confidence computes the verdict confidence from reading provenance and
// vision availability.
func confidence(reading *domain.SensorReading, vision *domain.VisionVerdict) float64 {
	c := baseConfidenceHardware
	if reading.IsSimulated {
		c = baseConfidenceSimulated
	}
	if vision != nil && vision.Available {
		c += visionConfidenceBonus
	}
	if c > confidenceCap {
		c = confidenceCap
	}
	return c
}
