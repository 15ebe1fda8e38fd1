package triage

import (
	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// PersonDetectedLabel is the relabeled output of the generic fallback
// detector. It confirms patient presence only and is never a medical finding.
const PersonDetectedLabel = "person_detected"

// conditionEntry is one row of the label-to-condition lookup table.
type conditionEntry struct {
	name            string
	severity        domain.RiskTier
	symptoms        []string
	recommendations []string
}

// healthConditionTable maps the medical model's detection labels to health
// conditions. Unknown labels map to nothing and are filtered silently.
var healthConditionTable = map[string]conditionEntry{
	"normal_posture": {
		name:            "Normal Posture",
		severity:        domain.RiskLow,
		symptoms:        []string{},
		recommendations: []string{"maintain good posture"},
	},
	"abnormal_posture": {
		name:            "Abnormal Posture",
		severity:        domain.RiskMedium,
		symptoms:        []string{"abnormal body posture"},
		recommendations: []string{"correct posture", "consult a physiotherapist"},
	},
	"fatigue_signs": {
		name:            "Fatigue Signs",
		severity:        domain.RiskMedium,
		symptoms:        []string{"physical fatigue", "tired eyes", "exhausted expression"},
		recommendations: []string{"get adequate rest", "stay hydrated", "light exercise"},
	},
	"distress_signs": {
		name:            "Distress Signs",
		severity:        domain.RiskHigh,
		symptoms:        []string{"anxiety", "tension", "visible discomfort"},
		recommendations: []string{"calm the patient", "contact family", "consult a psychologist"},
	},
	"pain_expression": {
		name:            "Pain Expression",
		severity:        domain.RiskHigh,
		symptoms:        []string{"physical pain", "discomfort", "grimacing"},
		recommendations: []string{"administer analgesics", "identify pain source", "monitor condition"},
	},
	"breathing_difficulty": {
		name:            "Breathing Difficulty",
		severity:        domain.RiskCritical,
		symptoms:        []string{"shortness of breath", "rapid breathing", "audible breathing"},
		recommendations: []string{"administer oxygen", "prepare ventilator", "contact emergency medical team"},
	},
}

// MapDetection maps one visual detection label to a health condition.
// The generic fallback model contributes at most a low-severity presence
// confirmation; its label is tagged so downstream consumers never mistake
// it for a medical finding. Returns false for unknown labels.
func MapDetection(label string, confidence float64, modelType domain.ModelType) (*domain.HealthCondition, bool) {
	if label == PersonDetectedLabel {
		return &domain.HealthCondition{
			Name:            "Patient Detected",
			Severity:        domain.RiskLow,
			Symptoms:        []string{},
			Recommendations: []string{"continue visual examination", "check vital signs"},
			Confidence:      confidence,
			ModelType:       domain.ModelGenericFallback,
		}, true
	}

	entry, ok := healthConditionTable[label]
	if !ok {
		return nil, false
	}

	return &domain.HealthCondition{
		Name:            entry.name,
		Severity:        entry.severity,
		Symptoms:        append([]string(nil), entry.symptoms...),
		Recommendations: append([]string(nil), entry.recommendations...),
		Confidence:      confidence,
		ModelType:       modelType,
	}, true
}
