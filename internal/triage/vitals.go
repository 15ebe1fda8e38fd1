// Package triage implements the risk-fusion decision core: the vital-sign
// threshold classifier, the detection-to-condition mapper, the vision
// aggregator and the escalation-only fusion engine. Everything in this
// package is a pure function over immutable inputs and is safe to call
// concurrently.
package triage

import (
	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// Symptom tags contributed by the vital-sign threshold rules.
const (
	SymptomHighFever          = "High Fever"
	SymptomFever              = "Fever"
	SymptomSevereHypoxemia    = "Severe Hypoxemia"
	SymptomHypoxemia          = "Hypoxemia"
	SymptomTachycardia        = "Tachycardia"
	SymptomBradycardia        = "Bradycardia"
	SymptomHypertensiveCrisis = "Hypertensive Crisis"
	SymptomHypertension       = "Hypertension"
	SymptomTachypnea          = "Tachypnea"
	SymptomBradypnea          = "Bradypnea"
)

// Vital-sign thresholds. Single source of truth: every rule lives here
// once, with inclusive lower bounds as documented per rule.
const (
	highFeverThreshold = 38.0 // temperature >= 38.0C
	feverThreshold     = 37.5 // 37.5 <= temperature < 38.0

	severeHypoxemiaThreshold = 90 // spo2 < 90
	hypoxemiaThreshold       = 95 // 90 <= spo2 < 95

	tachycardiaThreshold = 120 // heart rate > 120
	bradycardiaThreshold = 50  // heart rate < 50

	crisisSystolic       = 180 // systolic >= 180 or
	crisisDiastolic      = 120 // diastolic >= 120
	hypertensionSystolic = 140 // systolic >= 140 or
	hypertensionDiastolic = 90 // diastolic >= 90

	tachypneaThreshold = 30 // respiratory rate > 30
	bradypneaThreshold = 12 // respiratory rate < 12
)

// ClassifyVitals maps a validated sensor reading to the symptom tags whose
// rules fired and the maximum risk tier across those rules. Rules are
// independent; absent optional vitals fire nothing and never depress the
// tier. The one exception is blood pressure, where a hypertensive crisis
// suppresses the plain hypertension symptom on the same reading.
func ClassifyVitals(reading *domain.SensorReading) ([]string, domain.RiskTier) {
	symptoms := make([]string, 0, 4)
	tier := domain.RiskLow

	fire := func(symptom string, candidate domain.RiskTier) {
		symptoms = append(symptoms, symptom)
		tier = tier.Escalate(candidate)
	}

	switch {
	case reading.Temperature >= highFeverThreshold:
		fire(SymptomHighFever, domain.RiskHigh)
	case reading.Temperature >= feverThreshold:
		fire(SymptomFever, domain.RiskMedium)
	}

	switch {
	case reading.SpO2 < severeHypoxemiaThreshold:
		fire(SymptomSevereHypoxemia, domain.RiskCritical)
	case reading.SpO2 < hypoxemiaThreshold:
		fire(SymptomHypoxemia, domain.RiskHigh)
	}

	if hr := reading.HeartRate; hr != nil {
		switch {
		case *hr > tachycardiaThreshold:
			fire(SymptomTachycardia, domain.RiskMedium)
		case *hr < bradycardiaThreshold:
			fire(SymptomBradycardia, domain.RiskMedium)
		}
	}

	if bp := reading.BloodPressure; bp != nil {
		switch {
		case bp.Systolic >= crisisSystolic || bp.Diastolic >= crisisDiastolic:
			fire(SymptomHypertensiveCrisis, domain.RiskCritical)
		case bp.Systolic >= hypertensionSystolic || bp.Diastolic >= hypertensionDiastolic:
			fire(SymptomHypertension, domain.RiskMedium)
		}
	}

	if rr := reading.RespiratoryRate; rr != nil {
		switch {
		case *rr > tachypneaThreshold:
			fire(SymptomTachypnea, domain.RiskMedium)
		case *rr < bradypneaThreshold:
			fire(SymptomBradypnea, domain.RiskMedium)
		}
	}

	return symptoms, tier
}
