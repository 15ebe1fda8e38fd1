package vision

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Rhyred/smart-triage-system/internal/domain"
	"github.com/Rhyred/smart-triage-system/internal/triage"
)

// Analyzer runs the full visual-analysis pipeline: detect, map each
// detection to a health condition, aggregate into a vision verdict. The
// detector is injected per instance; there is no ambient global analyzer.
type Analyzer struct {
	detector domain.Detector
	logger   *logrus.Logger
}

// NewAnalyzer creates an analyzer around the given detector.
func NewAnalyzer(detector domain.Detector, logger *logrus.Logger) *Analyzer {
	return &Analyzer{detector: detector, logger: logger}
}

// Analyze returns the vision verdict for an image, or nil when the visual
// channel contributed nothing: no image, no detector, or a detector
// failure. A nil verdict means "vision absent" and is never an error; the
// evaluation simply proceeds sensor-only.
func (a *Analyzer) Analyze(ctx context.Context, image []byte) *domain.VisionVerdict {
	if len(image) == 0 || a.detector == nil {
		return nil
	}

	result, err := a.detector.Detect(ctx, image)
	if err != nil {
		if a.logger != nil {
			a.logger.WithError(err).Warn("Visual analysis failed, continuing sensor-only")
		}
		return nil
	}

	conditions := make([]domain.HealthCondition, 0, len(result.Detections))
	for _, detection := range result.Detections {
		condition, ok := triage.MapDetection(detection.Label, detection.Confidence, result.ModelType)
		if !ok {
			continue
		}
		conditions = append(conditions, *condition)
	}

	verdict := triage.AggregateConditions(conditions)

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"detections": len(result.Detections),
			"conditions": len(conditions),
			"risk_level": verdict.RiskTier.String(),
			"model_type": result.ModelType.String(),
		}).Debug("Visual analysis completed")
	}

	return verdict
}
