package triage

import (
	"sort"

	"github.com/Rhyred/smart-triage-system/internal/domain"
)

// RoutineMonitoringRecommendation is returned when an image was analyzed
// and nothing abnormal was detected.
const RoutineMonitoringRecommendation = "continue routine monitoring"

// AggregateConditions reduces the mapped health conditions of one image into
// a single vision verdict. An empty input means the image was analyzed and
// nothing was found: that is an available verdict at tier LOW, not an absent
// one. Symptom and recommendation sets are unions; condition names keep
// detection order.
func AggregateConditions(conditions []domain.HealthCondition) *domain.VisionVerdict {
	if len(conditions) == 0 {
		return &domain.VisionVerdict{
			Available:          true,
			RiskTier:           domain.RiskLow,
			Status:             domain.RiskLow.Status(),
			Message:            domain.RiskLow.Message(),
			Symptoms:           []string{},
			Recommendations:    []string{RoutineMonitoringRecommendation},
			DetectedConditions: []string{},
		}
	}

	tier := domain.RiskLow
	modelType := conditions[0].ModelType
	names := make([]string, 0, len(conditions))
	symptoms := make([]string, 0)
	recommendations := make([]string, 0)

	for _, c := range conditions {
		tier = tier.Escalate(c.Severity)
		names = append(names, c.Name)
		symptoms = append(symptoms, c.Symptoms...)
		recommendations = append(recommendations, c.Recommendations...)
		if c.ModelType == domain.ModelGenericFallback {
			modelType = domain.ModelGenericFallback
		}
	}

	return &domain.VisionVerdict{
		Available:          true,
		RiskTier:           tier,
		Status:             tier.Status(),
		Message:            tier.Message(),
		Symptoms:           dedupeSorted(symptoms),
		Recommendations:    dedupeSorted(recommendations),
		DetectedConditions: names,
		ModelType:          modelType,
	}
}

// dedupeSorted returns the unique elements of in, sorted. Set semantics with
// a deterministic order so identical inputs produce identical verdicts.
func dedupeSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
