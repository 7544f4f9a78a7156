package scoring

import (
	"github.com/davorpavlov/props-engine/internal/models"
)

// Recommend applies the threshold rules to a confidence score and edge.
// Rules are evaluated in order with inclusive comparisons; a zero edge is
// always a PASS because there is nothing to take a side on.
func Recommend(cfg Config, confidence, edge, edgePct float64) models.Recommendation {
	if edge == 0 {
		return models.RecommendationPass
	}

	absEdgePct := edgePct
	if absEdgePct < 0 {
		absEdgePct = -absEdgePct
	}

	var strength models.Recommendation
	switch {
	case confidence >= cfg.ConfidenceThresholds[0] && absEdgePct >= cfg.EdgeThresholds[0]:
		strength = models.RecommendationStrongOver
	case confidence >= cfg.ConfidenceThresholds[1] && absEdgePct >= cfg.EdgeThresholds[1]:
		strength = models.RecommendationOver
	case confidence >= cfg.ConfidenceThresholds[2]:
		strength = models.RecommendationLeanOver
	default:
		return models.RecommendationPass
	}

	if edge < 0 {
		switch strength {
		case models.RecommendationStrongOver:
			return models.RecommendationStrongUnder
		case models.RecommendationOver:
			return models.RecommendationUnder
		default:
			return models.RecommendationLeanUnder
		}
	}
	return strength
}
