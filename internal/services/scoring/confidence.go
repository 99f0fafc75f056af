package scoring

import (
	"math"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

const (
	// |weighted sum| below this reads as no net macro pressure
	nearZeroWeightedSum = 0.25
	// share of total score mass one direction needs to dominate
	dominanceShare = 0.75
)

// ConfidenceFor grades agreement among the adjusted factor scores.
//
//   - HIGH:   every score is non-zero and all share one sign.
//   - LOW:    the weighted sum is near zero.
//   - MEDIUM: one direction holds at least 75% of the absolute score mass.
//   - LOW:    otherwise.
func ConfidenceFor(adjusted []float64, weightedSum float64) models.Confidence {
	if len(adjusted) == 0 {
		return models.ConfidenceLow
	}

	var pos, neg float64
	allPos, allNeg := true, true
	for _, s := range adjusted {
		switch {
		case s > 0:
			pos += s
			allNeg = false
		case s < 0:
			neg -= s
			allPos = false
		default:
			allPos, allNeg = false, false
		}
	}
	if allPos || allNeg {
		return models.ConfidenceHigh
	}
	if math.Abs(weightedSum) < nearZeroWeightedSum || pos+neg == 0 {
		return models.ConfidenceLow
	}
	if math.Max(pos, neg)/(pos+neg) >= dominanceShare {
		return models.ConfidenceMedium
	}
	return models.ConfidenceLow
}
