package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

// DominantFactor returns the score with the largest absolute weighted contribution.
// Ties resolve to the earlier entry. ok is false when every contribution is zero.
func DominantFactor(scores []models.FactorScore) (models.FactorScore, bool) {
	var (
		best  models.FactorScore
		found bool
		max   float64
	)
	for _, s := range scores {
		c := math.Abs(s.Contribution())
		if c > max {
			best, max, found = s, c, true
		}
	}
	return best, found
}

// Rationale renders the one-sentence explanation for a result.
func Rationale(r models.CompositeResult) string {
	head := fmt.Sprintf("%s (%.2f/10)", r.Signal, r.CompositeScore)
	tail := betaPhrase(r.BetaClass, r.Beta)

	d, ok := DominantFactor(r.FactorScores)
	if !ok {
		return fmt.Sprintf("%s: no macro factor is moving materially; %s.", head, tail)
	}
	direction := "tailwind"
	if d.Contribution() < 0 {
		direction = "headwind"
	}
	return fmt.Sprintf("%s: %s is the dominant driver (%s, %+.2f %s); %s.",
		head, d.Factor.Title(), strings.ReplaceAll(d.Trend, "_", " "), d.Contribution(), direction, tail)
}

func betaPhrase(c models.BetaClass, b float64) string {
	switch c {
	case models.BetaHigh:
		return fmt.Sprintf("high-beta profile (beta %.2f) amplifies macro sensitivity", b)
	case models.BetaLow:
		return fmt.Sprintf("low-beta defensive profile (beta %.2f) dampens macro sensitivity", b)
	default:
		return fmt.Sprintf("neutral beta (%.2f) leaves factor scores unadjusted", b)
	}
}
