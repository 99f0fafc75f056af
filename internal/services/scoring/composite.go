package scoring

import (
	"math"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

// Factor weights in the composite. They sum to 1.
const (
	WeightFedFunds      = 0.35
	WeightInflation     = 0.35
	WeightTreasuryYield = 0.30
)

const (
	MinRawScore = -2.0
	MaxRawScore = 2.0

	MinComposite = 1.0
	MaxComposite = 10.0

	compositeCenter = 5.5
	compositeScale  = 2.25
)

// ClampRaw bounds a factor score to [-2, 2]. NaN maps to 0.
func ClampRaw(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(MinRawScore, math.Min(MaxRawScore, x))
}

// Multiplier returns the amplification applied to every factor for a beta class.
func Multiplier(c models.BetaClass) float64 {
	switch c {
	case models.BetaHigh:
		return 1.3
	case models.BetaLow:
		return 0.7
	default:
		return 1.0
	}
}

// Adjust applies the beta multiplier to a raw score and re-clamps to [-2, 2].
func Adjust(raw float64, c models.BetaClass) float64 {
	return ClampRaw(ClampRaw(raw) * Multiplier(c))
}

// WeightedSum combines the three adjusted scores with the fixed factor weights.
func WeightedSum(fed, inflation, yield float64) float64 {
	return fed*WeightFedFunds + inflation*WeightInflation + yield*WeightTreasuryYield
}

// Composite maps a weighted sum onto the 1-10 scale. The result is always in [1, 10].
func Composite(weightedSum float64) float64 {
	if math.IsNaN(weightedSum) {
		return compositeCenter
	}
	c := compositeCenter + weightedSum*compositeScale
	return math.Max(MinComposite, math.Min(MaxComposite, c))
}

// MapSignal converts a composite score into a signal. Lower bounds are inclusive.
func MapSignal(composite float64) models.Signal {
	switch {
	case composite >= 7.5:
		return models.SignalStrongBuy
	case composite >= 6.5:
		return models.SignalBuy
	case composite >= 4.5:
		return models.SignalHold
	case composite >= 2.5:
		return models.SignalSell
	default:
		return models.SignalStrongSell
	}
}
