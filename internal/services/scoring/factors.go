package scoring

import (
	"fmt"
	"math"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

// Trend is the measured recent movement of one macro series and the raw score it maps to.
type Trend struct {
	Label  string
	Change float64
	Latest float64
	Score  float64
}

// Lookback offsets, counted back from the latest observation.
const (
	fedFundsLag  = 3  // monthly: one quarter
	cpiLag       = 12 // monthly: year over year
	treasuryLag  = 21 // daily: about one trading month
	cpiMinPoints = 12
)

// FedFundsTrend scores the change in the policy rate over the last quarter.
// Falling rates support equities; rising rates are a headwind.
func FedFundsTrend(s models.FactorSeries) (Trend, error) {
	obs, err := finite(s, 2)
	if err != nil {
		return Trend{}, err
	}
	last := obs[len(obs)-1]
	change := last - lagged(obs, fedFundsLag)

	t := Trend{Change: change, Latest: last}
	switch {
	case change > 0.25:
		t.Label, t.Score = "aggressive_tightening", -2
	case change > 0:
		t.Label, t.Score = "tightening", -1
	case change < -0.25:
		t.Label, t.Score = "aggressive_easing", 2
	case change < 0:
		t.Label, t.Score = "easing", 1
	default:
		t.Label, t.Score = "stable", 0
	}
	t.Score = ClampRaw(t.Score)
	return t, nil
}

// InflationTrend scores year-over-year CPI growth in percent.
// Inflation near target supports equities; high inflation is a headwind.
func InflationTrend(s models.FactorSeries) (Trend, error) {
	obs, err := finite(s, cpiMinPoints)
	if err != nil {
		return Trend{}, err
	}
	last := obs[len(obs)-1]
	base := lagged(obs, cpiLag)
	if base == 0 {
		return Trend{}, fmt.Errorf("%s: zero base index value: %w", s.SeriesID, models.ErrComputation)
	}
	yoy := (last - base) / base * 100

	t := Trend{Change: yoy, Latest: last}
	switch {
	case yoy > 4.0:
		t.Label, t.Score = "high", -1.5
	case yoy > 2.5:
		t.Label, t.Score = "elevated", -0.5
	case yoy >= 1.5:
		t.Label, t.Score = "target", 1
	default:
		t.Label, t.Score = "low", 0
	}
	t.Score = ClampRaw(t.Score)
	return t, nil
}

// TreasuryTrend scores the one-month change in the 10-year yield.
// Falling yields lower the discount rate and support equities.
func TreasuryTrend(s models.FactorSeries) (Trend, error) {
	obs, err := finite(s, 2)
	if err != nil {
		return Trend{}, err
	}
	last := obs[len(obs)-1]
	change := last - lagged(obs, treasuryLag)

	t := Trend{Change: change, Latest: last}
	switch {
	case change > 0.5:
		t.Label, t.Score = "rapid_rise", -2
	case change > 0.1:
		t.Label, t.Score = "rising", -1
	case change < -0.5:
		t.Label, t.Score = "rapid_fall", 2
	case change < -0.1:
		t.Label, t.Score = "falling", 1
	default:
		t.Label, t.Score = "stable", 0
	}
	t.Score = ClampRaw(t.Score)
	return t, nil
}

// lagged returns the value lag periods before the last one, or the first value
// when the series is shorter than that.
func lagged(obs []float64, lag int) float64 {
	i := len(obs) - 1 - lag
	if i < 0 {
		i = 0
	}
	return obs[i]
}

// finite extracts the series values, skipping missing (NaN/Inf) entries, and requires
// at least min of them.
func finite(s models.FactorSeries, min int) ([]float64, error) {
	out := make([]float64, 0, len(s.Observations))
	for _, o := range s.Observations {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			continue
		}
		out = append(out, o.Value)
	}
	if len(out) < min {
		return nil, fmt.Errorf("%s: %d observations, need at least %d: %w",
			s.SeriesID, len(out), min, models.ErrDataUnavailable)
	}
	return out, nil
}
