package models

import "time"

type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// BetaClass buckets a beta into the sensitivity profile used for score adjustment.
type BetaClass string

const (
	BetaHigh    BetaClass = "high"
	BetaNeutral BetaClass = "neutral"
	BetaLow     BetaClass = "low"
)

// Factor names one of the tracked macro indicators.
type Factor string

const (
	FactorFedFunds      Factor = "fed_funds_rate"
	FactorInflation     Factor = "cpi_inflation"
	FactorTreasuryYield Factor = "treasury_10y_yield"
)

// Title returns the display name of the factor.
func (f Factor) Title() string {
	switch f {
	case FactorFedFunds:
		return "Fed Funds Rate"
	case FactorInflation:
		return "CPI Inflation"
	case FactorTreasuryYield:
		return "10Y Treasury Yield"
	default:
		return string(f)
	}
}

// FactorScore is the scored contribution of one macro factor.
type FactorScore struct {
	Factor        Factor  `json:"factor_name"`
	SeriesID      string  `json:"series_id"`
	Trend         string  `json:"trend"`
	Change        float64 `json:"change"`
	Latest        float64 `json:"latest"`
	RawScore      float64 `json:"raw_score"`
	AdjustedScore float64 `json:"beta_adjusted_score"`
	Weight        float64 `json:"weight"`
}

// Contribution is the factor's share of the weighted sum.
func (f FactorScore) Contribution() float64 { return f.AdjustedScore * f.Weight }

// CacheInfo tells which inputs of an analysis were served from cache.
type CacheInfo struct {
	FedFunds      bool `json:"fed_funds"`
	Inflation     bool `json:"inflation"`
	TreasuryYield bool `json:"treasury_yield"`
	Beta          bool `json:"beta"`
}

// CompositeResult is the outcome of one analysis.
type CompositeResult struct {
	Ticker         string        `json:"ticker"`
	MarketIndex    string        `json:"market_index"`
	Beta           float64       `json:"beta"`
	BetaClass      BetaClass     `json:"beta_class"`
	FactorScores   []FactorScore `json:"factor_scores"`
	WeightedSum    float64       `json:"weighted_sum"`
	CompositeScore float64       `json:"composite_score"`
	Signal         Signal        `json:"signal"`
	Confidence     Confidence    `json:"confidence"`
	Rationale      string        `json:"rationale"`
	AsOf           time.Time     `json:"as_of"`
	LookbackDays   int           `json:"lookback_days"`
	Cache          CacheInfo     `json:"cache"`
}

// BatchItem is one ticker's outcome within a batch run.
type BatchItem struct {
	Ticker string           `json:"ticker"`
	Result *CompositeResult `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
	Kind   string           `json:"error_kind,omitempty"`
}

// CacheStats reports lookup counters for one cache kind.
type CacheStats struct {
	Kind    string  `json:"kind"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// ScoreInput bundles everything the scorer needs for one ticker.
type ScoreInput struct {
	Ticker        string
	Beta          BetaEstimate
	FedFunds      FactorSeries
	Inflation     FactorSeries
	TreasuryYield FactorSeries
	AsOf          time.Time
	LookbackDays  int
}
