package repository

import "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"

// FRED series identifiers for the tracked factors.
const (
	SeriesFedFunds      = "FEDFUNDS"
	SeriesCPI           = "CPIAUCSL"
	SeriesTreasury10Y   = "DGS10"
	DefaultMarketTicker = "SPY"
)

// SeriesForFactor maps a factor to its FRED series id.
func SeriesForFactor(f models.Factor) string {
	switch f {
	case models.FactorFedFunds:
		return SeriesFedFunds
	case models.FactorInflation:
		return SeriesCPI
	case models.FactorTreasuryYield:
		return SeriesTreasury10Y
	default:
		return ""
	}
}

// TrackedSeries lists every series the scorer needs.
func TrackedSeries() []string {
	return []string{SeriesFedFunds, SeriesCPI, SeriesTreasury10Y}
}
