package models

import "time"

// MacroObservation is a single economic data point.
type MacroObservation struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// FactorSeries is an ordered (date ascending) sequence of observations for one indicator.
type FactorSeries struct {
	SeriesID     string             `json:"series_id"`
	Observations []MacroObservation `json:"observations"`
	FromCache    bool               `json:"-"`
}

// Len returns the number of observations.
func (s FactorSeries) Len() int { return len(s.Observations) }

// Last returns the most recent observation. Callers must check Len first.
func (s FactorSeries) Last() MacroObservation {
	return s.Observations[len(s.Observations)-1]
}

// PricePoint is a daily closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// DateKey normalizes a timestamp to its calendar day in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// BetaEstimate is a beta together with the sample it was computed from.
type BetaEstimate struct {
	Ticker      string    `json:"ticker"`
	MarketIndex string    `json:"market_index"`
	Beta        float64   `json:"beta"`
	Points      int       `json:"points"`
	ComputedAt  time.Time `json:"computed_at"`
	FromCache   bool      `json:"-"`
}
