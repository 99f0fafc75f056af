package beta

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// marketReturns is a deterministic, non-constant return stream.
func marketReturns(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.01 * math.Sin(float64(i)*0.7)
	}
	return out
}

// pricesFrom compounds returns into a daily close series starting at start.
func pricesFrom(start float64, rets []float64, offsetDays int) []models.PricePoint {
	pts := []models.PricePoint{{Date: day0.AddDate(0, 0, offsetDays), Close: start}}
	c := start
	for i, r := range rets {
		c *= 1 + r
		pts = append(pts, models.PricePoint{Date: day0.AddDate(0, 0, offsetDays+i+1), Close: c})
	}
	return pts
}

func scaled(xs []float64, k float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x * k
	}
	return out
}

func TestCompute_RecoversKnownBeta(t *testing.T) {
	mr := marketReturns(120)
	market := pricesFrom(400, mr, 0)
	stock := pricesFrom(50, scaled(mr, 2), 0)

	b, n, err := Compute(stock, market, DefaultWindow, DefaultMinPoints)
	require.NoError(t, err)
	assert.Equal(t, 120, n)
	assert.InDelta(t, 2.0, b, 1e-9)
}

func TestCompute_UsesMostRecentWindow(t *testing.T) {
	mr := marketReturns(100)
	_, n, err := Compute(pricesFrom(10, mr, 0), pricesFrom(10, mr, 0), 50, DefaultMinPoints)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestCompute_Errors(t *testing.T) {
	flat := make([]float64, 60)

	tests := []struct {
		name   string
		stock  []models.PricePoint
		market []models.PricePoint
		want   error
	}{
		{
			name:   "too few points",
			stock:  pricesFrom(10, marketReturns(20), 0),
			market: pricesFrom(10, marketReturns(20), 0),
			want:   models.ErrDataUnavailable,
		},
		{
			name:   "no overlapping dates",
			stock:  pricesFrom(10, marketReturns(60), 0),
			market: pricesFrom(10, marketReturns(60), 365),
			want:   models.ErrDataUnavailable,
		},
		{
			name:   "empty history",
			stock:  nil,
			market: pricesFrom(10, marketReturns(60), 0),
			want:   models.ErrDataUnavailable,
		},
		{
			name:   "zero market variance",
			stock:  pricesFrom(10, marketReturns(60), 0),
			market: pricesFrom(10, flat, 0),
			want:   models.ErrComputation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _, err := Compute(tt.stock, tt.market, DefaultWindow, DefaultMinPoints)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.False(t, math.IsNaN(b) || math.IsInf(b, 0))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		beta float64
		want models.BetaClass
	}{
		{2.1, models.BetaHigh},
		{1.5000001, models.BetaHigh},
		{1.5, models.BetaNeutral},
		{1.0, models.BetaNeutral},
		{0.8, models.BetaNeutral},
		{0.7999999, models.BetaLow},
		{-0.3, models.BetaLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.beta), "beta %v", tt.beta)
	}
}

type fakePrices struct {
	data map[string][]models.PricePoint
	err  map[string]error
}

func (f *fakePrices) FetchPriceHistory(_ context.Context, ticker string, _, _ time.Time) ([]models.PricePoint, error) {
	if err := f.err[ticker]; err != nil {
		return nil, err
	}
	pts, ok := f.data[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, models.ErrDataUnavailable)
	}
	return pts, nil
}

func TestEstimator_Estimate(t *testing.T) {
	mr := marketReturns(80)
	prices := &fakePrices{data: map[string][]models.PricePoint{
		"QQQ":  pricesFrom(300, mr, 0),
		"MSFT": pricesFrom(200, scaled(mr, 0.5), 0),
	}}
	est := NewEstimator(prices, WithMarketIndex("qqq"))

	got, err := est.Estimate(context.Background(), " msft ", day0, day0.AddDate(0, 3, 0))
	require.NoError(t, err)
	assert.Equal(t, "MSFT", got.Ticker)
	assert.Equal(t, "QQQ", got.MarketIndex)
	assert.Equal(t, 80, got.Points)
	assert.InDelta(t, 0.5, got.Beta, 1e-9)
}

func TestEstimator_Estimate_Errors(t *testing.T) {
	prices := &fakePrices{
		data: map[string][]models.PricePoint{"SPY": pricesFrom(400, marketReturns(60), 0)},
		err:  map[string]error{"BAD": fmt.Errorf("yahoo: %w", models.ErrDataUnavailable)},
	}
	est := NewEstimator(prices)
	end := day0.AddDate(0, 3, 0)

	_, err := est.Estimate(context.Background(), "", day0, end)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = est.Estimate(context.Background(), "AAPL", end, day0)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = est.Estimate(context.Background(), "BAD", day0, end)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
}
