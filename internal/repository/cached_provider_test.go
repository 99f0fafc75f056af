package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/cache"
)

var (
	winStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	winEnd   = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
)

type fakeSeries struct {
	calls int32
	delay time.Duration
	err   error
}

func (f *fakeSeries) FetchSeries(_ context.Context, id string, _, _ time.Time) (models.FactorSeries, error) {
	atomic.AddInt32(&f.calls, 1)
	time.Sleep(f.delay)
	if f.err != nil {
		return models.FactorSeries{}, f.err
	}
	return models.FactorSeries{SeriesID: id, Observations: []models.MacroObservation{
		{Date: winStart, Value: 5.33},
		{Date: winEnd, Value: 4.58},
	}}, nil
}

type fakeBeta struct{ calls int32 }

func (f *fakeBeta) Estimate(_ context.Context, ticker string, _, _ time.Time) (models.BetaEstimate, error) {
	atomic.AddInt32(&f.calls, 1)
	return models.BetaEstimate{Ticker: ticker, MarketIndex: "SPY", Beta: 1.2, Points: 250}, nil
}

type fakePrices struct{ calls int32 }

func (f *fakePrices) FetchPriceHistory(_ context.Context, _ string, _, _ time.Time) ([]models.PricePoint, error) {
	atomic.AddInt32(&f.calls, 1)
	return []models.PricePoint{{Date: winStart, Close: 100}, {Date: winEnd, Close: 110}}, nil
}

type lookupCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (m *lookupCounter) RecordAnalysis(string, string, float64) {}
func (m *lookupCounter) RecordError(string)                     {}
func (m *lookupCounter) RecordLatency(string, float64)          {}
func (m *lookupCounter) RecordCacheLookup(kind string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[fmt.Sprintf("%s:%v", kind, hit)]++
}

func newLayer(t *testing.T) (*CacheLayer, *lookupCounter) {
	t.Helper()
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	m := &lookupCounter{hits: map[string]int{}}
	return NewCacheLayer(mem, DefaultTTLs(), m, nil), m
}

func TestCachedSeries_MissThenHit(t *testing.T) {
	layer, m := newLayer(t)
	up := &fakeSeries{}
	p := layer.Series(up)
	ctx := context.Background()

	first, err := p.FetchSeries(ctx, "FEDFUNDS", winStart, winEnd)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := p.FetchSeries(ctx, "fedfunds", winStart, winEnd)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Observations, second.Observations)
	assert.EqualValues(t, 1, atomic.LoadInt32(&up.calls))
	assert.Equal(t, 1, m.hits["series:true"])
	assert.Equal(t, 1, m.hits["series:false"])

	// a different window is a different key
	_, err = p.FetchSeries(ctx, "FEDFUNDS", winStart.AddDate(0, 1, 0), winEnd)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&up.calls))
}

func TestCachedSeries_ForceRefreshBypassesRead(t *testing.T) {
	layer, _ := newLayer(t)
	up := &fakeSeries{}
	p := layer.Series(up)

	_, err := p.FetchSeries(context.Background(), "DGS10", winStart, winEnd)
	require.NoError(t, err)

	got, err := p.FetchSeries(WithForceRefresh(context.Background(), true), "DGS10", winStart, winEnd)
	require.NoError(t, err)
	assert.False(t, got.FromCache)
	assert.EqualValues(t, 2, atomic.LoadInt32(&up.calls))

	got, err = p.FetchSeries(context.Background(), "DGS10", winStart, winEnd)
	require.NoError(t, err)
	assert.True(t, got.FromCache)
}

func TestCachedSeries_ErrorsAreNotCached(t *testing.T) {
	layer, _ := newLayer(t)
	up := &fakeSeries{err: fmt.Errorf("fred: %w", models.ErrDataUnavailable)}
	p := layer.Series(up)

	for i := 0; i < 2; i++ {
		_, err := p.FetchSeries(context.Background(), "CPIAUCSL", winStart, winEnd)
		assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&up.calls))
}

func TestCachedSeries_ConcurrentMissesShareOneFetch(t *testing.T) {
	layer, _ := newLayer(t)
	up := &fakeSeries{delay: 50 * time.Millisecond}
	p := layer.Series(up)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.FetchSeries(context.Background(), "DGS10", winStart, winEnd)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&up.calls))
}

func TestCachedBeta_And_Stats(t *testing.T) {
	layer, _ := newLayer(t)
	est := layer.Beta(&fakeBeta{}, "spy")
	prices := layer.Prices(&fakePrices{})
	ctx := context.Background()

	b, err := est.Estimate(ctx, "aapl", winStart, winEnd)
	require.NoError(t, err)
	assert.False(t, b.FromCache)
	b, err = est.Estimate(ctx, "AAPL", winStart, winEnd)
	require.NoError(t, err)
	assert.True(t, b.FromCache)
	assert.Equal(t, 1.2, b.Beta)

	_, err = prices.FetchPriceHistory(ctx, "AAPL", winStart, winEnd)
	require.NoError(t, err)

	_, err = est.Estimate(ctx, " ", winStart, winEnd)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	stats, err := layer.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, models.CacheStats{Kind: KindSeries}, stats[0])
	assert.Equal(t, models.CacheStats{Kind: KindPrices, Misses: 1}, stats[1])
	assert.Equal(t, models.CacheStats{Kind: KindBeta, Hits: 1, Misses: 1, HitRate: 0.5}, stats[2])
}

func TestCachedBeta_SurvivesDailyWindowShift(t *testing.T) {
	layer, _ := newLayer(t)
	up := &fakeBeta{}
	est := layer.Beta(up, "SPY")
	ctx := context.Background()

	_, err := est.Estimate(ctx, "AAPL", winStart, winEnd)
	require.NoError(t, err)

	b, err := est.Estimate(ctx, "AAPL", winStart.AddDate(0, 0, 1), winEnd.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, b.FromCache)
	assert.EqualValues(t, 1, atomic.LoadInt32(&up.calls))

	b, err = est.Estimate(ctx, "AAPL", winStart.AddDate(0, 0, -30), winEnd)
	require.NoError(t, err)
	assert.False(t, b.FromCache, "a longer lookback is a different beta")
	assert.EqualValues(t, 2, atomic.LoadInt32(&up.calls))
}

func TestCacheLayer_ClearByKind(t *testing.T) {
	layer, _ := newLayer(t)
	up := &fakeSeries{}
	beta := &fakeBeta{}
	series := layer.Series(up)
	est := layer.Beta(beta, "SPY")
	ctx := context.Background()

	_, _ = series.FetchSeries(ctx, "DGS10", winStart, winEnd)
	_, _ = est.Estimate(ctx, "MSFT", winStart, winEnd)

	require.NoError(t, layer.Clear(ctx, KindSeries))

	s, err := series.FetchSeries(ctx, "DGS10", winStart, winEnd)
	require.NoError(t, err)
	assert.False(t, s.FromCache)
	b, err := est.Estimate(ctx, "MSFT", winStart, winEnd)
	require.NoError(t, err)
	assert.True(t, b.FromCache)

	require.NoError(t, layer.Clear(ctx, KindAll))
	b, err = est.Estimate(ctx, "MSFT", winStart, winEnd)
	require.NoError(t, err)
	assert.False(t, b.FromCache)

	assert.True(t, errors.Is(layer.Clear(ctx, "quotes"), models.ErrInvalidInput))

	stats, err := layer.Stats(ctx)
	require.NoError(t, err)
	assert.NotZero(t, stats[0].Misses, "clearing entries keeps counters")
}
