package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	domrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/repository"
)

var fixedNow = time.Date(2024, 6, 28, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func monthly(id string, values ...float64) models.FactorSeries {
	s := models.FactorSeries{SeriesID: id}
	base := fixedNow.AddDate(0, -len(values), 0)
	for i, v := range values {
		s.Observations = append(s.Observations, models.MacroObservation{Date: base.AddDate(0, i, 0), Value: v})
	}
	return s
}

func linear(from, to float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + (to-from)*float64(i)/float64(n-1)
	}
	return out
}

// easingFixture: fed -0.5pp over a quarter, CPI +2% YoY, 10Y -0.6pp over a month.
func easingFixture() map[string]models.FactorSeries {
	return map[string]models.FactorSeries{
		domrepo.SeriesFedFunds:    monthly(domrepo.SeriesFedFunds, 5.5, 5.5, 5.25, 5.0),
		domrepo.SeriesCPI:         monthly(domrepo.SeriesCPI, linear(100, 102, 13)...),
		domrepo.SeriesTreasury10Y: monthly(domrepo.SeriesTreasury10Y, linear(4.5, 3.9, 22)...),
	}
}

type seriesCall struct {
	id         string
	start, end time.Time
	refresh    bool
}

type fakeSeriesProvider struct {
	mu    sync.Mutex
	data  map[string]models.FactorSeries
	errs  map[string]error
	calls []seriesCall
}

func (f *fakeSeriesProvider) FetchSeries(ctx context.Context, id string, start, end time.Time) (models.FactorSeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, seriesCall{id: id, start: start, end: end, refresh: repository.ForceRefresh(ctx)})
	f.mu.Unlock()
	if err := f.errs[id]; err != nil {
		return models.FactorSeries{}, err
	}
	s, ok := f.data[id]
	if !ok {
		return models.FactorSeries{}, fmt.Errorf("%s: %w", id, models.ErrDataUnavailable)
	}
	return s, nil
}

func (f *fakeSeriesProvider) Calls() []seriesCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]seriesCall(nil), f.calls...)
}

type fakeBetaEstimator struct {
	mu     sync.Mutex
	betas  map[string]float64
	starts []time.Time
}

func (f *fakeBetaEstimator) Estimate(_ context.Context, ticker string, start, _ time.Time) (models.BetaEstimate, error) {
	f.mu.Lock()
	f.starts = append(f.starts, start)
	f.mu.Unlock()
	b, ok := f.betas[ticker]
	if !ok {
		return models.BetaEstimate{}, fmt.Errorf("beta %s: no prices: %w", ticker, models.ErrDataUnavailable)
	}
	return models.BetaEstimate{Ticker: ticker, MarketIndex: "SPY", Beta: b, Points: 250}, nil
}

type fakePublisher struct {
	mu      sync.Mutex
	err     error
	tickers []string
}

func (p *fakePublisher) Publish(_ context.Context, r *models.CompositeResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickers = append(p.tickers, r.Ticker)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu      sync.Mutex
	signals map[string]string
	errors  map[string]int
	lat     map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{signals: map[string]string{}, errors: map[string]int{}, lat: map[string]int{}}
}

func (m *fakeMetrics) RecordAnalysis(ticker, signal string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signals[ticker] = signal
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *fakeMetrics) RecordLatency(op string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lat[op]++
}

func (m *fakeMetrics) RecordCacheLookup(string, bool) {}

type fakeStore struct {
	mu     sync.Mutex
	series map[string]int
	prices map[string]int
	err    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{series: map[string]int{}, prices: map[string]int{}}
}

func (s *fakeStore) FetchSeries(context.Context, string, time.Time, time.Time) (models.FactorSeries, error) {
	return models.FactorSeries{}, errors.New("not used")
}

func (s *fakeStore) FetchPriceHistory(context.Context, string, time.Time, time.Time) ([]models.PricePoint, error) {
	return nil, errors.New("not used")
}

func (s *fakeStore) SaveSeries(_ context.Context, fs models.FactorSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.series[fs.SeriesID] = fs.Len()
	return nil
}

func (s *fakeStore) SavePrices(_ context.Context, ticker string, pts []models.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.prices[ticker] = len(pts)
	return nil
}

type fakePriceProvider struct{}

func (fakePriceProvider) FetchPriceHistory(_ context.Context, ticker string, start, _ time.Time) ([]models.PricePoint, error) {
	if ticker == "NOPE" {
		return nil, fmt.Errorf("%s: %w", ticker, models.ErrDataUnavailable)
	}
	return []models.PricePoint{{Date: start, Close: 10}, {Date: start.AddDate(0, 0, 1), Close: 11}}, nil
}
