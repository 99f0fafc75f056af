package beta

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	domrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/services/features"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
)

const (
	DefaultWindow    = 252
	DefaultMinPoints = 30

	// market return variance at or below this is treated as zero
	minMarketVariance = 1e-18

	highThreshold = 1.5
	lowThreshold  = 0.8
)

// Option configures Estimator.
type Option func(*Estimator)

// WithMarketIndex sets the benchmark ticker.
func WithMarketIndex(ticker string) Option {
	return func(e *Estimator) {
		if ticker != "" {
			e.index = strings.ToUpper(ticker)
		}
	}
}

// WithWindow caps the number of most recent aligned returns used.
func WithWindow(n int) Option {
	return func(e *Estimator) {
		if n > 0 {
			e.window = n
		}
	}
}

// WithMinPoints sets the minimum aligned returns required.
func WithMinPoints(n int) Option {
	return func(e *Estimator) {
		if n > 1 {
			e.minPoints = n
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(e *Estimator) { e.l = l }
}

// Estimator computes beta = Cov(stock, market) / Var(market) from daily returns.
type Estimator struct {
	prices    domrepo.PriceProvider
	index     string
	window    int
	minPoints int
	l         *applogger.Logger
}

func NewEstimator(prices domrepo.PriceProvider, opts ...Option) *Estimator {
	e := &Estimator{
		prices:    prices,
		index:     domrepo.DefaultMarketTicker,
		window:    DefaultWindow,
		minPoints: DefaultMinPoints,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MarketIndex returns the configured benchmark ticker.
func (e *Estimator) MarketIndex() string { return e.index }

func (e *Estimator) Estimate(ctx context.Context, ticker string, start, end time.Time) (models.BetaEstimate, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return models.BetaEstimate{}, fmt.Errorf("beta: empty ticker: %w", models.ErrInvalidInput)
	}
	if !end.After(start) {
		return models.BetaEstimate{}, fmt.Errorf("beta: end %s not after start %s: %w",
			models.DateKey(end), models.DateKey(start), models.ErrInvalidInput)
	}

	var stock, market []models.PricePoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stock, err = e.prices.FetchPriceHistory(gctx, ticker, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		market, err = e.prices.FetchPriceHistory(gctx, e.index, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.BetaEstimate{}, fmt.Errorf("beta %s: %w", ticker, err)
	}

	b, n, err := Compute(stock, market, e.window, e.minPoints)
	if err != nil {
		if e.l != nil {
			e.l.Warn("beta estimate failed",
				applogger.String("ticker", ticker),
				applogger.String("index", e.index),
				applogger.Int("stock_points", len(stock)),
				applogger.Int("market_points", len(market)),
				applogger.Error(err),
			)
		}
		return models.BetaEstimate{}, fmt.Errorf("beta %s: %w", ticker, err)
	}
	if e.l != nil {
		e.l.Debug("beta estimated",
			applogger.String("ticker", ticker),
			applogger.Float64("beta", b),
			applogger.Int("points", n),
		)
	}
	return models.BetaEstimate{
		Ticker:      ticker,
		MarketIndex: e.index,
		Beta:        b,
		Points:      n,
		ComputedAt:  time.Now().UTC(),
	}, nil
}

// Compute aligns the two histories, derives daily returns, keeps the last window of them
// and returns the beta with the number of return pairs used.
func Compute(stock, market []models.PricePoint, window, minPoints int) (float64, int, error) {
	sc, mc := features.AlignCloses(stock, market)
	sr := features.Tail(features.PctReturns(sc), window)
	mr := features.Tail(features.PctReturns(mc), window)
	n := len(mr)
	if n < minPoints {
		return 0, n, fmt.Errorf("%d aligned returns, need at least %d: %w", n, minPoints, models.ErrDataUnavailable)
	}

	mv := features.Variance(mr)
	if mv <= minMarketVariance {
		return 0, n, fmt.Errorf("market return variance is zero: %w", models.ErrComputation)
	}
	b := features.Covariance(sr, mr) / mv
	if math.IsNaN(b) || math.IsInf(b, 0) {
		return 0, n, fmt.Errorf("beta is not finite: %w", models.ErrComputation)
	}
	return b, n, nil
}

// Classify buckets a beta: above 1.5 is high, below 0.8 is low, anything else neutral.
func Classify(b float64) models.BetaClass {
	switch {
	case b > highThreshold:
		return models.BetaHigh
	case b < lowThreshold:
		return models.BetaLow
	default:
		return models.BetaNeutral
	}
}
