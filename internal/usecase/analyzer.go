package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	domrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
	domsvc "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/service"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/repository"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

const (
	DefaultLookbackDays = 365
	MinLookbackDays     = 90
	MaxLookbackDays     = 3650
	MaxBatchTickers     = 50

	// CPI year-over-year needs 13 monthly points; 14 months leaves room for a late release.
	minMacroMonths = 14
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.^-]{1,10}$`)

// CacheAdmin exposes cache statistics and invalidation.
type CacheAdmin interface {
	Stats(ctx context.Context) ([]models.CacheStats, error)
	Clear(ctx context.Context, kind string) error
}

// AnalyzeParams describes one analysis. Zero values take defaults.
type AnalyzeParams struct {
	Ticker       string
	LookbackDays int
	Refresh      bool
	AsOf         time.Time
}

// FactorAnalyzer runs the fetch, beta and scoring chain for one ticker or a watch list.
type FactorAnalyzer struct {
	series    domrepo.SeriesProvider
	beta      domsvc.BetaEstimator
	scorer    domsvc.FactorScorer
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	cache     CacheAdmin

	lookback int
	workers  int
	timeout  time.Duration
	now      func() time.Time
	l        *applogger.Logger
}

// AnalyzerOption configures FactorAnalyzer.
type AnalyzerOption func(*FactorAnalyzer)

func WithPublisher(p domrepo.ResultPublisher) AnalyzerOption {
	return func(a *FactorAnalyzer) { a.publisher = p }
}

func WithCacheAdmin(c CacheAdmin) AnalyzerOption {
	return func(a *FactorAnalyzer) { a.cache = c }
}

// WithDefaultLookback sets the lookback used when a request leaves it zero.
func WithDefaultLookback(days int) AnalyzerOption {
	return func(a *FactorAnalyzer) {
		if days > 0 {
			a.lookback = days
		}
	}
}

func WithBatchWorkers(n int) AnalyzerOption {
	return func(a *FactorAnalyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithTimeout bounds a single analysis. Zero disables the bound.
func WithTimeout(d time.Duration) AnalyzerOption {
	return func(a *FactorAnalyzer) { a.timeout = d }
}

func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *FactorAnalyzer) { a.now = now }
}

func WithAnalyzerLogger(l *applogger.Logger) AnalyzerOption {
	return func(a *FactorAnalyzer) {
		if l != nil {
			a.l = l
		}
	}
}

func NewFactorAnalyzer(series domrepo.SeriesProvider, beta domsvc.BetaEstimator, scorer domsvc.FactorScorer, metrics domrepo.Metrics, opts ...AnalyzerOption) *FactorAnalyzer {
	a := &FactorAnalyzer{
		series:   series,
		beta:     beta,
		scorer:   scorer,
		metrics:  metrics,
		lookback: DefaultLookbackDays,
		workers:  4,
		timeout:  60 * time.Second,
		now:      time.Now,
		l:        applogger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.l = a.l.With(applogger.String("component", "analyzer"))
	return a
}

// Analyze scores one ticker. Any failing input fails the whole analysis.
func (a *FactorAnalyzer) Analyze(ctx context.Context, p AnalyzeParams) (*models.CompositeResult, error) {
	start := time.Now()
	res, err := a.analyze(ctx, p)
	a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	if err != nil {
		a.metrics.RecordError(models.ErrorKind(err))
		a.l.Warn("analysis failed",
			applogger.String("ticker", p.Ticker),
			applogger.String("kind", models.ErrorKind(err)),
			applogger.Error(err),
		)
		return nil, err
	}

	a.metrics.RecordAnalysis(res.Ticker, string(res.Signal), res.CompositeScore)
	a.l.Info("analysis complete",
		applogger.String("ticker", res.Ticker),
		applogger.Float64("beta", res.Beta),
		applogger.Float64("composite", res.CompositeScore),
		applogger.String("signal", string(res.Signal)),
		applogger.String("confidence", string(res.Confidence)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	a.publish(ctx, res)
	return res, nil
}

func (a *FactorAnalyzer) analyze(ctx context.Context, p AnalyzeParams) (*models.CompositeResult, error) {
	ticker, err := NormalizeTicker(p.Ticker)
	if err != nil {
		return nil, err
	}
	lookback := p.LookbackDays
	if lookback == 0 {
		lookback = a.lookback
	}
	if lookback < MinLookbackDays || lookback > MaxLookbackDays {
		return nil, fmt.Errorf("lookback_days %d outside [%d, %d]: %w", lookback, MinLookbackDays, MaxLookbackDays, models.ErrInvalidInput)
	}
	asOf := p.AsOf
	now := a.now()
	if asOf.IsZero() {
		asOf = now
	}
	if asOf.After(now) {
		return nil, fmt.Errorf("as_of %s is in the future: %w", models.DateKey(asOf), models.ErrInvalidInput)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	ctx = repository.WithForceRefresh(ctx, p.Refresh)

	start, end := util.LookbackWindow(asOf, lookback)
	macroStart := start
	if floor := end.AddDate(0, -minMacroMonths, 0); floor.Before(macroStart) {
		macroStart = floor
	}

	in := models.ScoreInput{Ticker: ticker, AsOf: end, LookbackDays: lookback}
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(id string, dst *models.FactorSeries) {
		g.Go(func() error {
			s, err := a.series.FetchSeries(gctx, id, macroStart, end)
			if err != nil {
				return fmt.Errorf("series %s: %w", id, err)
			}
			*dst = s
			return nil
		})
	}
	fetch(domrepo.SeriesFedFunds, &in.FedFunds)
	fetch(domrepo.SeriesCPI, &in.Inflation)
	fetch(domrepo.SeriesTreasury10Y, &in.TreasuryYield)
	g.Go(func() error {
		b, err := a.beta.Estimate(gctx, ticker, start, end)
		if err != nil {
			return err
		}
		in.Beta = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", ticker, err)
	}

	res, err := a.scorer.Score(in)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *FactorAnalyzer) publish(ctx context.Context, res *models.CompositeResult) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.Publish(ctx, res); err != nil {
		a.metrics.RecordError("publish")
		a.l.Warn("result publish failed", applogger.String("ticker", res.Ticker), applogger.Error(err))
	}
}

// AnalyzeBatch analyzes tickers in parallel with a bounded pool. Items keep the order of
// the normalized ticker list; one ticker failing never affects the others.
func (a *FactorAnalyzer) AnalyzeBatch(ctx context.Context, tickers []string, lookbackDays int, refresh bool) ([]models.BatchItem, error) {
	list := util.ParseTickers(tickers...)
	if len(list) == 0 {
		return nil, fmt.Errorf("batch: no tickers: %w", models.ErrInvalidInput)
	}
	if len(list) > MaxBatchTickers {
		return nil, fmt.Errorf("batch: %d tickers, at most %d allowed: %w", len(list), MaxBatchTickers, models.ErrInvalidInput)
	}

	start := time.Now()
	items := make([]models.BatchItem, len(list))
	var (
		mu     sync.Mutex
		failed int
	)
	g := new(errgroup.Group)
	g.SetLimit(a.workers)
	for i, t := range list {
		g.Go(func() error {
			item := models.BatchItem{Ticker: t}
			res, err := a.Analyze(ctx, AnalyzeParams{Ticker: t, LookbackDays: lookbackDays, Refresh: refresh})
			if err != nil {
				item.Error = err.Error()
				item.Kind = models.ErrorKind(err)
				mu.Lock()
				failed++
				mu.Unlock()
			} else {
				item.Result = res
			}
			items[i] = item
			return nil
		})
	}
	_ = g.Wait()

	a.metrics.RecordLatency("analyze_batch", time.Since(start).Seconds())
	a.l.Info("batch complete",
		applogger.Int("tickers", len(list)),
		applogger.Int("failed", failed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return items, nil
}

// CacheStats returns per-kind counters. Without a cache every kind reports zero.
func (a *FactorAnalyzer) CacheStats(ctx context.Context) ([]models.CacheStats, error) {
	if a.cache == nil {
		out := make([]models.CacheStats, 0, 3)
		for _, k := range repository.Kinds() {
			out = append(out, models.CacheStats{Kind: k})
		}
		return out, nil
	}
	return a.cache.Stats(ctx)
}

// ClearCache drops cached entries of kind (series, prices, beta or all).
func (a *FactorAnalyzer) ClearCache(ctx context.Context, kind string) error {
	if a.cache == nil {
		switch kind {
		case repository.KindSeries, repository.KindPrices, repository.KindBeta, repository.KindAll, "":
			return nil
		}
		return fmt.Errorf("unknown cache kind %q: %w", kind, models.ErrInvalidInput)
	}
	return a.cache.Clear(ctx, kind)
}

// NormalizeTicker upper-cases and validates a ticker symbol.
func NormalizeTicker(s string) (string, error) {
	t := util.NormalizeTicker(s)
	if !tickerPattern.MatchString(t) {
		return "", fmt.Errorf("ticker %q must be 1-10 characters of letters, digits, '.', '-' or '^': %w", s, models.ErrInvalidInput)
	}
	return t, nil
}
