package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	domrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
	domsvc "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/service"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/cache"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

// Cache kinds. Each kind owns the key prefix "<kind>:".
const (
	KindSeries = "series"
	KindPrices = "prices"
	KindBeta   = "beta"
	KindAll    = "all"
)

// Kinds lists the concrete cache kinds in display order.
func Kinds() []string { return []string{KindSeries, KindPrices, KindBeta} }

type refreshKey struct{}

// WithForceRefresh marks ctx so cached lookups bypass the read and overwrite the entry.
func WithForceRefresh(ctx context.Context, refresh bool) context.Context {
	if !refresh {
		return ctx
	}
	return context.WithValue(ctx, refreshKey{}, true)
}

// ForceRefresh reports whether ctx asks for a cache bypass.
func ForceRefresh(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}

// TTLs holds the expiry per cache kind.
type TTLs struct {
	Series time.Duration
	Prices time.Duration
	Beta   time.Duration
}

// DefaultTTLs mirrors the daily refresh of upstream data; betas move slowly and keep for a week.
func DefaultTTLs() TTLs {
	return TTLs{Series: 24 * time.Hour, Prices: 24 * time.Hour, Beta: 7 * 24 * time.Hour}
}

// CacheLayer wraps the providers and the beta estimator with read-through TTL caching.
// Concurrent misses on the same key share one upstream call.
type CacheLayer struct {
	store   cache.Service
	ttl     TTLs
	flight  singleflight.Group
	metrics domrepo.Metrics
	log     *applogger.Logger
}

// NewCacheLayer creates the cache layer over store.
func NewCacheLayer(store cache.Service, ttl TTLs, metrics domrepo.Metrics, log *applogger.Logger) *CacheLayer {
	if log == nil {
		log = applogger.Nop()
	}
	return &CacheLayer{store: store, ttl: ttl, metrics: metrics, log: log.With(applogger.String("component", "cache"))}
}

// lookup is the read-through path shared by every kind. load runs on a miss or a forced refresh.
func (c *CacheLayer) lookup(ctx context.Context, kind, key string, ttl time.Duration, dest interface{}, load func() (interface{}, error)) (bool, error) {
	if !ForceRefresh(ctx) {
		err := c.store.Get(ctx, key, dest)
		if err == nil {
			c.count(ctx, kind, true)
			return true, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.log.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	c.count(ctx, kind, false)

	flightKey := key
	if ForceRefresh(ctx) {
		flightKey += "|refresh"
	}
	v, err, _ := c.flight.Do(flightKey, func() (interface{}, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(ctx, key, v, ttl); err != nil {
			c.log.Warn("cache write failed", applogger.String("key", key), applogger.Error(err))
		}
		return v, nil
	})
	if err != nil {
		return false, err
	}
	return false, assign(dest, v)
}

func assign(dest, v interface{}) error {
	switch d := dest.(type) {
	case *models.FactorSeries:
		*d = v.(models.FactorSeries)
	case *[]models.PricePoint:
		*d = v.([]models.PricePoint)
	case *models.BetaEstimate:
		*d = v.(models.BetaEstimate)
	default:
		return fmt.Errorf("cache: unsupported destination %T", dest)
	}
	return nil
}

func (c *CacheLayer) count(ctx context.Context, kind string, hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(kind, hit)
	}
	if _, err := c.store.Increment(ctx, statsKey(kind, hit)); err != nil {
		c.log.Debug("cache stats increment failed", applogger.String("kind", kind), applogger.Error(err))
	}
}

func statsKey(kind string, hit bool) string {
	if hit {
		return cache.GenerateKeyWithParams("stats", kind, "hits")
	}
	return cache.GenerateKeyWithParams("stats", kind, "misses")
}

func windowKey(kind, id string, start, end time.Time) string {
	return cache.GenerateKeyWithParams(kind, strings.ToUpper(id), start.UTC().Format(util.DateLayout), end.UTC().Format(util.DateLayout))
}

// betaKey leaves the absolute dates out: a beta keeps its TTL across daily window shifts
// and only a different lookback length or index misses.
func betaKey(ticker, index string, start, end time.Time) string {
	days := int(math.Round(end.Sub(start).Hours() / 24))
	return cache.GenerateKeyWithParams(KindBeta, ticker, index, fmt.Sprintf("%dd", days))
}

// Series wraps a SeriesProvider.
func (c *CacheLayer) Series(p domrepo.SeriesProvider) domrepo.SeriesProvider {
	return &cachedSeries{layer: c, next: p}
}

// Prices wraps a PriceProvider.
func (c *CacheLayer) Prices(p domrepo.PriceProvider) domrepo.PriceProvider {
	return &cachedPrices{layer: c, next: p}
}

// Beta wraps a BetaEstimator. marketIndex is part of the key so a config change never
// serves a beta measured against another index.
func (c *CacheLayer) Beta(e domsvc.BetaEstimator, marketIndex string) domsvc.BetaEstimator {
	return &cachedBeta{layer: c, next: e, index: strings.ToUpper(marketIndex)}
}

// Stats returns hit/miss counters for every kind.
func (c *CacheLayer) Stats(ctx context.Context) ([]models.CacheStats, error) {
	out := make([]models.CacheStats, 0, 3)
	for _, kind := range Kinds() {
		hits, err := cache.GetInt64(ctx, c.store, statsKey(kind, true))
		if err != nil {
			return nil, fmt.Errorf("cache stats %s: %w", kind, err)
		}
		misses, err := cache.GetInt64(ctx, c.store, statsKey(kind, false))
		if err != nil {
			return nil, fmt.Errorf("cache stats %s: %w", kind, err)
		}
		s := models.CacheStats{Kind: kind, Hits: hits, Misses: misses}
		if total := hits + misses; total > 0 {
			s.HitRate = float64(hits) / float64(total)
		}
		out = append(out, s)
	}
	return out, nil
}

// Clear drops cached entries of one kind, or all kinds. Counters are kept.
func (c *CacheLayer) Clear(ctx context.Context, kind string) error {
	kinds := []string{kind}
	switch kind {
	case KindAll, "":
		kinds = Kinds()
	case KindSeries, KindPrices, KindBeta:
	default:
		return fmt.Errorf("unknown cache kind %q: %w", kind, models.ErrInvalidInput)
	}
	for _, k := range kinds {
		if err := c.store.DeleteByPattern(ctx, cache.BuildPattern(k+":")); err != nil {
			return fmt.Errorf("clear %s cache: %w", k, err)
		}
	}
	c.log.Info("cache cleared", applogger.String("kind", kind))
	return nil
}

type cachedSeries struct {
	layer *CacheLayer
	next  domrepo.SeriesProvider
}

func (s *cachedSeries) FetchSeries(ctx context.Context, seriesID string, start, end time.Time) (models.FactorSeries, error) {
	var out models.FactorSeries
	hit, err := s.layer.lookup(ctx, KindSeries, windowKey(KindSeries, seriesID, start, end), s.layer.ttl.Series, &out,
		func() (interface{}, error) { return s.next.FetchSeries(ctx, seriesID, start, end) })
	if err != nil {
		return models.FactorSeries{}, err
	}
	out.FromCache = hit
	return out, nil
}

type cachedPrices struct {
	layer *CacheLayer
	next  domrepo.PriceProvider
}

func (p *cachedPrices) FetchPriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	var out []models.PricePoint
	_, err := p.layer.lookup(ctx, KindPrices, windowKey(KindPrices, ticker, start, end), p.layer.ttl.Prices, &out,
		func() (interface{}, error) { return p.next.FetchPriceHistory(ctx, ticker, start, end) })
	if err != nil {
		return nil, err
	}
	return out, nil
}

type cachedBeta struct {
	layer *CacheLayer
	next  domsvc.BetaEstimator
	index string
}

func (b *cachedBeta) Estimate(ctx context.Context, ticker string, start, end time.Time) (models.BetaEstimate, error) {
	ticker = util.NormalizeTicker(ticker)
	if ticker == "" {
		return models.BetaEstimate{}, fmt.Errorf("beta: empty ticker: %w", models.ErrInvalidInput)
	}
	var out models.BetaEstimate
	hit, err := b.layer.lookup(ctx, KindBeta, betaKey(ticker, b.index, start, end), b.layer.ttl.Beta, &out,
		func() (interface{}, error) { return b.next.Estimate(ctx, ticker, start, end) })
	if err != nil {
		return models.BetaEstimate{}, err
	}
	out.FromCache = hit
	return out, nil
}
