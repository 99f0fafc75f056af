package di

import (
	"context"
	"fmt"
	"time"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
	domsvc "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/service"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/handler/api"
	internalrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/repository"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/service/fred"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/service/ratelimit"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/service/yahoo"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/services/beta"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/services/scoring"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/usecase"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/cache"
	pkgch "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/clickhouse"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/config"
	pkgkafka "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/kafka"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/metrics"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/server"
)

func noop() {}

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config) repository.Metrics {
	if cfg.Metrics.Disabled {
		return metrics.Nop{}
	}
	return metrics.New()
}

func connectClickHouse(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	l.Info("clickhouse connected",
		applogger.String("host", cfg.ClickHouse.Host),
		applogger.String("database", cfg.ClickHouse.Database),
	)
	return client, func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}, nil
}

// ProvideClickHouseClient connects only when a provider reads from the mirror.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.NeedsClickHouse() {
		return nil, noop, nil
	}
	return connectClickHouse(cfg, l)
}

// ProvideMirrorClickHouseClient always connects; the sync job writes to the mirror.
func ProvideMirrorClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	return connectClickHouse(cfg, l)
}

// ProvideObservationStore creates the mirror tables and returns the store, or nil without a client.
func ProvideObservationStore(ch *pkgch.Client, l *applogger.Logger) (*internalrepo.CHObservationStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewCHObservationStore(ch, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideFredClient creates the FRED REST client.
func ProvideFredClient(cfg *config.Config, l *applogger.Logger) (*fred.Client, error) {
	return fred.New(fred.Config{
		APIKey:  cfg.Fred.APIKey,
		BaseURL: cfg.Fred.BaseURL,
		Timeout: cfg.Fred.Timeout,
		Retries: cfg.Fred.Retries,
	},
		fred.WithLimiter(ratelimit.New(cfg.Fred.RatePerSec, cfg.Fred.Burst)),
		fred.WithLogger(l.With(applogger.String("component", "fred"))),
	)
}

// ProvideYahooClient creates the Yahoo Finance price client.
func ProvideYahooClient(cfg *config.Config, l *applogger.Logger) *yahoo.Client {
	return yahoo.New(
		yahoo.WithLimiter(ratelimit.New(cfg.Market.RatePerSec, cfg.Market.Burst)),
		yahoo.WithTimeout(cfg.Market.Timeout),
		yahoo.WithLogger(l.With(applogger.String("component", "yahoo"))),
	)
}

// ProvideSeriesProvider selects the macro source.
func ProvideSeriesProvider(cfg *config.Config, store *internalrepo.CHObservationStore, l *applogger.Logger) (repository.SeriesProvider, error) {
	if cfg.Macro.Source == "clickhouse" {
		if store == nil {
			return nil, fmt.Errorf("macro source clickhouse: no observation store")
		}
		return store, nil
	}
	fc, err := ProvideFredClient(cfg, l)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// ProvidePriceProvider selects the equity price source.
func ProvidePriceProvider(cfg *config.Config, store *internalrepo.CHObservationStore, l *applogger.Logger) (repository.PriceProvider, error) {
	if cfg.Market.Source == "clickhouse" {
		if store == nil {
			return nil, fmt.Errorf("market source clickhouse: no observation store")
		}
		return store, nil
	}
	return ProvideYahooClient(cfg, l), nil
}

// ProvideCacheStore builds the configured cache backend; "none" yields nil.
func ProvideCacheStore(cfg *config.Config) (cache.Service, func(), error) {
	var (
		store cache.Service
		err   error
	)
	redisOpts := []cache.RedisOption{
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, 2, 5*time.Second),
	}
	switch cfg.Cache.Backend {
	case "none":
		return nil, noop, nil
	case "memory":
		store = cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
	case "redis":
		store, err = cache.NewRedisCache(redisOpts...)
	case "layered":
		var rc *cache.RedisCache
		if rc, err = cache.NewRedisCache(redisOpts...); err == nil {
			store = cache.NewLayeredCache(rc,
				cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize),
				cache.WithLayeredL1TTL(time.Hour),
			)
		}
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cache %s: %w", cfg.Cache.Backend, err)
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvideCacheLayer wraps the store with per-kind TTLs; nil when caching is off.
func ProvideCacheLayer(store cache.Service, cfg *config.Config, m repository.Metrics, l *applogger.Logger) *internalrepo.CacheLayer {
	if store == nil {
		return nil
	}
	return internalrepo.NewCacheLayer(store, internalrepo.TTLs{
		Series: cfg.Cache.SeriesTTL,
		Prices: cfg.Cache.PriceTTL,
		Beta:   cfg.Cache.BetaTTL,
	}, m, l)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideResultPublisher exports results to Kafka when a producer exists.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) (repository.ResultPublisher, func()) {
	if producer == nil {
		return internalrepo.NopPublisher{}, noop
	}
	pub := internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.ResultsTopic)
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
}

// ProvideFactorAnalyzer assembles the cached providers, beta estimator and scorer.
func ProvideFactorAnalyzer(
	cfg *config.Config,
	series repository.SeriesProvider,
	prices repository.PriceProvider,
	layer *internalrepo.CacheLayer,
	pub repository.ResultPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.FactorAnalyzer {
	if layer != nil {
		series = layer.Series(series)
		prices = layer.Prices(prices)
	}
	est := beta.NewEstimator(prices,
		beta.WithMarketIndex(cfg.Market.IndexTicker),
		beta.WithWindow(cfg.Analysis.BetaWindow),
		beta.WithMinPoints(cfg.Analysis.MinBetaPoints),
		beta.WithLogger(l.With(applogger.String("component", "beta"))),
	)

	opts := []usecase.AnalyzerOption{
		usecase.WithPublisher(pub),
		usecase.WithDefaultLookback(cfg.Analysis.LookbackDays),
		usecase.WithBatchWorkers(cfg.Analysis.BatchWorkers),
		usecase.WithAnalyzerLogger(l),
	}
	var estimator domsvc.BetaEstimator = est
	if layer != nil {
		estimator = layer.Beta(est, est.MarketIndex())
		opts = append(opts, usecase.WithCacheAdmin(layer))
	}
	return usecase.NewFactorAnalyzer(series, estimator, scoring.NewScorer(), m, opts...)
}

// ProvideKafkaConsumer creates the request consumer, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideAnalysisRequestHandler handles the requests topic.
func ProvideAnalysisRequestHandler(cfg *config.Config, a *usecase.FactorAnalyzer, m repository.Metrics, l *applogger.Logger) *usecase.AnalysisRequestHandler {
	return usecase.NewAnalysisRequestHandler(cfg.Kafka.RequestsTopic, a, m, l)
}

// ProvideAnalysisHandler creates the echo handler for the analysis API.
func ProvideAnalysisHandler(l *applogger.Logger, a *usecase.FactorAnalyzer) *api.AnalysisEchoHandler {
	return api.NewAnalysisEchoHandler(l.With(applogger.String("component", "api")), a)
}

// ProvideObservationSync builds the mirror job over the live upstreams.
func ProvideObservationSync(
	cfg *config.Config,
	fc *fred.Client,
	yc *yahoo.Client,
	store *internalrepo.CHObservationStore,
	l *applogger.Logger,
) *usecase.ObservationSync {
	return usecase.NewObservationSync(fc, yc, store, cfg.Market.IndexTicker, cfg.Analysis.BatchWorkers, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h *api.AnalysisEchoHandler,
	consumer *pkgkafka.Consumer,
	rh *usecase.AnalysisRequestHandler,
) *server.App {
	return server.New(cfg, l, h, consumer, rh)
}
