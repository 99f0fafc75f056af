//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/usecase"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/config"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/server"
)

var analysisSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideMetrics,

	// Infrastructure clients
	ProvideClickHouseClient,
	ProvideObservationStore,
	ProvideCacheStore,
	ProvideKafkaProducer,

	// Repositories
	ProvideSeriesProvider,
	ProvidePriceProvider,
	ProvideCacheLayer,
	ProvideResultPublisher,

	// Use cases
	ProvideFactorAnalyzer,
)

// InitializeApp wires the HTTP API, the Kafka request consumer and their dependencies.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		analysisSet,
		ProvideKafkaConsumer,
		ProvideAnalysisRequestHandler,
		ProvideAnalysisHandler,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeAnalyzer wires the analyzer alone, for the CLI.
func InitializeAnalyzer(cfg *config.Config) (*usecase.FactorAnalyzer, func(), error) {
	wire.Build(analysisSet)
	return nil, nil, nil
}

// InitializeSync wires the observation mirror job over the live upstreams.
func InitializeSync(cfg *config.Config) (*usecase.ObservationSync, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMirrorClickHouseClient,
		ProvideObservationStore,
		ProvideFredClient,
		ProvideYahooClient,
		ProvideObservationSync,
	)
	return nil, nil, nil
}
