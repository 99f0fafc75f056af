package repository

import (
	"context"
	"time"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

// SeriesProvider returns macro series observations ordered by date ascending.
// Empty results, unknown series and transport failures are reported as models.ErrDataUnavailable.
type SeriesProvider interface {
	FetchSeries(ctx context.Context, seriesID string, start, end time.Time) (models.FactorSeries, error)
}

// PriceProvider returns daily closing prices ordered by date ascending, with the same
// failure contract as SeriesProvider.
type PriceProvider interface {
	FetchPriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)
}

// ObservationStore mirrors fetched observations so analyses can run from a local copy.
type ObservationStore interface {
	SeriesProvider
	PriceProvider
	SaveSeries(ctx context.Context, s models.FactorSeries) error
	SavePrices(ctx context.Context, ticker string, points []models.PricePoint) error
}

// ResultPublisher exports analysis results to downstream consumers.
type ResultPublisher interface {
	Publish(ctx context.Context, r *models.CompositeResult) error
	Close() error
}

// Metrics records pipeline observations.
type Metrics interface {
	RecordAnalysis(ticker, signal string, composite float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordCacheLookup(kind string, hit bool)
}
