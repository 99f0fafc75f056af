package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	pkgch "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/clickhouse"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
)

// ClickHouse tables holding mirrored upstream observations. ReplacingMergeTree keeps the
// newest ingest per key, so re-syncing a window is idempotent.
var chSchema = []string{
	`CREATE TABLE IF NOT EXISTS macro_observations (
		series_id   LowCardinality(String),
		date        Date,
		value       Float64,
		ingested_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(ingested_at)
	ORDER BY (series_id, date)`,
	`CREATE TABLE IF NOT EXISTS daily_prices (
		ticker      LowCardinality(String),
		date        Date,
		close       Float64,
		ingested_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(ingested_at)
	ORDER BY (ticker, date)`,
}

// CHObservationStore implements ObservationStore backed by ClickHouse.
type CHObservationStore struct {
	ch  *pkgch.Client
	db  *sql.DB
	log *applogger.Logger
}

func NewCHObservationStore(ch *pkgch.Client, log *applogger.Logger) *CHObservationStore {
	if log == nil {
		log = applogger.Nop()
	}
	return &CHObservationStore{ch: ch, db: ch.DB(), log: log.With(applogger.String("component", "clickhouse"))}
}

// EnsureSchema creates the mirror tables when missing.
func (s *CHObservationStore) EnsureSchema(ctx context.Context) error {
	return s.ch.InitSchema(ctx, chSchema)
}

func (s *CHObservationStore) FetchSeries(ctx context.Context, seriesID string, start, end time.Time) (models.FactorSeries, error) {
	began := time.Now()
	seriesID = strings.ToUpper(strings.TrimSpace(seriesID))
	const q = `
		SELECT date, value
		FROM macro_observations FINAL
		WHERE series_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, q, seriesID, start.UTC(), end.UTC())
	if err != nil {
		s.log.Error("clickhouse series query error", applogger.String("series", seriesID), applogger.Error(err))
		return models.FactorSeries{}, fmt.Errorf("clickhouse %s: %v: %w", seriesID, err, models.ErrDataUnavailable)
	}
	defer rows.Close()

	out := models.FactorSeries{SeriesID: seriesID}
	for rows.Next() {
		var o models.MacroObservation
		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			return models.FactorSeries{}, fmt.Errorf("clickhouse %s scan: %v: %w", seriesID, err, models.ErrDataUnavailable)
		}
		o.Date = o.Date.UTC()
		out.Observations = append(out.Observations, o)
	}
	if err := rows.Err(); err != nil {
		return models.FactorSeries{}, fmt.Errorf("clickhouse %s rows: %v: %w", seriesID, err, models.ErrDataUnavailable)
	}
	if len(out.Observations) == 0 {
		return out, fmt.Errorf("clickhouse %s: no observations in range: %w", seriesID, models.ErrDataUnavailable)
	}
	s.log.Debug("clickhouse series ok",
		applogger.String("series", seriesID),
		applogger.Int("rows", len(out.Observations)),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	return out, nil
}

func (s *CHObservationStore) FetchPriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	began := time.Now()
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	const q = `
		SELECT date, close
		FROM daily_prices FINAL
		WHERE ticker = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`
	rows, err := s.db.QueryContext(ctx, q, ticker, start.UTC(), end.UTC())
	if err != nil {
		s.log.Error("clickhouse prices query error", applogger.String("ticker", ticker), applogger.Error(err))
		return nil, fmt.Errorf("clickhouse %s: %v: %w", ticker, err, models.ErrDataUnavailable)
	}
	defer rows.Close()

	out := make([]models.PricePoint, 0, 256)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("clickhouse %s scan: %v: %w", ticker, err, models.ErrDataUnavailable)
		}
		p.Date = p.Date.UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clickhouse %s rows: %v: %w", ticker, err, models.ErrDataUnavailable)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("clickhouse %s: no prices in range: %w", ticker, models.ErrDataUnavailable)
	}
	s.log.Debug("clickhouse prices ok",
		applogger.String("ticker", ticker),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	return out, nil
}

// SaveSeries upserts every observation of the series.
func (s *CHObservationStore) SaveSeries(ctx context.Context, series models.FactorSeries) error {
	rows := make([][]any, 0, len(series.Observations))
	for _, o := range series.Observations {
		rows = append(rows, []any{series.SeriesID, o.Date.UTC(), o.Value})
	}
	if err := s.ch.InsertBatch(ctx, "INSERT INTO macro_observations (series_id, date, value)", rows); err != nil {
		return fmt.Errorf("save series %s: %w", series.SeriesID, err)
	}
	return nil
}

// SavePrices upserts daily closes for ticker.
func (s *CHObservationStore) SavePrices(ctx context.Context, ticker string, points []models.PricePoint) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	rows := make([][]any, 0, len(points))
	for _, p := range points {
		rows = append(rows, []any{ticker, p.Date.UTC(), p.Close})
	}
	if err := s.ch.InsertBatch(ctx, "INSERT INTO daily_prices (ticker, date, close)", rows); err != nil {
		return fmt.Errorf("save prices %s: %w", ticker, err)
	}
	return nil
}
