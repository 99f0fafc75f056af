package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	domrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

// SyncReport counts what one sync run wrote.
type SyncReport struct {
	Series       map[string]int `json:"series"`
	Prices       map[string]int `json:"prices"`
	Start        time.Time      `json:"start"`
	End          time.Time      `json:"end"`
	DurationSecs float64        `json:"duration_seconds"`
}

// ObservationSync copies upstream observations into the local store so analyses can run
// against the mirror.
type ObservationSync struct {
	series  domrepo.SeriesProvider
	prices  domrepo.PriceProvider
	store   domrepo.ObservationStore
	index   string
	workers int
	l       *applogger.Logger
}

func NewObservationSync(series domrepo.SeriesProvider, prices domrepo.PriceProvider, store domrepo.ObservationStore, index string, workers int, l *applogger.Logger) *ObservationSync {
	if l == nil {
		l = applogger.Nop()
	}
	if workers < 1 {
		workers = 1
	}
	if index == "" {
		index = domrepo.DefaultMarketTicker
	}
	return &ObservationSync{
		series:  series,
		prices:  prices,
		store:   store,
		index:   util.NormalizeTicker(index),
		workers: workers,
		l:       l.With(applogger.String("component", "sync")),
	}
}

// Run mirrors the tracked macro series over [start, end] and the price history of every
// ticker plus the market index. The first failure stops the run.
func (s *ObservationSync) Run(ctx context.Context, tickers []string, start, end time.Time) (*SyncReport, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("sync: end %s not after start %s: %w", end.Format(util.DateLayout), start.Format(util.DateLayout), models.ErrInvalidInput)
	}
	t0 := time.Now()
	symbols := util.ParseTickers(append([]string{s.index}, tickers...)...)
	for _, t := range symbols {
		if _, err := NormalizeTicker(t); err != nil {
			return nil, fmt.Errorf("sync: %w", err)
		}
	}

	seriesIDs := domrepo.TrackedSeries()
	seriesCounts := make([]int, len(seriesIDs))
	priceCounts := make([]int, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range seriesIDs {
		g.Go(func() error {
			fs, err := s.series.FetchSeries(gctx, id, start, end)
			if err != nil {
				return fmt.Errorf("sync series %s: %w", id, err)
			}
			if err := s.store.SaveSeries(gctx, fs); err != nil {
				return fmt.Errorf("sync series %s: %w", id, err)
			}
			seriesCounts[i] = fs.Len()
			return nil
		})
	}
	for i, t := range symbols {
		g.Go(func() error {
			pts, err := s.prices.FetchPriceHistory(gctx, t, start, end)
			if err != nil {
				return fmt.Errorf("sync prices %s: %w", t, err)
			}
			if err := s.store.SavePrices(gctx, t, pts); err != nil {
				return fmt.Errorf("sync prices %s: %w", t, err)
			}
			priceCounts[i] = len(pts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.l.Error("sync failed", applogger.Error(err))
		return nil, err
	}

	rep := &SyncReport{
		Series:       make(map[string]int, len(seriesIDs)),
		Prices:       make(map[string]int, len(symbols)),
		Start:        start,
		End:          end,
		DurationSecs: time.Since(t0).Seconds(),
	}
	for i, id := range seriesIDs {
		rep.Series[id] = seriesCounts[i]
	}
	for i, t := range symbols {
		rep.Prices[t] = priceCounts[i]
	}
	s.l.Info("sync complete",
		applogger.Strings("series", seriesIDs),
		applogger.Strings("tickers", symbols),
		applogger.Duration("duration_ms", time.Since(t0)),
	)
	return rep, nil
}
