// Package yahoo reads daily closing prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/service/ratelimit"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
)

const limiterKey = "yahoo"

// Bar is the subset of a chart bar the client needs.
type Bar struct {
	Timestamp int
	Close     decimal.Decimal
	AdjClose  decimal.Decimal
}

// ChartFunc loads daily bars for a symbol. The default implementation calls finance-go.
type ChartFunc func(symbol string, start, end time.Time) ([]Bar, error)

// Option configures Client.
type Option func(*Client)

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout bounds one upstream chart call. finance-go takes no context, so the call is
// abandoned rather than cancelled.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithChartFunc replaces the upstream call; used by tests and offline fixtures.
func WithChartFunc(f ChartFunc) Option {
	return func(c *Client) { c.chart = f }
}

// Client implements domain repository.PriceProvider.
type Client struct {
	chart   ChartFunc
	limiter *ratelimit.Limiter
	timeout time.Duration
	log     *applogger.Logger
}

type chartResult struct {
	bars []Bar
	err  error
}

func New(opts ...Option) *Client {
	c := &Client{chart: fetchChart, log: applogger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPriceHistory returns daily closes for ticker between start and end inclusive, ascending.
// Adjusted closes are preferred so splits and dividends do not show up as returns.
func (c *Client) FetchPriceHistory(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("yahoo: empty ticker: %w", models.ErrInvalidInput)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey); err != nil {
			return nil, fmt.Errorf("yahoo %s: rate limit wait: %w", ticker, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	began := time.Now()
	// the chart end bound is exclusive
	bars, err := c.loadChart(ctx, ticker, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %v: %w", ticker, err, models.ErrDataUnavailable)
	}

	points := toPricePoints(bars)
	if len(points) == 0 {
		return nil, fmt.Errorf("yahoo %s: no prices in range: %w", ticker, models.ErrDataUnavailable)
	}
	c.log.Debug("yahoo prices fetched",
		applogger.String("ticker", ticker),
		applogger.Int("points", len(points)),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	return points, nil
}

func (c *Client) loadChart(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	done := make(chan chartResult, 1)
	go func() {
		bars, err := c.chart(ticker, start, end)
		done <- chartResult{bars: bars, err: err}
	}()

	var expired <-chan time.Time
	if c.timeout > 0 {
		t := time.NewTimer(c.timeout)
		defer t.Stop()
		expired = t.C
	}
	select {
	case r := <-done:
		return r.bars, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-expired:
		return nil, fmt.Errorf("no response after %s", c.timeout)
	}
}

func toPricePoints(bars []Bar) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(bars))
	for _, b := range bars {
		px := b.AdjClose
		if !px.IsPositive() {
			px = b.Close
		}
		if !px.IsPositive() {
			continue
		}
		out = append(out, models.PricePoint{
			Date:  time.Unix(int64(b.Timestamp), 0).UTC(),
			Close: px.InexactFloat64(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func fetchChart(symbol string, start, end time.Time) ([]Bar, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars []Bar
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, Bar{Timestamp: b.Timestamp, Close: b.Close, AdjClose: b.AdjClose})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return bars, nil
}
