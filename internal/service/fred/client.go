// Package fred fetches macroeconomic series from the St. Louis Fed FRED REST API.
package fred

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/service/ratelimit"
	xhttp "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/http"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

const (
	DefaultBaseURL = "https://api.stlouisfed.org/fred"
	limiterKey     = "fred"
	// missingValue is how FRED marks a date without an observation.
	missingValue = "."
)

// Config carries credentials and transport tuning. Nothing is read from globals.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Retries int
}

// Option configures Client.
type Option func(*Client)

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client implements domain repository.SeriesProvider.
type Client struct {
	apiKey  string
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	log     *applogger.Logger
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// New creates a FRED client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("fred api key is required: %w", models.ErrInvalidInput)
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		apiKey: cfg.APIKey,
		http: xhttp.NewClient(
			xhttp.WithBaseURL(strings.TrimRight(base, "/")),
			xhttp.WithTimeout(cfg.Timeout),
			xhttp.WithRetries(cfg.Retries, 500*time.Millisecond),
		),
		log: applogger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchSeries returns the observations of seriesID between start and end, ascending.
// Dates FRED reports as missing are dropped.
func (c *Client) FetchSeries(ctx context.Context, seriesID string, start, end time.Time) (models.FactorSeries, error) {
	seriesID = strings.ToUpper(strings.TrimSpace(seriesID))
	if seriesID == "" {
		return models.FactorSeries{}, fmt.Errorf("fred: empty series id: %w", models.ErrInvalidInput)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey); err != nil {
			return models.FactorSeries{}, fmt.Errorf("fred %s: rate limit wait: %w", seriesID, err)
		}
	}

	began := time.Now()
	var resp observationsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    "/series/observations",
		QueryParams: map[string][]string{
			"series_id":         {seriesID},
			"api_key":           {c.apiKey},
			"file_type":         {"json"},
			"sort_order":        {"asc"},
			"observation_start": {start.UTC().Format(util.DateLayout)},
			"observation_end":   {end.UTC().Format(util.DateLayout)},
		},
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) {
			return models.FactorSeries{}, fmt.Errorf("fred %s: status %d: %w", seriesID, se.StatusCode, models.ErrDataUnavailable)
		}
		return models.FactorSeries{}, fmt.Errorf("fred %s: %v: %w", seriesID, err, models.ErrDataUnavailable)
	}

	series, skipped, err := parseObservations(seriesID, resp)
	if err != nil {
		return models.FactorSeries{}, err
	}
	c.log.Debug("fred series fetched",
		applogger.String("series", seriesID),
		applogger.Int("observations", series.Len()),
		applogger.Int("skipped", skipped),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	return series, nil
}

func parseObservations(seriesID string, resp observationsResponse) (models.FactorSeries, int, error) {
	out := models.FactorSeries{SeriesID: seriesID}
	skipped := 0
	for _, o := range resp.Observations {
		if o.Value == missingValue || o.Value == "" {
			skipped++
			continue
		}
		d, err := time.Parse(util.DateLayout, o.Date)
		if err != nil {
			skipped++
			continue
		}
		v, err := decimal.NewFromString(o.Value)
		if err != nil {
			skipped++
			continue
		}
		out.Observations = append(out.Observations, models.MacroObservation{Date: d, Value: v.InexactFloat64()})
	}
	if len(out.Observations) == 0 {
		return out, skipped, fmt.Errorf("fred %s: no observations in range: %w", seriesID, models.ErrDataUnavailable)
	}
	sort.SliceStable(out.Observations, func(i, j int) bool {
		return out.Observations[i].Date.Before(out.Observations[j].Date)
	})
	return out, skipped, nil
}
