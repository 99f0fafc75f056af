package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

func ts(day int) int {
	return int(time.Date(2024, 5, day, 13, 30, 0, 0, time.UTC).Unix())
}

func TestFetchPriceHistory_PrefersAdjustedClose(t *testing.T) {
	var gotStart, gotEnd time.Time
	c := New(WithChartFunc(func(symbol string, start, end time.Time) ([]Bar, error) {
		assert.Equal(t, "AAPL", symbol)
		gotStart, gotEnd = start, end
		return []Bar{
			{Timestamp: ts(3), Close: decimal.NewFromFloat(190), AdjClose: decimal.NewFromFloat(189.5)},
			{Timestamp: ts(2), Close: decimal.NewFromFloat(185), AdjClose: decimal.Zero},
			{Timestamp: ts(6), Close: decimal.Zero, AdjClose: decimal.Zero},
		}, nil
	}))

	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	pts, err := c.FetchPriceHistory(context.Background(), " aapl", start, end)
	require.NoError(t, err)

	assert.Equal(t, start, gotStart)
	assert.Equal(t, end.AddDate(0, 0, 1), gotEnd)
	require.Len(t, pts, 2)
	assert.Equal(t, "2024-05-02", models.DateKey(pts[0].Date))
	assert.Equal(t, 185.0, pts[0].Close)
	assert.Equal(t, 189.5, pts[1].Close)
}

func TestFetchPriceHistory_Errors(t *testing.T) {
	failing := New(WithChartFunc(func(string, time.Time, time.Time) ([]Bar, error) {
		return nil, errors.New("404 Not Found")
	}))
	_, err := failing.FetchPriceHistory(context.Background(), "ZZZZ", time.Now().AddDate(0, -1, 0), time.Now())
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))

	empty := New(WithChartFunc(func(string, time.Time, time.Time) ([]Bar, error) { return nil, nil }))
	_, err = empty.FetchPriceHistory(context.Background(), "SPY", time.Now().AddDate(0, -1, 0), time.Now())
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))

	_, err = empty.FetchPriceHistory(context.Background(), "  ", time.Now(), time.Now())
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestFetchPriceHistory_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := New(WithTimeout(20*time.Millisecond), WithChartFunc(func(string, time.Time, time.Time) ([]Bar, error) {
		<-release
		return nil, nil
	}))

	_, err := c.FetchPriceHistory(context.Background(), "SPY", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	assert.Contains(t, err.Error(), "no response after")
}
