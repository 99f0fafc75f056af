package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	domrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
)

func TestObservationSync_Run(t *testing.T) {
	store := newFakeStore()
	s := NewObservationSync(&fakeSeriesProvider{data: easingFixture()}, fakePriceProvider{}, store, "spy", 2, nil)

	rep, err := s.Run(context.Background(), []string{"aapl", "MSFT", "AAPL"}, day(2023, 1, 1), day(2024, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		domrepo.SeriesFedFunds:    4,
		domrepo.SeriesCPI:         13,
		domrepo.SeriesTreasury10Y: 22,
	}, rep.Series)
	assert.Equal(t, map[string]int{"SPY": 2, "AAPL": 2, "MSFT": 2}, rep.Prices)
	assert.Equal(t, rep.Series, store.series)
	assert.Equal(t, rep.Prices, store.prices)
}

func TestObservationSync_Failures(t *testing.T) {
	s := NewObservationSync(&fakeSeriesProvider{data: easingFixture()}, fakePriceProvider{}, newFakeStore(), "SPY", 2, nil)

	_, err := s.Run(context.Background(), []string{"NOPE"}, day(2023, 1, 1), day(2024, 1, 1))
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))

	_, err = s.Run(context.Background(), []string{"ABCDEFGHIJKL"}, day(2023, 1, 1), day(2024, 1, 1))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = s.Run(context.Background(), nil, day(2024, 1, 1), day(2023, 1, 1))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	assert.Equal(t, "invalid_input", models.ErrorKind(err))

	store := newFakeStore()
	store.err = errors.New("clickhouse down")
	s = NewObservationSync(&fakeSeriesProvider{data: easingFixture()}, fakePriceProvider{}, store, "SPY", 1, nil)
	_, err = s.Run(context.Background(), nil, day(2023, 1, 1), day(2024, 1, 1))
	assert.EqualError(t, err, "sync series FEDFUNDS: clickhouse down")
}
