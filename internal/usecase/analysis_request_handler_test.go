package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	pkgkafka "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/kafka"
)

type stubAnalyzer struct {
	got AnalyzeParams
	err error
}

func (s *stubAnalyzer) Analyze(_ context.Context, p AnalyzeParams) (*models.CompositeResult, error) {
	s.got = p
	if s.err != nil {
		return nil, s.err
	}
	return &models.CompositeResult{Ticker: p.Ticker, Signal: models.SignalHold}, nil
}

func isPermanent(err error) bool {
	var pe *pkgkafka.PermanentError
	return errors.As(err, &pe)
}

func TestAnalysisRequestHandler_Handle(t *testing.T) {
	an := &stubAnalyzer{}
	h := NewAnalysisRequestHandler("factor.requests", an, newFakeMetrics(), nil)
	assert.Equal(t, "factor.requests", h.Topic())

	err := h.Handle(context.Background(), []byte(`{"ticker":"msft","refresh":true,"as_of":"2024-03-01"}`))
	require.NoError(t, err)
	assert.Equal(t, "msft", an.got.Ticker)
	assert.Zero(t, an.got.LookbackDays)
	assert.True(t, an.got.Refresh)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), an.got.AsOf)
}

func TestAnalysisRequestHandler_BadMessagesArePermanent(t *testing.T) {
	m := newFakeMetrics()
	h := NewAnalysisRequestHandler("factor.requests", &stubAnalyzer{}, m, nil)

	err := h.Handle(context.Background(), []byte(`{not json`))
	assert.True(t, isPermanent(err))

	err = h.Handle(context.Background(), []byte(`{"lookback_days":365}`))
	assert.True(t, isPermanent(err))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	err = h.Handle(context.Background(), []byte(`{"ticker":"AAPL","lookback_days":10}`))
	assert.True(t, isPermanent(err))

	assert.Equal(t, 1, m.errors["consumer_unmarshal"])
	assert.Equal(t, 2, m.errors["consumer_validate"])
}

func TestAnalysisRequestHandler_RetryOnlyUpstreamOutages(t *testing.T) {
	an := &stubAnalyzer{err: fmt.Errorf("fred: %w", models.ErrDataUnavailable)}
	h := NewAnalysisRequestHandler("factor.requests", an, newFakeMetrics(), nil)
	err := h.Handle(context.Background(), []byte(`{"ticker":"AAPL"}`))
	require.Error(t, err)
	assert.False(t, isPermanent(err))

	an.err = fmt.Errorf("variance: %w", models.ErrComputation)
	err = h.Handle(context.Background(), []byte(`{"ticker":"AAPL"}`))
	assert.True(t, isPermanent(err))
}
