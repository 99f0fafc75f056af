package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/usecase"
)

type stubService struct {
	analyzeErr error
	batchErr   error
	got        usecase.AnalyzeParams
	batch      []string
	cleared    string
}

func (s *stubService) Analyze(_ context.Context, p usecase.AnalyzeParams) (*models.CompositeResult, error) {
	s.got = p
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	return &models.CompositeResult{
		Ticker:         strings.ToUpper(p.Ticker),
		CompositeScore: 7.1,
		Signal:         models.SignalBuy,
		Confidence:     models.ConfidenceMedium,
	}, nil
}

func (s *stubService) AnalyzeBatch(_ context.Context, tickers []string, _ int, _ bool) ([]models.BatchItem, error) {
	s.batch = tickers
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	out := make([]models.BatchItem, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, models.BatchItem{Ticker: t, Error: "boom", Kind: "data_unavailable"})
	}
	return out, nil
}

func (s *stubService) CacheStats(context.Context) ([]models.CacheStats, error) {
	return []models.CacheStats{{Kind: "series", Hits: 1, Misses: 1, HitRate: 0.5}}, nil
}

func (s *stubService) ClearCache(_ context.Context, kind string) error {
	s.cleared = kind
	return nil
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, svc AnalysisService, method, target, body string) (int, envelope) {
	t.Helper()
	e := echo.New()
	NewAnalysisEchoHandler(nil, svc).RegisterRoutes(e)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func TestAnalyze_OK(t *testing.T) {
	svc := &stubService{}
	code, env := serve(t, svc, http.MethodGet, "/api/analyze?ticker=aapl&refresh=true&as_of=2024-03-01", "")
	require.Equal(t, http.StatusOK, code)

	var res models.CompositeResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "AAPL", res.Ticker)
	assert.Equal(t, models.SignalBuy, res.Signal)

	assert.Equal(t, "aapl", svc.got.Ticker)
	assert.Zero(t, svc.got.LookbackDays, "an omitted lookback is left to the analyzer default")
	assert.True(t, svc.got.Refresh)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), svc.got.AsOf)
}

func TestAnalyze_ValidationErrors(t *testing.T) {
	for _, target := range []string{
		"/api/analyze",
		"/api/analyze?ticker=AAPL&lookback_days=10",
		"/api/analyze?ticker=AAPL&as_of=2024-13-01",
		"/api/analyze?ticker=ABCDEFGHIJKLMNOP",
	} {
		code, env := serve(t, &stubService{}, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, code, target)
		assert.Equal(t, http.StatusBadRequest, env.Status, target)
	}
}

func TestAnalyze_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("ticker: %w", models.ErrInvalidInput), http.StatusBadRequest, "ERR_INVALID_INPUT"},
		{fmt.Errorf("fred: %w", models.ErrDataUnavailable), http.StatusBadGateway, "ERR_DATA_UNAVAILABLE"},
		{fmt.Errorf("variance: %w", models.ErrComputation), http.StatusUnprocessableEntity, "ERR_COMPUTATION"},
		{errors.New("nil map"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		code, env := serve(t, &stubService{analyzeErr: tc.err}, http.MethodGet, "/api/analyze?ticker=AAPL", "")
		assert.Equal(t, tc.status, code, tc.err.Error())
		if tc.code == "" {
			continue
		}
		var errs []struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &errs))
		require.Len(t, errs, 1)
		assert.Equal(t, tc.code, errs[0].Code)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	svc := &stubService{}
	code, env := serve(t, svc, http.MethodPost, "/api/analyze/batch", `{"tickers":["AAPL","MSFT"]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"AAPL", "MSFT"}, svc.batch)

	var list struct {
		Rows  []models.BatchItem `json:"rows"`
		Total int64              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, "data_unavailable", list.Rows[1].Kind)

	code, _ = serve(t, &stubService{}, http.MethodPost, "/api/analyze/batch", `{"tickers":[]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = serve(t, &stubService{batchErr: fmt.Errorf("x: %w", models.ErrInvalidInput)}, http.MethodPost, "/api/analyze/batch", `{"tickers":["A"]}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCacheEndpoints(t *testing.T) {
	svc := &stubService{}
	code, env := serve(t, svc, http.MethodGet, "/api/cache/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"hit_rate":0.5`)

	code, _ = serve(t, svc, http.MethodDelete, "/api/cache?kind=beta", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "beta", svc.cleared)

	code, _ = serve(t, svc, http.MethodDelete, "/api/cache", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "all", svc.cleared)

	code, _ = serve(t, svc, http.MethodDelete, "/api/cache?kind=quotes", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealth(t *testing.T) {
	code, env := serve(t, &stubService{}, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}
