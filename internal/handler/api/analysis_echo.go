package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/service/metrics"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/usecase"
	xhttp "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/http"
	xlogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

// AnalysisService is the use case surface the HTTP API needs.
type AnalysisService interface {
	usecase.Analyzer
	AnalyzeBatch(ctx context.Context, tickers []string, lookbackDays int, refresh bool) ([]models.BatchItem, error)
	CacheStats(ctx context.Context) ([]models.CacheStats, error)
	ClearCache(ctx context.Context, kind string) error
}

// AnalysisEchoHandler serves the analysis and cache endpoints.
type AnalysisEchoHandler struct {
	logger *xlogger.Logger
	svc    AnalysisService
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, svc AnalysisService) *AnalysisEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &AnalysisEchoHandler{logger: logger, svc: svc}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.POST("/analyze/batch", h.AnalyzeBatch)
	g.GET("/cache/stats", h.CacheStats)
	g.DELETE("/cache", h.ClearCache)
	g.GET("/health", h.Health)
}

func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	defer observe("analyze", time.Now())
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.EndpointErrors.WithLabelValues("analyze", "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	var asOf time.Time
	if req.AsOf != "" {
		asOf, _ = util.ParseTime(req.AsOf)
	}

	res, err := h.svc.Analyze(c.Request().Context(), usecase.AnalyzeParams{
		Ticker:       req.Ticker,
		LookbackDays: req.LookbackDays,
		Refresh:      req.Refresh,
		AsOf:         asOf,
	})
	if err != nil {
		return h.fail(c, "analyze", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) AnalyzeBatch(c echo.Context) error {
	defer observe("analyze_batch", time.Now())
	req := &models.BatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.EndpointErrors.WithLabelValues("analyze_batch", "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	metrics.BatchSize.Observe(float64(len(req.Tickers)))

	items, err := h.svc.AnalyzeBatch(c.Request().Context(), req.Tickers, req.LookbackDays, req.Refresh)
	if err != nil {
		return h.fail(c, "analyze_batch", err)
	}
	return xhttp.ListResponse(c, items, int64(len(items)))
}

func (h *AnalysisEchoHandler) CacheStats(c echo.Context) error {
	defer observe("cache_stats", time.Now())
	stats, err := h.svc.CacheStats(c.Request().Context())
	if err != nil {
		return h.fail(c, "cache_stats", err)
	}
	return xhttp.ListResponse(c, stats, int64(len(stats)))
}

func (h *AnalysisEchoHandler) ClearCache(c echo.Context) error {
	defer observe("cache_clear", time.Now())
	req := &models.CacheClearRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.EndpointErrors.WithLabelValues("cache_clear", "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	if err := h.svc.ClearCache(c.Request().Context(), req.Kind); err != nil {
		return h.fail(c, "cache_clear", err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"cleared": req.Kind})
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *AnalysisEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := ToAppError(err)
	metrics.EndpointErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
	} else {
		h.logger.Warn(endpoint+" rejected", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// ToAppError maps domain error kinds to HTTP application errors.
func ToAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return xhttp.NewAppError("ERR_INVALID_INPUT", "", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, models.ErrDataUnavailable):
		return xhttp.BadGatewayError("ERR_DATA_UNAVAILABLE", err.Error()).WithError(err)
	case errors.Is(err, models.ErrComputation):
		return xhttp.UnprocessableError("ERR_COMPUTATION", err.Error()).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

var _ xhttp.Handler = (*AnalysisEchoHandler)(nil)
