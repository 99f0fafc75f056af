package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	domrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
	xhttp "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/http"
	pkgkafka "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/kafka"
	applogger "github.com/Paulpandian-ai/factor-impact-intelligence/pkg/logger"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/util"
)

// Analyzer runs a single analysis.
type Analyzer interface {
	Analyze(ctx context.Context, p AnalyzeParams) (*models.CompositeResult, error)
}

// AnalysisRequestHandler consumes analysis requests from Kafka. Results reach the results
// topic through the analyzer's publisher.
type AnalysisRequestHandler struct {
	topic    string
	analyzer Analyzer
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewAnalysisRequestHandler(topic string, analyzer Analyzer, metrics domrepo.Metrics, l *applogger.Logger) *AnalysisRequestHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &AnalysisRequestHandler{
		topic:    topic,
		analyzer: analyzer,
		metrics:  metrics,
		l:        l.With(applogger.String("component", "request_handler")),
	}
}

func (h *AnalysisRequestHandler) Topic() string { return h.topic }

// incoming message schema: {ticker, lookback_days, refresh, as_of}
func (h *AnalysisRequestHandler) Handle(ctx context.Context, b []byte) error {
	var req models.AnalyzeRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode analysis request: %w", err))
	}
	if verrs := xhttp.ValidateStruct(ctx, &req); len(verrs) > 0 {
		h.metrics.RecordError("consumer_validate")
		return pkgkafka.Permanent(fmt.Errorf("analysis request: %s: %w", xhttp.JoinValidationErrors(verrs), models.ErrInvalidInput))
	}

	var asOf time.Time
	if req.AsOf != "" {
		asOf, _ = util.ParseTime(req.AsOf)
	}

	start := time.Now()
	res, err := h.analyzer.Analyze(ctx, AnalyzeParams{
		Ticker:       req.Ticker,
		LookbackDays: req.LookbackDays,
		Refresh:      req.Refresh,
		AsOf:         asOf,
	})
	h.metrics.RecordLatency("consumer_analyze_seconds", time.Since(start).Seconds())
	if err != nil {
		// upstream outages may clear up; bad input and degenerate data will not
		if errors.Is(err, models.ErrDataUnavailable) {
			return err
		}
		return pkgkafka.Permanent(err)
	}
	h.l.Debug("request handled",
		applogger.String("ticker", res.Ticker),
		applogger.String("signal", string(res.Signal)),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*AnalysisRequestHandler)(nil)
