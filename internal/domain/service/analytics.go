package service

import (
	"context"
	"time"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

// BetaEstimator estimates a stock's beta against the configured market index
// from daily closes in [start, end].
type BetaEstimator interface {
	Estimate(ctx context.Context, ticker string, start, end time.Time) (models.BetaEstimate, error)
}

// FactorScorer turns the three macro series and a beta into a composite result.
type FactorScorer interface {
	Score(in models.ScoreInput) (models.CompositeResult, error)
}
