package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	domrepo "github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/repository"
	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/services/beta"
)

// Scorer implements service.FactorScorer. It holds no state.
type Scorer struct{}

func NewScorer() *Scorer { return &Scorer{} }

// Score trends each series, then combines them with the beta into a composite result.
func (s *Scorer) Score(in models.ScoreInput) (models.CompositeResult, error) {
	if strings.TrimSpace(in.Ticker) == "" {
		return models.CompositeResult{}, fmt.Errorf("score: empty ticker: %w", models.ErrInvalidInput)
	}
	if math.IsNaN(in.Beta.Beta) || math.IsInf(in.Beta.Beta, 0) {
		return models.CompositeResult{}, fmt.Errorf("score %s: beta is not finite: %w", in.Ticker, models.ErrComputation)
	}

	fed, err := FedFundsTrend(in.FedFunds)
	if err != nil {
		return models.CompositeResult{}, fmt.Errorf("score %s: fed funds: %w", in.Ticker, err)
	}
	inf, err := InflationTrend(in.Inflation)
	if err != nil {
		return models.CompositeResult{}, fmt.Errorf("score %s: inflation: %w", in.Ticker, err)
	}
	yld, err := TreasuryTrend(in.TreasuryYield)
	if err != nil {
		return models.CompositeResult{}, fmt.Errorf("score %s: treasury: %w", in.Ticker, err)
	}

	r := Assemble(in.Ticker, in.Beta.Beta, fed, inf, yld)
	r.MarketIndex = in.Beta.MarketIndex
	r.AsOf = in.AsOf
	r.LookbackDays = in.LookbackDays
	r.Cache = models.CacheInfo{
		FedFunds:      in.FedFunds.FromCache,
		Inflation:     in.Inflation.FromCache,
		TreasuryYield: in.TreasuryYield.FromCache,
		Beta:          in.Beta.FromCache,
	}
	return r, nil
}

// Assemble runs the pure part of the pipeline: beta adjustment, weighting,
// composite mapping, signal, confidence and rationale.
func Assemble(ticker string, b float64, fed, inflation, yield Trend) models.CompositeResult {
	class := beta.Classify(b)
	scores := []models.FactorScore{
		factorScore(models.FactorFedFunds, domrepo.SeriesFedFunds, fed, WeightFedFunds, class),
		factorScore(models.FactorInflation, domrepo.SeriesCPI, inflation, WeightInflation, class),
		factorScore(models.FactorTreasuryYield, domrepo.SeriesTreasury10Y, yield, WeightTreasuryYield, class),
	}

	ws := WeightedSum(scores[0].AdjustedScore, scores[1].AdjustedScore, scores[2].AdjustedScore)
	composite := Composite(ws)

	r := models.CompositeResult{
		Ticker:         strings.ToUpper(strings.TrimSpace(ticker)),
		Beta:           b,
		BetaClass:      class,
		FactorScores:   scores,
		WeightedSum:    ws,
		CompositeScore: composite,
		Signal:         MapSignal(composite),
		Confidence: ConfidenceFor([]float64{
			scores[0].AdjustedScore, scores[1].AdjustedScore, scores[2].AdjustedScore,
		}, ws),
	}
	r.Rationale = Rationale(r)
	return r
}

func factorScore(f models.Factor, seriesID string, t Trend, weight float64, class models.BetaClass) models.FactorScore {
	raw := ClampRaw(t.Score)
	return models.FactorScore{
		Factor:        f,
		SeriesID:      seriesID,
		Trend:         t.Label,
		Change:        t.Change,
		Latest:        t.Latest,
		RawScore:      raw,
		AdjustedScore: Adjust(raw, class),
		Weight:        weight,
	}
}
