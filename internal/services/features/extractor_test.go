package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

func pt(day int, c float64) models.PricePoint {
	return models.PricePoint{Date: time.Date(2024, 3, day, 16, 0, 0, 0, time.UTC), Close: c}
}

func TestAlignCloses(t *testing.T) {
	stock := []models.PricePoint{pt(5, 12), pt(1, 10), pt(2, 0), pt(3, 11), pt(3, 99), pt(4, math.NaN())}
	market := []models.PricePoint{pt(1, 100), pt(2, 101), pt(3, 102), pt(5, 104), pt(6, 105)}

	s, m := AlignCloses(stock, market)
	assert.Equal(t, []float64{10, 11, 12}, s)
	assert.Equal(t, []float64{100, 102, 104}, m)
}

func TestPctReturns(t *testing.T) {
	assert.Nil(t, PctReturns([]float64{1}))
	r := PctReturns([]float64{100, 110, 99})
	assert.InDeltaSlice(t, []float64{0.1, -0.1}, r, 1e-12)
}

func TestCovarianceAndVariance(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ys := []float64{2, 4, 6, 8}
	assert.InDelta(t, 1.6666666667, Variance(xs), 1e-9)
	assert.InDelta(t, 3.3333333333, Covariance(xs, ys), 1e-9)
	assert.Equal(t, 0.0, Covariance([]float64{1}, []float64{2}))
	assert.Equal(t, 0.0, Variance([]float64{3, 3, 3}))
}

func TestTail(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.Equal(t, []float64{3, 4}, Tail(xs, 2))
	assert.Equal(t, xs, Tail(xs, 0))
	assert.Equal(t, xs, Tail(xs, 10))
}
