package features

import (
	"math"
	"sort"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
)

// AlignCloses pairs the closes of two price histories on common calendar days.
// Points with a non-positive or non-finite close are dropped before matching.
// The returned slices are ordered by date ascending and have equal length.
func AlignCloses(stock, market []models.PricePoint) ([]float64, []float64) {
	mkt := make(map[string]float64, len(market))
	for _, p := range market {
		if validClose(p.Close) {
			mkt[models.DateKey(p.Date)] = p.Close
		}
	}

	type pair struct {
		key  string
		s, m float64
	}
	pairs := make([]pair, 0, len(stock))
	seen := make(map[string]struct{}, len(stock))
	for _, p := range stock {
		if !validClose(p.Close) {
			continue
		}
		k := models.DateKey(p.Date)
		if _, dup := seen[k]; dup {
			continue
		}
		m, ok := mkt[k]
		if !ok {
			continue
		}
		seen[k] = struct{}{}
		pairs = append(pairs, pair{key: k, s: p.Close, m: m})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	xs := make([]float64, len(pairs))
	ys := make([]float64, len(pairs))
	for i, p := range pairs {
		xs[i] = p.s
		ys[i] = p.m
	}
	return xs, ys
}

// PctReturns computes simple returns r_t = C_t / C_{t-1} - 1.
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func PctReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, closes[i]/closes[i-1]-1)
	}
	return out
}

// Tail returns the last n elements of xs (all of xs when n <= 0 or n >= len).
func Tail(xs []float64, n int) []float64 {
	if n <= 0 || n >= len(xs) {
		return xs
	}
	return xs[len(xs)-n:]
}

// Mean of xs; 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Covariance is the sample covariance (n-1 denominator) of two equal-length series.
// Returns 0 when fewer than two pairs are available.
func Covariance(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	if n < 2 {
		return 0
	}
	mx, my := Mean(xs[:n]), Mean(ys[:n])
	acc := 0.0
	for i := 0; i < n; i++ {
		acc += (xs[i] - mx) * (ys[i] - my)
	}
	return acc / float64(n-1)
}

// Variance is the sample variance of xs.
func Variance(xs []float64) float64 {
	v := Covariance(xs, xs)
	if v < 0 {
		v = 0
	}
	return v
}

func validClose(c float64) bool {
	return c > 0 && !math.IsNaN(c) && !math.IsInf(c, 0)
}
