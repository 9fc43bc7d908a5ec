// Package similarity ranks face embeddings against a query embedding.
//
// Scores are the cosine of L2-normalized vectors, rounded to two decimals,
// doubled and capped at 1.0. Existing thresholds are calibrated against this
// transform, so it must not change without recalibrating them.
package similarity

import (
	"math"
	"sort"
	"strconv"
)

// DefaultLimit is the number of matches returned when Options.Limit is not positive.
const DefaultLimit = 1

// Normalize returns v scaled to unit length. It reports false for an empty
// or zero-norm vector.
func Normalize(v []float64) ([]float64, bool) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, false
	}

	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out, true
}

// Dot returns the dot product of two equal-length vectors.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Transform maps a raw cosine to the reported similarity. Rounding works on
// the exact binary value with ties to even, so 0.295 (stored just below)
// becomes 0.29 and 0.125 becomes 0.12.
func Transform(cos float64) float64 {
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(cos, 'f', 2, 64), 64)
	return math.Min(rounded*2, 1.0)
}

// Score compares two already-normalized vectors.
func Score(query, candidate []float64) float64 {
	return Transform(Dot(query, candidate))
}

// Options controls thresholding of a ranking.
type Options struct {
	Threshold      float64
	WearMask       bool
	MaskSubtrahend float64
	Limit          int
}

// EffectiveThreshold lowers the threshold by MaskSubtrahend for masked faces, never below zero.
func (o Options) EffectiveThreshold() float64 {
	if !o.WearMask {
		return o.Threshold
	}
	return math.Max(0, o.Threshold-o.MaskSubtrahend)
}

// Scored pairs an item with its similarity.
type Scored[T any] struct {
	Item       T
	Similarity float64
}

// Ranking is the result of Rank.
type Ranking[T any] struct {
	// Sorted holds every comparable candidate, most similar first.
	Sorted []Scored[T]
	// Nearest is the top candidate before thresholding, nil when none could be scored.
	Nearest *Scored[T]
	// Matches holds the first Limit entries of Sorted at or above EffectiveThreshold.
	Matches            []Scored[T]
	EffectiveThreshold float64
	// Skipped counts candidates with a zero-norm vector or a dimension mismatch.
	Skipped int
}

// Rank scores items against query. Candidates that cannot be compared are
// skipped. Ties keep their input order.
func Rank[T any](query []float64, items []T, featureOf func(T) []float64, opts Options) Ranking[T] {
	r := Ranking[T]{EffectiveThreshold: opts.EffectiveThreshold()}

	q, ok := Normalize(query)
	if !ok {
		r.Skipped = len(items)
		return r
	}

	r.Sorted = make([]Scored[T], 0, len(items))
	for _, item := range items {
		feature := featureOf(item)
		if len(feature) != len(q) {
			r.Skipped++
			continue
		}
		c, ok := Normalize(feature)
		if !ok {
			r.Skipped++
			continue
		}
		r.Sorted = append(r.Sorted, Scored[T]{Item: item, Similarity: Score(q, c)})
	}

	sort.SliceStable(r.Sorted, func(i, j int) bool {
		return r.Sorted[i].Similarity > r.Sorted[j].Similarity
	})

	if len(r.Sorted) == 0 {
		return r
	}
	nearest := r.Sorted[0]
	r.Nearest = &nearest

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	for _, s := range r.Sorted {
		if len(r.Matches) == limit {
			break
		}
		if s.Similarity >= r.EffectiveThreshold {
			r.Matches = append(r.Matches, s)
		}
	}

	return r
}
