// Package ranking orders canonical posts by one of the feed sort modes.
// All functions are pure.
package ranking

import (
	"math"
	"sort"
	"time"

	"threadfeed/internal/model"
)

// rawAgeHours is the unclamped age of p at now.
func rawAgeHours(p model.Post, now time.Time) float64 {
	return float64(now.Unix()-p.Created) / 3600
}

// AgeHours is the post age used by the scoring formulas, never below one hour.
func AgeHours(p model.Post, now time.Time) float64 {
	return math.Max(1, rawAgeHours(p, now))
}

// Hot dampens the score logarithmically and penalizes age super-linearly.
func Hot(p model.Post, now time.Time) float64 {
	return math.Log10(math.Max(1, float64(p.Score))) / math.Pow(AgeHours(p, now), 1.5)
}

// Rising is the per-hour score density, doubled for posts younger than an hour.
func Rising(p model.Post, now time.Time) float64 {
	bonus := 1.0
	if rawAgeHours(p, now) < 1 {
		bonus = 2
	}
	return float64(p.Score) / AgeHours(p, now) * bonus
}

// Value returns the sort key of p under mode; higher ranks first.
func Value(p model.Post, mode model.SortMode, now time.Time) float64 {
	switch mode {
	case model.SortNew:
		return float64(p.Created)
	case model.SortTop:
		return float64(p.Score)
	case model.SortRising:
		return Rising(p, now)
	default:
		return Hot(p, now)
	}
}

// Rank returns a new slice ordered by mode. The sort is stable, so posts with
// equal values keep their source order. Unknown modes rank as hot.
func Rank(posts []model.Post, mode model.SortMode, now time.Time) []model.Post {
	out := make([]model.Post, len(posts))
	copy(out, posts)

	switch mode {
	case model.SortNew:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Created > out[j].Created })
	case model.SortTop:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	default:
		// sort an index permutation so each value is computed once
		idx := make([]int, len(out))
		vals := make([]float64, len(out))
		for i, p := range out {
			idx[i] = i
			vals[i] = Value(p, mode, now)
		}
		sort.SliceStable(idx, func(a, b int) bool { return vals[idx[a]] > vals[idx[b]] })
		ranked := make([]model.Post, len(out))
		for i, k := range idx {
			ranked[i] = out[k]
		}
		out = ranked
	}
	return out
}
