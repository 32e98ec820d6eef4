package render

import (
	"context"
)

// ProbeFunc renders the first-page layout with the first m entries and
// reports the physical page count of that isolated render.
type ProbeFunc func(ctx context.Context, m int) (pages int, err error)

// FitResult is the outcome of a prefix search.
type FitResult struct {
	Fitting int
	Probes  int
}

// Fit binary-searches 0..n for the largest prefix whose first-page render
// occupies exactly one page. A prefix is feasible when its probe reports
// one page; the search then moves up, otherwise down. The best feasible
// midpoint wins and defaults to 0 when nothing fits.
//
// The search assumes page count never decreases as entries are added;
// CheckMonotone verifies that for a given backend.
func Fit(ctx context.Context, n int, probe ProbeFunc) (FitResult, error) {
	lo, hi, best, probes := 0, n, 0, 0
	for lo <= hi {
		if err := ctx.Err(); err != nil {
			return FitResult{}, err
		}
		m := lo + (hi-lo)/2
		pages, err := probe(ctx, m)
		if err != nil {
			return FitResult{}, err
		}
		probes++
		if pages == 1 {
			best = m
			lo = m + 1
		} else {
			hi = m - 1
		}
	}
	return FitResult{Fitting: best, Probes: probes}, nil
}

// CheckMonotone probes every prefix 0..n and reports whether the page
// count is non-decreasing. It returns the observed counts by prefix length.
func CheckMonotone(ctx context.Context, n int, probe ProbeFunc) (bool, []int, error) {
	counts := make([]int, 0, n+1)
	ok := true
	for m := 0; m <= n; m++ {
		pages, err := probe(ctx, m)
		if err != nil {
			return false, counts, err
		}
		if m > 0 && pages < counts[m-1] {
			ok = false
		}
		counts = append(counts, pages)
	}
	return ok, counts, nil
}
