package seo

import (
	"context"
	"errors"
	"math"
	"time"

	"seoscout/internal/fetch"
	"seoscout/pkg/models"
)

// ErrNoSamples means every timing request failed, so there is nothing to
// report about loading performance.
var ErrNoSamples = errors.New("no loading time samples collected")

const samplePause = 500 * time.Millisecond

// MeasureLoading fetches a page several times and reports load-time
// statistics. Individual failed samples are skipped; only a full miss is an
// error. The fetcher must not be a caching one or the numbers mean nothing.
func MeasureLoading(ctx context.Context, fetcher fetch.Fetcher, rawURL string, samples int) (models.PerformanceStats, error) {
	var times []float64
	var sizes []float64

sampling:
	for i := 0; i < samples; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				break sampling
			case <-time.After(samplePause):
			}
		}

		page, err := fetcher.Fetch(ctx, rawURL)
		if err != nil {
			continue
		}
		times = append(times, page.Elapsed.Seconds())
		sizes = append(sizes, float64(page.SizeBytes)/(1024*1024))
	}

	if len(times) == 0 {
		return models.PerformanceStats{}, ErrNoSamples
	}

	avg := mean(times)
	return models.PerformanceStats{
		Samples:       len(times),
		AvgSeconds:    avg,
		MinSeconds:    minOf(times),
		MaxSeconds:    maxOf(times),
		StddevSeconds: stddev(times, avg),
		AvgPageSizeMB: mean(sizes),
		Rating:        performanceRating(avg),
	}, nil
}

// performanceRating buckets an average load time into a human rating.
func performanceRating(avgSeconds float64) string {
	switch {
	case avgSeconds <= 2:
		return "Excellent (Under 2 seconds)"
	case avgSeconds <= 3:
		return "Good (2-3 seconds)"
	case avgSeconds <= 5:
		return "Fair (3-5 seconds)"
	default:
		return "Poor (Over 5 seconds)"
	}
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// stddev is the sample standard deviation, zero for fewer than two samples.
func stddev(xs []float64, avg float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - avg
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}
