// Package ratelimit throttles document-stream processing for the CLI.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces documents through the pipeline.
type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or a negative limit for no throttling.
func New(documentsPerSecond float64) *Limiter {
	if documentsPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// Burst of one: the first document goes through immediately, the rest
	// pace out according to the limit.
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(documentsPerSecond), 1),
	}
}

// Wait blocks until the next document may be processed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Limit returns the configured rate, 0 meaning unlimited.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}
