// Package ratelimit throttles periodic reporting such as scan progress.
package ratelimit

import (
	"golang.org/x/time/rate"
)

type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative rate for no limiting.
func New(perSecond float64) *Limiter {
	if perSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}

	// Burst of 1: the first event passes, later ones are spaced by the rate.
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

// Allow is non-blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Reporter forwards at most one value per limiter tick to fn. Values that
// arrive too early are kept so Flush can deliver the latest one.
type Reporter[T any] struct {
	limiter *Limiter
	fn      func(T)
	latest  T
	pending bool
}

func NewReporter[T any](perSecond float64, fn func(T)) *Reporter[T] {
	return &Reporter[T]{limiter: New(perSecond), fn: fn}
}

func (r *Reporter[T]) Report(v T) {
	if r == nil || r.fn == nil {
		return
	}
	if r.limiter.Allow() {
		r.fn(v)
		r.pending = false
		return
	}
	r.latest = v
	r.pending = true
}

// Flush delivers the last suppressed value, if any.
func (r *Reporter[T]) Flush() {
	if r == nil || r.fn == nil || !r.pending {
		return
	}
	r.fn(r.latest)
	r.pending = false
}
