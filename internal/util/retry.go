// ABOUTME: Backoff schedule and context-aware waiting for retried embedding calls
// ABOUTME: Used by the canvas service when the provider reports a rate limit
package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// DefaultMaxBackoff caps a single wait between retries
const DefaultMaxBackoff = 30 * time.Second

// Backoff is an exponential schedule: Base doubles per attempt up to Max,
// then Jitter (a fraction, 0.25 for ±25%) is applied.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

// NewBackoff returns a schedule starting at base with the default cap and ±25% jitter
func NewBackoff(base time.Duration) Backoff {
	return Backoff{Base: base, Max: DefaultMaxBackoff, Jitter: 0.25}
}

// Delay returns the wait before retry number attempt (1-based). Attempts
// below 1 and a non-positive base wait nothing.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt <= 0 || b.Base <= 0 {
		return 0
	}
	// 2^30 already exceeds any sane cap
	shift := min(attempt, 30)

	d := b.Base << uint(shift)
	if d <= 0 || (b.Max > 0 && d > b.Max) {
		d = b.Max
	}

	if b.Jitter <= 0 {
		return d
	}
	spread := time.Duration(float64(d) * b.Jitter)
	if spread <= 0 {
		return d
	}
	return d - spread + time.Duration(rand.Int64N(int64(2*spread)+1))
}

// Wait sleeps for d or until ctx ends, whichever comes first
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
