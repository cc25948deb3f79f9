package sync

import (
	"math"
	"time"
)

const (
	// DefaultBaseBackoff seeds the schedule on the first failure.
	DefaultBaseBackoff = time.Second
	// DefaultMaxBackoff caps the doubling.
	DefaultMaxBackoff = time.Minute
	// DefaultJitterRatio bounds the random fraction added on top of the
	// (possibly capped) backoff.
	DefaultJitterRatio = 0.2
	// DefaultBatchSize bounds one push.
	DefaultBatchSize = 50
)

// nextBackoff doubles the previous backoff, capped at max; the first
// failure seeds with base.
func nextBackoff(previous time.Duration, base, max time.Duration) time.Duration {
	if previous <= 0 {
		return base
	}
	next := previous * 2
	if next > max {
		return max
	}
	return next
}

// jitterFor returns round(backoff * ratio * random()). The jitter rides on
// top of the capped value rather than being capped itself.
func jitterFor(backoff time.Duration, ratio float64, random func() float64) time.Duration {
	return time.Duration(math.Round(float64(backoff) * ratio * random()))
}
