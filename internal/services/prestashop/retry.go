package prestashop

import (
	"errors"
	"math"
	"time"
)

// RetryPolicy bounds the scan's shrink-and-retry loop: how many consecutive
// failures it tolerates, how long it backs off between attempts, and how far
// the page size may shrink when the upstream chokes on large replies.
type RetryPolicy struct {
	MaxConsecutiveFailures int
	InitialBackoff         time.Duration
	BackoffFactor          float64
	MinPageSize            int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxConsecutiveFailures: 3,
		InitialBackoff:         time.Second,
		BackoffFactor:          2,
		MinPageSize:            5,
	}
}

// Backoff returns the delay before the given retry attempt (1-based),
// growing exponentially from InitialBackoff.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return p.InitialBackoff
	}
	return time.Duration(float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(attempt-1)))
}

// Shrink halves the page size without going below MinPageSize.
func (p RetryPolicy) Shrink(pageSize int) int {
	half := pageSize / 2
	if half < p.MinPageSize {
		return p.MinPageSize
	}
	return half
}

// Exhausted reports whether the consecutive-failure budget is spent.
func (p RetryPolicy) Exhausted(consecutiveFailures int) bool {
	return consecutiveFailures >= p.MaxConsecutiveFailures
}

// Retryable classifies a page-fetch error. Transport failures are always
// worth retrying; upstream replies only when the status or body says
// overload, never when the reply shape itself is wrong.
func Retryable(err error) bool {
	var terr *TransportError
	if errors.As(err, &terr) {
		return true
	}
	var aerr *APIError
	if errors.As(err, &aerr) {
		return aerr.Retryable()
	}
	return false
}
