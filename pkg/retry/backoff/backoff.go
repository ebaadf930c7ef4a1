// Package backoff provides delay schedules for retry strategies.
package backoff

import (
	"math"
	"time"
)

// Strategy returns the delay to wait after the attempts-th failure. Attempts
// start at 1.
type Strategy func(attempts uint) time.Duration

// Constant waits the same interval after every failure.
func Constant(interval time.Duration) Strategy {
	return func(_ uint) time.Duration {
		return interval
	}
}

// BinaryExponential doubles the delay after each failure, starting from base:
// base, 2*base, 4*base and so on. The delay saturates at math.MaxInt64.
func BinaryExponential(base time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		if attempts <= 1 || base <= 0 {
			return base
		}

		shift := attempts - 1
		if shift >= 63 || base > math.MaxInt64>>shift {
			return math.MaxInt64
		}
		return base << shift
	}
}
