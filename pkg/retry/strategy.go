package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/daughters-of-aether/arena-client/pkg/retry/backoff"
)

// Strategy decides whether an action should run again after its attempts-th
// failure. Strategies may block, so delaying strategies belong last.
type Strategy func(ctx context.Context, attempts uint, err error) bool

// Limit stops after maxAttempts runs of the action.
func Limit(maxAttempts uint) Strategy {
	return func(_ context.Context, attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of targets.
func RetriableErrors(targets ...error) Strategy {
	return func(_ context.Context, _ uint, err error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// Backoff waits for the scheduled delay, capped at maxDelay, before the next
// attempt. It stops retrying if ctx finishes while waiting.
func Backoff(schedule backoff.Strategy, maxDelay time.Duration) Strategy {
	return func(ctx context.Context, attempts uint, _ error) bool {
		return sleep(ctx, capDelay(schedule(attempts), maxDelay))
	}
}

// BackoffWithJitter is Backoff with the capped delay spread uniformly over
// +/- jitter of itself. A jitter of 0.1 turns 100ms into 90ms to 110ms.
func BackoffWithJitter(schedule backoff.Strategy, maxDelay time.Duration, jitter float64) Strategy {
	return func(ctx context.Context, attempts uint, _ error) bool {
		delay := float64(capDelay(schedule(attempts), maxDelay))
		offset := (2*jitterSource() - 1) * jitter
		return sleep(ctx, time.Duration(delay*(1+offset)))
	}
}

func capDelay(delay, max time.Duration) time.Duration {
	if delay > max {
		return max
	}
	return delay
}

// Replaced in tests.
var (
	sleep        = sleepContext
	jitterSource = rand.Float64
)

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
