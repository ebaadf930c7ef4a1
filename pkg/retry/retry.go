// Package retry runs actions repeatedly according to composable strategies.
package retry

import "context"

// Action is a unit of work that may fail transiently.
type Action func() error

// Retrier runs actions under a fixed set of strategies.
type Retrier interface {
	Retry(ctx context.Context, action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier binds strategies for reuse. With no strategies the action is
// retried until it succeeds or ctx is done.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(ctx context.Context, action Action) (uint, error) {
	return Retry(ctx, action, r.strategies...)
}

// Retry runs action until it succeeds, a strategy declines another attempt, or
// ctx is done. It returns the number of attempts made and the last error.
// Strategies are consulted in order and the first refusal wins.
func Retry(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	for i := uint(1); ; i++ {
		err := action()
		if err == nil {
			return i, nil
		}

		if ctx.Err() != nil {
			return i, err
		}

		for _, s := range strategies {
			if !s(ctx, i, err) {
				return i, err
			}
		}

		if ctx.Err() != nil {
			return i, err
		}
	}
}
