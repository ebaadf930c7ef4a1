// Package config provides dynamically sourced settings. A Config yields raw
// values; typed wrappers convert them and fall back to defaults.
package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue is returned when the source has nothing set.
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown is returned by Get after Shutdown.
	ErrShutdown = errors.New("config: shutdown")
)

// Config is a source of a single raw setting.
type Config interface {
	// Get returns the current raw value, or ErrNoValue.
	Get(ctx context.Context) (interface{}, error)

	// Shutdown releases the source. Later calls to Get fail.
	Shutdown()
}

// Typed is a setting converted to T.
type Typed[T any] interface {
	// Get returns the value, falling back to the last good value on error.
	Get(ctx context.Context) T
	GetSafe(ctx context.Context) (T, error)
	Shutdown()
}

type (
	Duration = Typed[time.Duration]
	Uint64   = Typed[uint64]
	String   = Typed[string]
)
