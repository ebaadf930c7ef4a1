// Package env provides config values read from environment variables.
package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/daughters-of-aether/arena-client/pkg/config"
	"github.com/daughters-of-aether/arena-client/pkg/config/wrapper"
)

type variable struct {
	name string
}

// NewConfig returns a config backed by the upper-cased environment variable
// key. The variable is looked up on every Get, so values loaded later (for
// example from a .env file) are observed. Unset and empty variables have no
// value.
func NewConfig(key string) config.Config {
	return &variable{name: strings.ToUpper(key)}
}

// Get implements config.Config.Get
func (v *variable) Get(_ context.Context) (interface{}, error) {
	val, ok := os.LookupEnv(v.name)
	if !ok || len(val) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(val), nil
}

// Shutdown implements config.Config.Shutdown
func (v *variable) Shutdown() {}

func newTyped[T any](key string, defaultValue T, convert wrapper.Converter[T]) config.Typed[T] {
	return wrapper.New(NewConfig(key), defaultValue, convert)
}

func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return newTyped(key, defaultValue, wrapper.Uint64Value)
}

// NewDurationConfig accepts Go durations ("45s") or whole seconds ("45").
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return newTyped(key, defaultValue, wrapper.DurationValue)
}
