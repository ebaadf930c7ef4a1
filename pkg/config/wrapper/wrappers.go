package wrapper

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/daughters-of-aether/arena-client/pkg/config"
)

// ErrUnsuportedConversion is returned for source values a converter cannot handle.
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// Converter converts a raw source value into T. It returns
// ErrUnsuportedConversion for source types it does not handle.
type Converter[T any] func(raw interface{}) (T, error)

// Config is a utility wrapper that converts the values of an underlying
// config, falling back to a default when no value is set.
type Config[T any] struct {
	override     config.Config
	defaultValue T
	convert      Converter[T]

	stateMu   sync.RWMutex
	lastValue T
}

// New wraps override, converting its values with convert. The default is
// used whenever override has no value.
func New[T any](override config.Config, defaultValue T, convert Converter[T]) config.Typed[T] {
	return &Config[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe returns the converted value. On error it also returns the last value
// that converted successfully.
func (c *Config[T]) GetSafe(ctx context.Context) (T, error) {
	override, err := c.override.Get(ctx)
	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()
	if err == config.ErrNoValue {
		c.stateMu.Lock()
		c.lastValue = c.defaultValue
		c.stateMu.Unlock()
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	newValue, err := c.convert(override)
	if err != nil {
		return lastValue, err
	}

	c.stateMu.Lock()
	c.lastValue = newValue
	c.stateMu.Unlock()
	return newValue, nil
}

// Get is GetSafe without the error.
func (c *Config[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown shuts down the wrapped source.
func (c *Config[T]) Shutdown() {
	c.override.Shutdown()
}

func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return New(override, defaultValue, Uint64Value)
}

func NewStringConfig(override config.Config, defaultValue string) config.String {
	return New(override, defaultValue, StringValue)
}

func NewDurationConfig(override config.Config, defaultValue time.Duration) config.Duration {
	return New(override, defaultValue, DurationValue)
}

func Uint64Value(raw interface{}) (uint64, error) {
	switch raw := raw.(type) {
	case []byte:
		return strconv.ParseUint(string(raw), 10, 64)
	case uint64:
		return raw, nil
	case uint:
		return uint64(raw), nil
	default:
		return 0, ErrUnsuportedConversion
	}
}

func StringValue(raw interface{}) (string, error) {
	switch raw := raw.(type) {
	case []byte:
		return string(raw), nil
	case string:
		return raw, nil
	default:
		return "", ErrUnsuportedConversion
	}
}

// DurationValue parses a duration string, accepting a bare integer as seconds.
func DurationValue(raw interface{}) (time.Duration, error) {
	switch raw := raw.(type) {
	case []byte:
		s := string(raw)
		if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Duration(seconds) * time.Second, nil
		}
		return time.ParseDuration(s)
	case time.Duration:
		return raw, nil
	default:
		return 0, ErrUnsuportedConversion
	}
}
