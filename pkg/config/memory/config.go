// Package memory provides a settable config source for tests and fixed
// configurations.
package memory

import (
	"context"
	"sync"

	"github.com/daughters-of-aether/arena-client/pkg/config"
)

// Config holds a single value in memory. A nil value means no value is set.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements config.Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements config.Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.shutdown = true
}

// Set replaces the value. Setting nil clears it.
func (c *Config) Set(value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
}

// Fail makes subsequent Get calls return err until Fail(nil) is called.
func (c *Config) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.err = err
}
