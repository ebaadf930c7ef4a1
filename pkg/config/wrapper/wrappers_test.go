package wrapper

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daughters-of-aether/arena-client/pkg/config"
	"github.com/daughters-of-aether/arena-client/pkg/config/memory"
)

// testLifecycle exercises the default, override, error and shutdown
// behaviour shared by every typed wrapper.
func testLifecycle[T any](t *testing.T, newConfig func(config.Config, T) config.Typed[T], defaultValue, overridenValue T, encoded []byte) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	wrapper := newConfig(mock, defaultValue)

	// Return the default value when no override is set
	val, err := wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)
	assert.Equal(t, defaultValue, wrapper.Get(ctx))

	// The overriden value is returned when set
	mock.Set(overridenValue)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overridenValue, val)
	assert.Equal(t, overridenValue, wrapper.Get(ctx))

	// The last observed config value is returned on error
	mock.Fail(assert.AnError)
	val, err = wrapper.GetSafe(ctx)
	require.Error(t, err)
	assert.Equal(t, overridenValue, val)
	assert.Equal(t, overridenValue, wrapper.Get(ctx))

	// The default value is returned when the override no longer has a value
	mock.Fail(nil)
	mock.Set(nil)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultValue, val)

	// Verify conversion from a byte array
	mock.Set(encoded)
	val, err = wrapper.GetSafe(ctx)
	require.NoError(t, err)
	assert.Equal(t, overridenValue, val)

	// Return an unsupported source value type
	mock.Set(struct{}{})
	val, err = wrapper.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.Equal(t, overridenValue, val)

	// Shutdown via the wrapper
	wrapper.Shutdown()
	_, err = wrapper.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestUint64Config(t *testing.T) {
	testLifecycle(t, NewUint64Config, uint64(math.MaxUint64), uint64(0), []byte("0"))
}

func TestStringConfig(t *testing.T) {
	testLifecycle(t, NewStringConfig, "default", "override", []byte("override"))
}

func TestDurationConfig(t *testing.T) {
	testLifecycle(t, NewDurationConfig, 30*time.Second, -2*time.Hour, []byte("-2h"))
}

func TestConversions(t *testing.T) {
	u, err := Uint64Value(uint(7))
	require.NoError(t, err)
	assert.EqualValues(t, 7, u)

	_, err = Uint64Value([]byte("-1"))
	assert.Error(t, err)

	_, err = Uint64Value(-1)
	assert.Equal(t, ErrUnsuportedConversion, err)

	d, err := DurationValue([]byte("90"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = DurationValue([]byte("1m30s"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = DurationValue([]byte("soon"))
	assert.Error(t, err)
}

func TestNew_CustomConverter(t *testing.T) {
	type level int

	convert := func(raw interface{}) (level, error) {
		s, err := StringValue(raw)
		if err != nil {
			return 0, err
		}
		switch s {
		case "low":
			return 1, nil
		case "high":
			return 2, nil
		}
		return 0, ErrUnsuportedConversion
	}

	mock := memory.NewConfig(nil)
	c := New[level](mock, 1, convert)
	assert.EqualValues(t, 1, c.Get(context.Background()))

	mock.Set("high")
	assert.EqualValues(t, 2, c.Get(context.Background()))

	mock.Set("medium")
	v, err := c.GetSafe(context.Background())
	assert.Equal(t, ErrUnsuportedConversion, err)
	assert.EqualValues(t, 2, v)
}
