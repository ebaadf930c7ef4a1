package backoff

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstant(t *testing.T) {
	s := Constant(500 * time.Millisecond)
	for attempt := uint(0); attempt < 5; attempt++ {
		assert.Equal(t, 500*time.Millisecond, s(attempt))
	}
}

func TestBinaryExponential(t *testing.T) {
	s := BinaryExponential(time.Second)

	for attempt, expected := range map[uint]time.Duration{
		0: time.Second,
		1: time.Second,
		2: 2 * time.Second,
		3: 4 * time.Second,
		4: 8 * time.Second,
	} {
		assert.Equal(t, expected, s(attempt), "attempt %d", attempt)
	}
}

func TestBinaryExponential_Saturates(t *testing.T) {
	assert.EqualValues(t, math.MaxInt64, BinaryExponential(time.Hour)(40))
	assert.EqualValues(t, math.MaxInt64, BinaryExponential(time.Nanosecond)(200))
	assert.Equal(t, time.Duration(0), BinaryExponential(0)(10))
}
