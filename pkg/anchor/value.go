package anchor

import (
	"math"
	"strconv"
)

// Value is an integer argument for a Schema. It carries sign and magnitude
// separately so that the full range of both uint64 and int64 can be expressed
// and range checked against any field width.
type Value struct {
	negative  bool
	magnitude uint64
}

// Uint returns an unsigned Value.
func Uint(v uint64) Value {
	return Value{magnitude: v}
}

// Int returns a signed Value.
func Int(v int64) Value {
	if v >= 0 {
		return Value{magnitude: uint64(v)}
	}
	// -(v+1)+1 avoids overflowing on math.MinInt64.
	return Value{negative: true, magnitude: uint64(-(v + 1)) + 1}
}

// IsNegative reports whether the value is below zero.
func (v Value) IsNegative() bool {
	return v.negative && v.magnitude != 0
}

// Uint64 returns the value as a uint64, if representable.
func (v Value) Uint64() (uint64, bool) {
	if v.IsNegative() {
		return 0, false
	}
	return v.magnitude, true
}

// Int64 returns the value as an int64, if representable.
func (v Value) Int64() (int64, bool) {
	if v.IsNegative() {
		if v.magnitude > 1<<63 {
			return 0, false
		}
		return -int64(v.magnitude-1) - 1, true
	}
	if v.magnitude > math.MaxInt64 {
		return 0, false
	}
	return int64(v.magnitude), true
}

func (v Value) String() string {
	if v.IsNegative() {
		return "-" + strconv.FormatUint(v.magnitude, 10)
	}
	return strconv.FormatUint(v.magnitude, 10)
}

// fits reports whether the value is representable by the type.
func (v Value) fits(t Type) bool {
	bits := uint(t.Width() * 8)

	if !t.Signed() {
		if v.IsNegative() {
			return false
		}
		return bits == 64 || v.magnitude < 1<<bits
	}

	limit := uint64(1) << (bits - 1)
	if v.IsNegative() {
		return v.magnitude <= limit
	}
	return v.magnitude < limit
}
