// Package pointer holds helpers for optional values.
package pointer

// Uint64 returns &value.
func Uint64(value uint64) *uint64 {
	return &value
}

// Uint64IfValid returns &value when ok, and nil otherwise. It adapts the
// (value, ok) result of a lookup to an optional.
func Uint64IfValid(ok bool, value uint64) *uint64 {
	if !ok {
		return nil
	}
	return &value
}
