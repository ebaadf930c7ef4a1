// Package shortvec implements the compact-u16 length prefix of the Solana
// wire format: seven bits per byte, least significant group first, with the
// high bit set on every byte except the last.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// MaxLen is the largest encodable length.
const MaxLen = math.MaxUint16

const maxEncodedSize = 3

var (
	ErrOutOfRange = errors.New("shortvec: length out of range")
	ErrMalformed  = errors.New("shortvec: malformed length")
)

// AppendLen appends the encoding of n to dst. dst is returned unchanged when
// n is negative or greater than MaxLen.
func AppendLen(dst []byte, n int) ([]byte, error) {
	if n < 0 || n > MaxLen {
		return dst, errors.Wrapf(ErrOutOfRange, "%d", n)
	}

	for n >= 0x80 {
		dst = append(dst, byte(n)|0x80)
		n >>= 7
	}
	return append(dst, byte(n)), nil
}

// ReadLen reads one encoded length. Non-canonical encodings, such as a
// trailing zero group, are rejected.
func ReadLen(r io.ByteReader) (int, error) {
	var n int
	for i := 0; i < maxEncodedSize; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if i > 0 && b == 0 {
			return 0, errors.Wrap(ErrMalformed, "trailing zero byte")
		}

		n |= int(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			if n > MaxLen {
				return 0, errors.Wrapf(ErrMalformed, "%d exceeds %d", n, MaxLen)
			}
			return n, nil
		}
	}
	return 0, errors.Wrapf(ErrMalformed, "longer than %d bytes", maxEncodedSize)
}
