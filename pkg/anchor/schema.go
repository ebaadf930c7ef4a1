package anchor

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

var (
	// ErrEncodingRange indicates a value cannot be represented by its field.
	ErrEncodingRange = errors.New("value out of range for field")

	// ErrSchemaMismatch indicates the argument count or payload length does not
	// match the schema.
	ErrSchemaMismatch = errors.New("arguments do not match schema")
)

// Type is the wire type of a schema field. All multi-byte integers are
// little-endian, and signed integers use two's complement.
type Type uint8

const (
	U8 Type = iota + 1
	U16
	U32
	U64
	I8
	I16
	I32
	I64
)

// Width returns the encoded size of the type in bytes.
func (t Type) Width() int {
	switch t {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32:
		return 4
	case U64, I64:
		return 8
	default:
		return 0
	}
}

// Signed reports whether the type is a signed integer.
func (t Type) Signed() bool {
	return t >= I8 && t <= I64
}

func (t Type) String() string {
	switch t {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Field is a named, typed schema entry.
type Field struct {
	Name string
	Type Type
}

// Schema describes an instruction's argument layout. Fields are encoded in
// declaration order with no padding.
type Schema struct {
	Name   string
	Fields []Field
}

// RangeError reports a value that does not fit its field.
type RangeError struct {
	Schema string
	Field  string
	Type   Type
	Value  Value
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s.%s: %s does not fit in %s", e.Schema, e.Field, e.Value, e.Type)
}

// Is lets errors.Is match a RangeError against ErrEncodingRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrEncodingRange
}

// Size returns the encoded size of the schema's arguments.
func (s Schema) Size() int {
	var size int
	for _, f := range s.Fields {
		size += f.Type.Width()
	}
	return size
}

// Encode serializes args in schema order. Values are never truncated; a
// value outside its field's range yields a *RangeError.
func (s Schema) Encode(args ...Value) ([]byte, error) {
	if len(args) != len(s.Fields) {
		return nil, errors.Wrapf(ErrSchemaMismatch, "%s expects %d arguments, got %d", s.Name, len(s.Fields), len(args))
	}

	buf := bytes.NewBuffer(make([]byte, 0, s.Size()))
	enc := bin.NewBorshEncoder(buf)

	for i, f := range s.Fields {
		if !args[i].fits(f.Type) {
			return nil, &RangeError{
				Schema: s.Name,
				Field:  f.Name,
				Type:   f.Type,
				Value:  args[i],
			}
		}

		if err := writeField(enc, f.Type, args[i]); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s.%s", s.Name, f.Name)
		}
	}

	return buf.Bytes(), nil
}

// Pack prefixes the encoded arguments with the discriminator, producing
// complete instruction data.
func (s Schema) Pack(d Discriminator, args ...Value) ([]byte, error) {
	encoded, err := s.Encode(args...)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, DiscriminatorSize+len(encoded))
	data = append(data, d[:]...)
	return append(data, encoded...), nil
}

// Decode parses data laid out by Encode. data must be exactly Size() bytes.
func (s Schema) Decode(data []byte) ([]Value, error) {
	if len(data) != s.Size() {
		return nil, errors.Wrapf(ErrSchemaMismatch, "%s expects %d bytes, got %d", s.Name, s.Size(), len(data))
	}

	dec := bin.NewBorshDecoder(data)

	values := make([]Value, len(s.Fields))
	for i, f := range s.Fields {
		v, err := readField(dec, f.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s.%s", s.Name, f.Name)
		}
		values[i] = v
	}

	return values, nil
}

// Unpack verifies the discriminator prefix and decodes the remainder.
func (s Schema) Unpack(d Discriminator, data []byte) ([]Value, error) {
	if !d.Matches(data) {
		return nil, errors.Wrapf(ErrSchemaMismatch, "%s discriminator mismatch", s.Name)
	}
	return s.Decode(data[DiscriminatorSize:])
}

func writeField(enc *bin.Encoder, t Type, v Value) error {
	if t.Signed() {
		i, _ := v.Int64()
		switch t {
		case I8:
			return enc.WriteInt8(int8(i))
		case I16:
			return enc.WriteInt16(int16(i), binary.LittleEndian)
		case I32:
			return enc.WriteInt32(int32(i), binary.LittleEndian)
		default:
			return enc.WriteInt64(i, binary.LittleEndian)
		}
	}

	u, _ := v.Uint64()
	switch t {
	case U8:
		return enc.WriteUint8(uint8(u))
	case U16:
		return enc.WriteUint16(uint16(u), binary.LittleEndian)
	case U32:
		return enc.WriteUint32(uint32(u), binary.LittleEndian)
	case U64:
		return enc.WriteUint64(u, binary.LittleEndian)
	default:
		return errors.Errorf("unsupported type %s", t)
	}
}

func readField(dec *bin.Decoder, t Type) (Value, error) {
	switch t {
	case U8:
		v, err := dec.ReadUint8()
		return Uint(uint64(v)), err
	case U16:
		v, err := dec.ReadUint16(binary.LittleEndian)
		return Uint(uint64(v)), err
	case U32:
		v, err := dec.ReadUint32(binary.LittleEndian)
		return Uint(uint64(v)), err
	case U64:
		v, err := dec.ReadUint64(binary.LittleEndian)
		return Uint(v), err
	case I8:
		v, err := dec.ReadInt8()
		return Int(int64(v)), err
	case I16:
		v, err := dec.ReadInt16(binary.LittleEndian)
		return Int(int64(v)), err
	case I32:
		v, err := dec.ReadInt32(binary.LittleEndian)
		return Int(int64(v)), err
	case I64:
		v, err := dec.ReadInt64(binary.LittleEndian)
		return Int(v), err
	default:
		return Value{}, errors.Errorf("unsupported type %s", t)
	}
}
