package bcs

import (
	"unicode/utf8"

	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Named wrappers over Go primitives that carry the codec capability, for use
// as elements of generic containers and as struct fields that should
// round-trip without hand-written methods.

// Bool wraps bool.
type Bool bool

func (v Bool) MarshalBCS(s *Serializer) error {
	return s.Bool(bool(v))
}

func (v *Bool) UnmarshalBCS(d *Deserializer) error {
	b, err := d.Bool()
	if err != nil {
		return err
	}
	*v = Bool(b)
	return nil
}

// U8 wraps uint8.
type U8 uint8

// NewU8 converts any integer to U8, failing with ErrOutOfRange if the value
// does not fit in 8 bits.
func NewU8[T constraints.Integer](v T) (U8, error) {
	u, err := safecast.Convert[uint8](v)
	if err != nil {
		return 0, errors.Wrapf(ErrOutOfRange, "cannot represent value as u8: %v", err)
	}
	return U8(u), nil
}

func (v U8) MarshalBCS(s *Serializer) error {
	return s.U8(uint8(v))
}

func (v *U8) UnmarshalBCS(d *Deserializer) error {
	u, err := d.U8()
	if err != nil {
		return err
	}
	*v = U8(u)
	return nil
}

// U16 wraps uint16.
type U16 uint16

// NewU16 converts any integer to U16, failing with ErrOutOfRange if the
// value does not fit in 16 bits.
func NewU16[T constraints.Integer](v T) (U16, error) {
	u, err := safecast.Convert[uint16](v)
	if err != nil {
		return 0, errors.Wrapf(ErrOutOfRange, "cannot represent value as u16: %v", err)
	}
	return U16(u), nil
}

func (v U16) MarshalBCS(s *Serializer) error {
	return s.U16(uint16(v))
}

func (v *U16) UnmarshalBCS(d *Deserializer) error {
	u, err := d.U16()
	if err != nil {
		return err
	}
	*v = U16(u)
	return nil
}

// U32 wraps uint32.
type U32 uint32

// NewU32 converts any integer to U32, failing with ErrOutOfRange if the
// value does not fit in 32 bits.
func NewU32[T constraints.Integer](v T) (U32, error) {
	u, err := safecast.Convert[uint32](v)
	if err != nil {
		return 0, errors.Wrapf(ErrOutOfRange, "cannot represent value as u32: %v", err)
	}
	return U32(u), nil
}

func (v U32) MarshalBCS(s *Serializer) error {
	return s.U32(uint32(v))
}

func (v *U32) UnmarshalBCS(d *Deserializer) error {
	u, err := d.U32()
	if err != nil {
		return err
	}
	*v = U32(u)
	return nil
}

// U64 wraps uint64.
type U64 uint64

// NewU64 converts any integer to U64, failing with ErrOutOfRange if the
// value is negative.
func NewU64[T constraints.Integer](v T) (U64, error) {
	u, err := safecast.Convert[uint64](v)
	if err != nil {
		return 0, errors.Wrapf(ErrOutOfRange, "cannot represent value as u64: %v", err)
	}
	return U64(u), nil
}

func (v U64) MarshalBCS(s *Serializer) error {
	return s.U64(uint64(v))
}

func (v *U64) UnmarshalBCS(d *Deserializer) error {
	u, err := d.U64()
	if err != nil {
		return err
	}
	*v = U64(u)
	return nil
}

// String wraps string. Encoded as a length-prefixed UTF-8 byte sequence.
type String string

// NewString validates that s is well-formed UTF-8, failing with
// ErrInvalidUTF8 otherwise.
func NewString(s string) (String, error) {
	if !utf8.ValidString(s) {
		return "", errors.Wrap(ErrInvalidUTF8, "string is not valid UTF-8")
	}
	return String(s), nil
}

func (v String) MarshalBCS(s *Serializer) error {
	return s.String(string(v))
}

func (v *String) UnmarshalBCS(d *Deserializer) error {
	str, err := d.String()
	if err != nil {
		return err
	}
	*v = String(str)
	return nil
}

// Bytes wraps a variable-length byte slice. Encoded with a length prefix.
type Bytes []byte

func (v Bytes) MarshalBCS(s *Serializer) error {
	return s.VarBytes(v)
}

func (v *Bytes) UnmarshalBCS(d *Deserializer) error {
	b, err := d.VarBytes()
	if err != nil {
		return err
	}
	*v = b
	return nil
}
