package bcs

import (
	"encoding/binary"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// U128 is an unsigned 128-bit integer stored as 16 little-endian bytes,
// the same layout as its wire encoding. The zero value is the number 0.
// Values are immutable and comparable, so they can be used as map keys.
type U128 [16]byte

// U256 is an unsigned 256-bit integer stored as 32 little-endian bytes.
type U256 [32]byte

// NewU128FromUint64 returns the U128 with the value of v.
func NewU128FromUint64(v uint64) U128 {
	var u U128
	binary.LittleEndian.PutUint64(u[:8], v)
	return u
}

// NewU128FromBig returns the U128 with the value of b. It fails with
// ErrOutOfRange if b is negative or does not fit in 128 bits.
func NewU128FromBig(b *big.Int) (U128, error) {
	var u U128
	if err := bigToLittleEndian(u[:], b, 128); err != nil {
		return U128{}, err
	}
	return u, nil
}

// NewU128FromString parses s as a decimal number, or hexadecimal with a
// "0x" prefix, into a U128.
func NewU128FromString(s string) (U128, error) {
	b, err := parseBigUint(s)
	if err != nil {
		return U128{}, err
	}
	return NewU128FromBig(b)
}

// Big returns the value as a big integer. The result does not share memory
// with the U128.
func (v U128) Big() *big.Int {
	return new(big.Int).SetBytes(reversed(v[:]))
}

// String returns the value in decimal notation.
func (v U128) String() string {
	return v.Big().String()
}

// MarshalJSON writes the value as a JSON string in decimal notation;
// 128-bit values do not fit JSON numbers.
func (v U128) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(v.String())), nil
}

// UnmarshalJSON reads the value from a JSON string in decimal or 0x-prefixed
// hexadecimal notation.
func (v *U128) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal U128 from JSON")
	}
	u, err := NewU128FromString(s)
	if err != nil {
		return err
	}
	*v = u
	return nil
}

func (v U128) MarshalBCS(s *Serializer) error {
	return s.U128(v)
}

func (v *U128) UnmarshalBCS(d *Deserializer) error {
	u, err := d.U128()
	if err != nil {
		return err
	}
	*v = u
	return nil
}

// NewU256FromUint64 returns the U256 with the value of v.
func NewU256FromUint64(v uint64) U256 {
	var u U256
	binary.LittleEndian.PutUint64(u[:8], v)
	return u
}

// NewU256FromBig returns the U256 with the value of b. It fails with
// ErrOutOfRange if b is negative or does not fit in 256 bits.
func NewU256FromBig(b *big.Int) (U256, error) {
	var u U256
	if err := bigToLittleEndian(u[:], b, 256); err != nil {
		return U256{}, err
	}
	return u, nil
}

// NewU256FromString parses s as a decimal number, or hexadecimal with a
// "0x" prefix, into a U256.
func NewU256FromString(s string) (U256, error) {
	b, err := parseBigUint(s)
	if err != nil {
		return U256{}, err
	}
	return NewU256FromBig(b)
}

// Big returns the value as a big integer.
func (v U256) Big() *big.Int {
	return new(big.Int).SetBytes(reversed(v[:]))
}

// String returns the value in decimal notation.
func (v U256) String() string {
	return v.Big().String()
}

// MarshalJSON writes the value as a JSON string in decimal notation.
func (v U256) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(v.String())), nil
}

// UnmarshalJSON reads the value from a JSON string in decimal or 0x-prefixed
// hexadecimal notation.
func (v *U256) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal U256 from JSON")
	}
	u, err := NewU256FromString(s)
	if err != nil {
		return err
	}
	*v = u
	return nil
}

func (v U256) MarshalBCS(s *Serializer) error {
	return s.U256(v)
}

func (v *U256) UnmarshalBCS(d *Deserializer) error {
	u, err := d.U256()
	if err != nil {
		return err
	}
	*v = u
	return nil
}

// bigToLittleEndian writes the magnitude of b into dst in little-endian
// order. dst is assumed zeroed and len(dst)*8 must equal bits.
func bigToLittleEndian(dst []byte, b *big.Int, bits int) error {
	if b == nil {
		return errors.Wrap(ErrOutOfRange, "nil big integer")
	}
	if b.Sign() < 0 {
		return errors.Wrapf(ErrOutOfRange, "negative value %s", b.String())
	}
	if b.BitLen() > bits {
		return errors.Wrapf(ErrOutOfRange, "value %s does not fit in %d bits", b.String(), bits)
	}
	raw := b.Bytes()
	for i, bb := range raw {
		dst[len(raw)-1-i] = bb
	}
	return nil
}

// parseBigUint parses decimal, or hexadecimal with a "0x" prefix.
func parseBigUint(s string) (*big.Int, error) {
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, errors.Wrapf(ErrOutOfRange, "string %q is not an unsigned integer", s)
	}
	return b, nil
}

// reversed returns a copy of b with the byte order flipped.
func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, bb := range b {
		out[len(b)-1-i] = bb
	}
	return out
}
