package bcs

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Deserializer consumes an immutable byte buffer strictly left to right,
// reconstructing values under the same wire rules the Serializer writes
// them with. Any violation of those rules fails immediately. After a failed
// read the cursor position is unspecified and the Deserializer must be
// discarded; it is not safely resumable.
type Deserializer struct {
	buf []byte
	pos int
}

// NewDeserializer returns a Deserializer reading from data. The buffer is
// not copied and must not be mutated while the Deserializer is in use.
func NewDeserializer(data []byte) *Deserializer {
	return &Deserializer{buf: data}
}

// read returns the next n bytes of the buffer and advances the cursor. On
// truncation it fails without advancing. The returned slice aliases the
// buffer; callers that retain bytes copy them.
func (d *Deserializer) read(n int, what string) ([]byte, error) {
	if rem := len(d.buf) - d.pos; rem < n {
		return nil, errors.Wrapf(ErrTruncated,
			"not enough bytes to deserialize %s, expected at least %d, found %d", what, n, rem)
	}
	out := d.buf[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

func (d *Deserializer) readByte(what string) (byte, error) {
	b, err := d.read(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool reads a single byte and requires it to be exactly 0 or 1. Any other
// byte would be an alternate spelling of a boolean and is rejected as
// non-canonical.
func (d *Deserializer) Bool() (bool, error) {
	b, err := d.readByte("bool")
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.Wrapf(ErrNonCanonical, "invalid boolean byte %d", b)
	}
}

// U8 reads a single byte.
func (d *Deserializer) U8() (uint8, error) {
	return d.readByte("u8")
}

// U16 reads 2 bytes in little-endian order.
func (d *Deserializer) U16() (uint16, error) {
	b, err := d.read(2, "u16")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads 4 bytes in little-endian order.
func (d *Deserializer) U32() (uint32, error) {
	b, err := d.read(4, "u32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads 8 bytes in little-endian order.
func (d *Deserializer) U64() (uint64, error) {
	b, err := d.read(8, "u64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// U128 reads 16 bytes in little-endian order.
func (d *Deserializer) U128() (U128, error) {
	var v U128
	b, err := d.read(len(v), "u128")
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// U256 reads 32 bytes in little-endian order.
func (d *Deserializer) U256() (U256, error) {
	var v U256
	b, err := d.read(len(v), "u256")
	if err != nil {
		return v, err
	}
	copy(v[:], b)
	return v, nil
}

// FixedBytes reads exactly length raw bytes, the counterpart of the
// Serializer's FixedBytes. The result is a copy and does not alias the
// input buffer.
func (d *Deserializer) FixedBytes(length int) ([]byte, error) {
	if length < 0 {
		return nil, errors.Wrapf(ErrOutOfRange, "negative length %d", length)
	}
	b, err := d.read(length, "fixed bytes")
	if err != nil {
		return nil, err
	}
	return dup(b), nil
}

// VarBytes reads a ULEB128 byte-count prefix followed by that many raw
// bytes. The result is a copy and does not alias the input buffer.
func (d *Deserializer) VarBytes() ([]byte, error) {
	n, err := d.readLength("bytes")
	if err != nil {
		return nil, err
	}
	b, err := d.read(n, "bytes")
	if err != nil {
		return nil, err
	}
	return dup(b), nil
}

// String reads a ULEB128 byte-count prefix followed by that many bytes and
// requires them to be valid UTF-8.
func (d *Deserializer) String() (string, error) {
	n, err := d.readLength("string")
	if err != nil {
		return "", err
	}
	b, err := d.read(n, "string")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.Wrap(ErrInvalidUTF8, "string bytes are not valid UTF-8")
	}
	return string(b), nil
}

// EnumVariant reads a ULEB128 variant index and requires it to be below
// variants, the variant count of the target enum type. Dispatching to the
// matching payload reader is up to the caller.
func (d *Deserializer) EnumVariant(variants uint32) (uint32, error) {
	index, err := d.Uleb128()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read enum variant index")
	}
	if index >= variants {
		return 0, errors.Wrapf(ErrUnknownVariant, "enum variant index %d, expected less than %d", index, variants)
	}
	return index, nil
}

// Remaining returns the number of unread bytes.
func (d *Deserializer) Remaining() int {
	return len(d.buf) - d.pos
}

// ExpectEnd fails if unread bytes remain. Whether trailing bytes are an
// error is the caller's decision: sequential multi-value reads from one
// buffer are legitimate, so the Deserializer never asserts exhaustion on
// its own.
func (d *Deserializer) ExpectEnd() error {
	if rem := d.Remaining(); rem != 0 {
		return errors.Errorf("%d trailing bytes remain after decoding", rem)
	}
	return nil
}
