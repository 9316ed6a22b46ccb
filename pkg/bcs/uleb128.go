package bcs

import (
	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"
)

const (
	// MaxSequenceLength bounds every ULEB128-encoded length and count:
	// byte strings, sequences and maps. Declared lengths above it are
	// rejected on both encode and decode, which keeps a crafted prefix
	// from demanding an unbounded allocation.
	MaxSequenceLength = 1<<31 - 1

	// maxUleb128Bytes is the longest minimal encoding of a 32-bit value:
	// ceil(32/7) groups of 7 bits.
	maxUleb128Bytes = 5
)

// Uleb128 appends the minimal ULEB128 encoding of v: 7 data bits per byte,
// low-order group first, high bit set on every byte except the last.
func (s *Serializer) Uleb128(v uint32) error {
	for v >= 0x80 {
		if err := s.buf.WriteByte(byte(v&0x7f) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return s.buf.WriteByte(byte(v))
}

// Uleb128 reads a ULEB128-encoded value into 32 bits. It rejects encodings
// longer than five bytes or carrying data above bit 31 (overflow), and
// rejects overlong forms whose final group is zero: such input decodes to
// the right number but is not the one permitted encoding of it, so it must
// not be accepted.
func (d *Deserializer) Uleb128() (uint32, error) {
	var v uint32
	var shift uint
	for i := 0; i < maxUleb128Bytes; i++ {
		b, err := d.readByte("ULEB128")
		if err != nil {
			return 0, err
		}
		group := uint32(b & 0x7f)
		if shift == 28 && group > 0x0f {
			return 0, errors.Wrap(ErrOverflow, "ULEB128 value does not fit in 32 bits")
		}
		v |= group << shift
		if b&0x80 == 0 {
			if i > 0 && b == 0 {
				return 0, errors.Wrap(ErrNonCanonical, "overlong ULEB128 encoding")
			}
			return v, nil
		}
		shift += 7
	}
	return 0, errors.Wrapf(ErrOverflow, "ULEB128 encoding longer than %d bytes", maxUleb128Bytes)
}

// writeLength writes a ULEB128 length prefix for n items of the named kind,
// rejecting lengths that do not fit the supported range.
func (s *Serializer) writeLength(n int, of string) error {
	v, err := safecast.ToUint32(n)
	if err != nil || v > MaxSequenceLength {
		return errors.Wrapf(ErrOverflow, "%s length %d exceeds maximum %d", of, n, MaxSequenceLength)
	}
	return s.Uleb128(v)
}

// readLength reads a ULEB128 length prefix for the named kind and bounds it
// by MaxSequenceLength.
func (d *Deserializer) readLength(of string) (int, error) {
	v, err := d.Uleb128()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s length", of)
	}
	if v > MaxSequenceLength {
		return 0, errors.Wrapf(ErrOverflow, "%s length %d exceeds maximum %d", of, v, MaxSequenceLength)
	}
	n, err := safecast.ToInt(v)
	if err != nil {
		return 0, errors.Wrapf(ErrOverflow, "%s length %d does not fit in int", of, v)
	}
	return n, nil
}
