package bcs

import (
	"encoding/binary"

	"github.com/valyala/bytebufferpool"
)

// Serializer accumulates the canonical encoding of one or more values in a
// growable buffer. The buffer only ever grows; bytes already written are
// never mutated or reordered. A Serializer is created per encoding operation
// and is not safe for concurrent use.
type Serializer struct {
	buf *bytebufferpool.ByteBuffer
}

// NewSerializer returns an empty Serializer.
func NewSerializer() *Serializer {
	return &Serializer{buf: new(bytebufferpool.ByteBuffer)}
}

// Bool writes a single byte, 1 for true and 0 for false.
func (s *Serializer) Bool(v bool) error {
	if v {
		return s.buf.WriteByte(1)
	}
	return s.buf.WriteByte(0)
}

// U8 writes v as a single byte.
func (s *Serializer) U8(v uint8) error {
	return s.buf.WriteByte(v)
}

// U16 writes v as 2 bytes in little-endian order.
func (s *Serializer) U16(v uint16) error {
	b := [2]byte{}
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := s.buf.Write(b[:])
	return err
}

// U32 writes v as 4 bytes in little-endian order.
func (s *Serializer) U32(v uint32) error {
	b := [4]byte{}
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := s.buf.Write(b[:])
	return err
}

// U64 writes v as 8 bytes in little-endian order.
func (s *Serializer) U64(v uint64) error {
	b := [8]byte{}
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := s.buf.Write(b[:])
	return err
}

// U128 writes v as 16 bytes in little-endian order.
func (s *Serializer) U128(v U128) error {
	_, err := s.buf.Write(v[:])
	return err
}

// U256 writes v as 32 bytes in little-endian order.
func (s *Serializer) U256(v U256) error {
	_, err := s.buf.Write(v[:])
	return err
}

// FixedBytes appends raw bytes with no length prefix. Writer and reader must
// agree on the length out of band.
func (s *Serializer) FixedBytes(b []byte) error {
	_, err := s.buf.Write(b)
	return err
}

// VarBytes writes a ULEB128 byte-count prefix followed by the raw bytes.
func (s *Serializer) VarBytes(b []byte) error {
	if err := s.writeLength(len(b), "bytes"); err != nil {
		return err
	}
	_, err := s.buf.Write(b)
	return err
}

// String writes the UTF-8 bytes of v with a ULEB128 byte-count prefix. The
// byte count is the prefix, not the rune count. The Serializer trusts its
// input; UTF-8 validity is enforced at String value construction and again
// on decode.
func (s *Serializer) String(v string) error {
	if err := s.writeLength(len(v), "string"); err != nil {
		return err
	}
	_, err := s.buf.WriteString(v)
	return err
}

// EnumVariant writes the ULEB128 index of an enum variant. The variant's
// payload, if any, is written by the calls that follow.
func (s *Serializer) EnumVariant(index uint32) error {
	return s.Uleb128(index)
}

// Bytes returns the accumulated encoding. It does not reset the Serializer;
// calling it twice returns the same bytes. The returned slice aliases the
// internal buffer and is valid until the Serializer is discarded.
func (s *Serializer) Bytes() []byte {
	return s.buf.B
}

// Len returns the number of bytes written so far.
func (s *Serializer) Len() int {
	return len(s.buf.B)
}
