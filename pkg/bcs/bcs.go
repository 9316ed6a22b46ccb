// Package bcs implements Binary Canonical Serialization, the deterministic
// binary encoding used for values that are hashed and signed on a ledger.
// Every value has exactly one valid encoding: the encoder always produces it
// and the decoder rejects any byte stream that deviates from it, including
// streams that would parse to the right value through a non-minimal form.
//
// Values participate in encoding through the Marshaler and Unmarshaler
// capabilities. Container operations (sequences, options, maps) are generic
// over these capabilities, so new composite types plug in without changes to
// the engine:
//
//	type Coin struct {
//		Denom  bcs.String
//		Amount bcs.U64
//	}
//
//	func (c Coin) MarshalBCS(s *bcs.Serializer) error {
//		if err := c.Denom.MarshalBCS(s); err != nil {
//			return err
//		}
//		return c.Amount.MarshalBCS(s)
//	}
//
//	func (c *Coin) UnmarshalBCS(d *bcs.Deserializer) error {
//		if err := c.Denom.UnmarshalBCS(d); err != nil {
//			return err
//		}
//		return c.Amount.UnmarshalBCS(d)
//	}
//
// Struct fields are plain concatenation in declared order, so a struct's
// methods simply write and read its fields one after another.
package bcs

import (
	"github.com/valyala/bytebufferpool"
)

// Marshaler is the capability implemented by every value that can append
// its canonical encoding to a Serializer.
type Marshaler interface {
	MarshalBCS(s *Serializer) error
}

// Unmarshaler is the capability implemented by every value that can
// reconstruct itself from a Deserializer.
type Unmarshaler interface {
	UnmarshalBCS(d *Deserializer) error
}

// UnmarshalerPtr constrains a type parameter to pointers that implement
// Unmarshaler, letting generic readers allocate the value themselves.
type UnmarshalerPtr[T any] interface {
	*T
	Unmarshaler
}

// Marshal returns the canonical encoding of v.
func Marshal(v Marshaler) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	s := &Serializer{buf: buf}
	if err := v.MarshalBCS(s); err != nil {
		return nil, err
	}
	return dup(s.Bytes()), nil
}

// MustMarshal is like Marshal but panics on error. It is meant for values
// whose construction already guarantees a valid encoding.
func MustMarshal(v Marshaler) []byte {
	b, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Unmarshal decodes data into v and requires the whole buffer to be
// consumed. Callers decoding several values from one buffer use a
// Deserializer directly and decide themselves when to call ExpectEnd.
func Unmarshal(data []byte, v Unmarshaler) error {
	d := NewDeserializer(data)
	if err := v.UnmarshalBCS(d); err != nil {
		return err
	}
	return d.ExpectEnd()
}

// dup copies b so that returned encodings do not alias pooled or borrowed
// buffers.
func dup(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
