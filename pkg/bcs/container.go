package bcs

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
)

// WriteSequence encodes items as a ULEB128 count followed by each element in
// order.
func WriteSequence[T Marshaler](s *Serializer, items []T) error {
	return WriteSequenceFunc(s, items, func(s *Serializer, v T) error {
		return v.MarshalBCS(s)
	})
}

// WriteSequenceFunc encodes items with fn, for element types that do not
// carry the codec capability themselves.
func WriteSequenceFunc[T any](s *Serializer, items []T, fn func(*Serializer, T) error) error {
	if err := s.writeLength(len(items), "sequence"); err != nil {
		return err
	}
	for i, v := range items {
		if err := fn(s, v); err != nil {
			return errors.Wrapf(err, "failed to serialize sequence element %d", i)
		}
	}
	return nil
}

// ReadSequence decodes a ULEB128 count followed by that many elements of T.
func ReadSequence[T any, PT UnmarshalerPtr[T]](d *Deserializer) ([]T, error) {
	return ReadSequenceFunc(d, func(d *Deserializer) (T, error) {
		var v T
		err := PT(&v).UnmarshalBCS(d)
		return v, err
	})
}

// ReadSequenceFunc decodes a ULEB128 count followed by that many elements
// read with fn. The result is allocated lazily so a forged count cannot
// reserve more memory than the input could possibly fill.
func ReadSequenceFunc[T any](d *Deserializer, fn func(*Deserializer) (T, error)) ([]T, error) {
	n, err := d.readLength("sequence")
	if err != nil {
		return nil, err
	}
	prealloc := n
	if r := d.Remaining(); prealloc > r {
		prealloc = r
	}
	items := make([]T, 0, prealloc)
	for i := 0; i < n; i++ {
		v, err := fn(d)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to deserialize sequence element %d", i)
		}
		items = append(items, v)
	}
	return items, nil
}

// WriteOption encodes a missing value as the single byte 0, and a present
// value as the byte 1 followed by the value itself.
func WriteOption[T Marshaler](s *Serializer, v *T) error {
	return WriteOptionFunc(s, v, func(s *Serializer, v T) error {
		return v.MarshalBCS(s)
	})
}

// WriteOptionFunc is WriteOption with an explicit element encoder.
func WriteOptionFunc[T any](s *Serializer, v *T, fn func(*Serializer, T) error) error {
	if v == nil {
		return s.Bool(false)
	}
	if err := s.Bool(true); err != nil {
		return err
	}
	if err := fn(s, *v); err != nil {
		return errors.Wrap(err, "failed to serialize option value")
	}
	return nil
}

// ReadOption decodes an optional value. A missing value is returned as nil.
// Tag bytes other than 0 and 1 are rejected as non-canonical.
func ReadOption[T any, PT UnmarshalerPtr[T]](d *Deserializer) (*T, error) {
	return ReadOptionFunc(d, func(d *Deserializer) (T, error) {
		var v T
		err := PT(&v).UnmarshalBCS(d)
		return v, err
	})
}

// ReadOptionFunc is ReadOption with an explicit element decoder.
func ReadOptionFunc[T any](d *Deserializer, fn func(*Deserializer) (T, error)) (*T, error) {
	present, err := d.Bool()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read option tag")
	}
	if !present {
		return nil, nil
	}
	v, err := fn(d)
	if err != nil {
		return nil, errors.Wrap(err, "failed to deserialize option value")
	}
	return &v, nil
}

// WriteMap encodes m as a ULEB128 entry count followed by key-value pairs
// ordered by the lexicographic comparison of the encoded key bytes. Go map
// iteration order never leaks into the output.
func WriteMap[K interface {
	comparable
	Marshaler
}, V Marshaler](s *Serializer, m map[K]V) error {
	return WriteMapFunc(s, m,
		func(s *Serializer, k K) error { return k.MarshalBCS(s) },
		func(s *Serializer, v V) error { return v.MarshalBCS(s) },
	)
}

// WriteMapFunc is WriteMap with explicit key and value encoders.
func WriteMapFunc[K comparable, V any](s *Serializer, m map[K]V, key func(*Serializer, K) error, value func(*Serializer, V) error) error {
	type entry struct {
		key   []byte
		value []byte
	}
	scratch := &Serializer{buf: bytebufferpool.Get()}
	defer bytebufferpool.Put(scratch.buf)
	entries := make([]entry, 0, len(m))
	for k, v := range m {
		scratch.buf.Reset()
		if err := key(scratch, k); err != nil {
			return errors.Wrap(err, "failed to serialize map key")
		}
		kb := dup(scratch.Bytes())
		scratch.buf.Reset()
		if err := value(scratch, v); err != nil {
			return errors.Wrap(err, "failed to serialize map value")
		}
		entries = append(entries, entry{key: kb, value: dup(scratch.Bytes())})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})
	if err := s.writeLength(len(entries), "map"); err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.FixedBytes(e.key); err != nil {
			return err
		}
		if err := s.FixedBytes(e.value); err != nil {
			return err
		}
	}
	return nil
}

// ReadMap decodes a map written by WriteMap. Entries whose encoded keys are
// out of order or duplicated are rejected with ErrNonCanonical, so a byte
// sequence accepted here is always the one WriteMap would produce.
func ReadMap[K comparable, V any, PK UnmarshalerPtr[K], PV UnmarshalerPtr[V]](d *Deserializer) (map[K]V, error) {
	return ReadMapFunc(d,
		func(d *Deserializer) (K, error) {
			var k K
			err := PK(&k).UnmarshalBCS(d)
			return k, err
		},
		func(d *Deserializer) (V, error) {
			var v V
			err := PV(&v).UnmarshalBCS(d)
			return v, err
		},
	)
}

// WriteEnumVariant writes the ULEB128 variant index followed by the variant
// payload. A nil payload writes a unit variant, index only.
func WriteEnumVariant(s *Serializer, index uint32, payload func(*Serializer) error) error {
	if err := s.EnumVariant(index); err != nil {
		return err
	}
	if payload == nil {
		return nil
	}
	if err := payload(s); err != nil {
		return errors.Wrapf(err, "failed to serialize enum variant %d", index)
	}
	return nil
}

// ReadEnumVariant reads a ULEB128 variant index bounded by variants, then
// hands the index to payload to decode the variant body.
func ReadEnumVariant(d *Deserializer, variants uint32, payload func(index uint32, d *Deserializer) error) (uint32, error) {
	index, err := d.EnumVariant(variants)
	if err != nil {
		return 0, err
	}
	if payload == nil {
		return index, nil
	}
	if err := payload(index, d); err != nil {
		return 0, errors.Wrapf(err, "failed to deserialize enum variant %d", index)
	}
	return index, nil
}

// ReadMapFunc is ReadMap with explicit key and value decoders.
func ReadMapFunc[K comparable, V any](d *Deserializer, key func(*Deserializer) (K, error), value func(*Deserializer) (V, error)) (map[K]V, error) {
	entries, err := ReadMapEntriesFunc(d, key, value)
	if err != nil {
		return nil, err
	}
	m := make(map[K]V, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m, nil
}

// MapEntry is a single key-value pair of a decoded map.
type MapEntry[K, V any] struct {
	Key   K
	Value V
}

// ReadMapEntriesFunc decodes a map into its entries in wire order, for
// callers that keep the entry order or whose keys are not comparable in Go.
// Key order is checked on the consumed byte ranges, so no re-serialization
// is needed; out-of-order or duplicated keys fail with ErrNonCanonical.
func ReadMapEntriesFunc[K, V any](d *Deserializer, key func(*Deserializer) (K, error), value func(*Deserializer) (V, error)) ([]MapEntry[K, V], error) {
	n, err := d.readLength("map")
	if err != nil {
		return nil, err
	}
	prealloc := n
	if r := d.Remaining(); prealloc > r {
		prealloc = r
	}
	entries := make([]MapEntry[K, V], 0, prealloc)
	var prev []byte
	for i := 0; i < n; i++ {
		start := d.pos
		k, err := key(d)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to deserialize map key %d", i)
		}
		kb := d.buf[start:d.pos]
		if i > 0 && bytes.Compare(prev, kb) >= 0 {
			return nil, errors.Wrapf(ErrNonCanonical, "map keys are not in ascending order at entry %d", i)
		}
		prev = kb
		v, err := value(d)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to deserialize map value %d", i)
		}
		entries = append(entries, MapEntry[K, V]{Key: k, Value: v})
	}
	return entries, nil
}
