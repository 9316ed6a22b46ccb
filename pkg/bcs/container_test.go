package bcs

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceOfU8(t *testing.T) {
	s := NewSerializer()
	require.NoError(t, WriteSequence(s, []U8{1, 2, 3}))
	assert.Equal(t, mustHex(t, "03 010203"), s.Bytes())

	got, err := ReadSequence[U8](NewDeserializer(s.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []U8{1, 2, 3}, got)
}

func TestEmptySequence(t *testing.T) {
	s := NewSerializer()
	require.NoError(t, WriteSequence(s, []String(nil)))
	assert.Equal(t, mustHex(t, "00"), s.Bytes())

	got, err := ReadSequence[String](NewDeserializer(s.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSequenceOfStrings(t *testing.T) {
	s := NewSerializer()
	require.NoError(t, WriteSequence(s, []String{"a", "bc"}))
	assert.Equal(t, mustHex(t, "02 0161 02 6263"), s.Bytes())

	got, err := ReadSequence[String](NewDeserializer(s.Bytes()))
	require.NoError(t, err)
	if diff := deep.Equal([]String{"a", "bc"}, got); diff != nil {
		t.Error(diff)
	}
}

func TestSequenceFunc(t *testing.T) {
	s := NewSerializer()
	err := WriteSequenceFunc(s, []uint64{5, 6}, func(s *Serializer, v uint64) error {
		return s.U64(v)
	})
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "02 0500000000000000 0600000000000000"), s.Bytes())

	got, err := ReadSequenceFunc(NewDeserializer(s.Bytes()), func(d *Deserializer) (uint64, error) {
		return d.U64()
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{5, 6}, got)
}

func TestSequenceElementError(t *testing.T) {
	s := NewSerializer()
	require.NoError(t, WriteSequence(s, []U8{1, 2, 3}))
	data := s.Bytes()[:2] // count says three elements, body holds one

	_, err := ReadSequence[U8](NewDeserializer(data))
	assert.True(t, errors.Is(err, ErrTruncated), "got %v", err)
	assert.Contains(t, err.Error(), "sequence element 1")
}

func TestForgedCountFailsFast(t *testing.T) {
	// A count close to the length ceiling with an empty body must fail on
	// the first element instead of reserving gigabytes up front.
	s := NewSerializer()
	require.NoError(t, s.Uleb128(2_000_000_000))

	_, err := ReadSequence[U64](NewDeserializer(s.Bytes()))
	assert.True(t, errors.Is(err, ErrTruncated), "got %v", err)
}

func TestOption(t *testing.T) {
	s := NewSerializer()
	require.NoError(t, WriteOption[U8](s, nil))
	assert.Equal(t, mustHex(t, "00"), s.Bytes())

	got, err := ReadOption[U8](NewDeserializer(s.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, got)

	v := U8(7)
	s = NewSerializer()
	require.NoError(t, WriteOption(s, &v))
	assert.Equal(t, mustHex(t, "01 07"), s.Bytes())

	got, err = ReadOption[U8](NewDeserializer(s.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, U8(7), *got)
}

func TestOptionRejectsBadTag(t *testing.T) {
	_, err := ReadOption[U8](NewDeserializer(mustHex(t, "02 07")))
	assert.True(t, errors.Is(err, ErrNonCanonical), "got %v", err)

	_, err = ReadOption[U8](NewDeserializer(nil))
	assert.True(t, errors.Is(err, ErrTruncated), "got %v", err)
}

func TestOptionFunc(t *testing.T) {
	v := "hi"
	s := NewSerializer()
	err := WriteOptionFunc(s, &v, func(s *Serializer, v string) error {
		return s.String(v)
	})
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "01 026869"), s.Bytes())

	got, err := ReadOptionFunc(NewDeserializer(s.Bytes()), func(d *Deserializer) (string, error) {
		return d.String()
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hi", *got)
}

func TestMapOrdersByEncodedKey(t *testing.T) {
	m := map[String]U8{"b": 2, "a": 1, "c": 3}

	s := NewSerializer()
	require.NoError(t, WriteMap(s, m))
	assert.Equal(t, mustHex(t, "03 0161 01 0162 02 0163 03"), s.Bytes())

	// Iteration order never leaks: repeated encodes are identical.
	for i := 0; i < 8; i++ {
		s2 := NewSerializer()
		require.NoError(t, WriteMap(s2, m))
		require.Equal(t, s.Bytes(), s2.Bytes())
	}

	got, err := ReadMap[String, U8](NewDeserializer(s.Bytes()))
	require.NoError(t, err)
	if diff := deep.Equal(m, got); diff != nil {
		t.Error(diff)
	}
}

func TestMapKeyOrderEnforced(t *testing.T) {
	unsorted := mustHex(t, "02 0162 02 0161 01")
	_, err := ReadMap[String, U8](NewDeserializer(unsorted))
	assert.True(t, errors.Is(err, ErrNonCanonical), "got %v", err)
	assert.Contains(t, err.Error(), "ascending order")

	duplicate := mustHex(t, "02 0161 01 0161 02")
	_, err = ReadMap[String, U8](NewDeserializer(duplicate))
	assert.True(t, errors.Is(err, ErrNonCanonical), "got %v", err)
}

func TestMapShorterKeyPrecedesLonger(t *testing.T) {
	m := map[String]U8{"ab": 2, "a": 1}
	s := NewSerializer()
	require.NoError(t, WriteMap(s, m))
	// "a" encodes as 01 61, "ab" as 02 61 62; the one-byte prefix sorts
	// the shorter key first.
	assert.Equal(t, mustHex(t, "02 0161 01 026162 02"), s.Bytes())

	got, err := ReadMap[String, U8](NewDeserializer(s.Bytes()))
	require.NoError(t, err)
	if diff := deep.Equal(m, got); diff != nil {
		t.Error(diff)
	}
}

func TestMapFunc(t *testing.T) {
	m := map[uint8]uint64{2: 20, 1: 10}
	s := NewSerializer()
	err := WriteMapFunc(s, m,
		func(s *Serializer, k uint8) error { return s.U8(k) },
		func(s *Serializer, v uint64) error { return s.U64(v) },
	)
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "02 01 0a00000000000000 02 1400000000000000"), s.Bytes())

	got, err := ReadMapFunc(NewDeserializer(s.Bytes()),
		func(d *Deserializer) (uint8, error) { return d.U8() },
		func(d *Deserializer) (uint64, error) { return d.U64() },
	)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestEmptyMap(t *testing.T) {
	s := NewSerializer()
	require.NoError(t, WriteMap(s, map[String]U8{}))
	assert.Equal(t, mustHex(t, "00"), s.Bytes())

	got, err := ReadMap[String, U8](NewDeserializer(s.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMapEntriesKeepWireOrder(t *testing.T) {
	m := map[String]U8{"b": 2, "c": 3, "a": 1}
	s := NewSerializer()
	require.NoError(t, WriteMap(s, m))

	entries, err := ReadMapEntriesFunc(NewDeserializer(s.Bytes()),
		func(d *Deserializer) (String, error) {
			var k String
			err := k.UnmarshalBCS(d)
			return k, err
		},
		func(d *Deserializer) (U8, error) { v, err := d.U8(); return U8(v), err },
	)
	require.NoError(t, err)
	want := []MapEntry[String, U8]{{"a", 1}, {"b", 2}, {"c", 3}}
	assert.Equal(t, want, entries)

	_, err = ReadMapEntriesFunc(NewDeserializer(mustHex(t, "02 0162 02 0161 01")),
		func(d *Deserializer) (String, error) {
			var k String
			err := k.UnmarshalBCS(d)
			return k, err
		},
		func(d *Deserializer) (U8, error) { v, err := d.U8(); return U8(v), err },
	)
	assert.True(t, errors.Is(err, ErrNonCanonical), "got %v", err)
}

func TestEnumVariantHelpers(t *testing.T) {
	s := NewSerializer()
	err := WriteEnumVariant(s, 1, func(s *Serializer) error {
		return s.VarBytes([]byte{0xaa})
	})
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "01 01aa"), s.Bytes())

	var body []byte
	index, err := ReadEnumVariant(NewDeserializer(s.Bytes()), 2, func(index uint32, d *Deserializer) error {
		b, err := d.VarBytes()
		body = b
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), index)
	assert.Equal(t, []byte{0xaa}, body)

	// Unit variant: no payload on either side.
	s = NewSerializer()
	require.NoError(t, WriteEnumVariant(s, 0, nil))
	assert.Equal(t, mustHex(t, "00"), s.Bytes())
	index, err = ReadEnumVariant(NewDeserializer(s.Bytes()), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), index)

	_, err = ReadEnumVariant(NewDeserializer(mustHex(t, "05")), 2, nil)
	assert.True(t, errors.Is(err, ErrUnknownVariant), "got %v", err)
}

func TestNestedContainers(t *testing.T) {
	inner1 := []U8{1}
	inner2 := []U8{2, 3}
	s := NewSerializer()
	err := WriteSequenceFunc(s, [][]U8{inner1, inner2}, func(s *Serializer, v []U8) error {
		return WriteSequence(s, v)
	})
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "02 0101 020203"), s.Bytes())

	got, err := ReadSequenceFunc(NewDeserializer(s.Bytes()), func(d *Deserializer) ([]U8, error) {
		return ReadSequence[U8](d)
	})
	require.NoError(t, err)
	if diff := deep.Equal([][]U8{inner1, inner2}, got); diff != nil {
		t.Error(diff)
	}
}
