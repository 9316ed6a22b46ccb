package bcs

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUleb128RoundTrip(t *testing.T) {
	tests := []struct {
		v    uint32
		want string
	}{
		{0, "00"},
		{1, "01"},
		{127, "7f"},
		{128, "8001"},
		{240, "f001"},
		{300, "ac02"},
		{16383, "ff7f"},
		{16384, "808001"},
		{2097151, "ffff7f"},
		{2097152, "80808001"},
		{268435455, "ffffff7f"},
		{268435456, "8080808001"},
		{math.MaxUint32, "ffffffff0f"},
	}
	for _, tc := range tests {
		s := NewSerializer()
		require.NoError(t, s.Uleb128(tc.v))
		assert.Equal(t, mustHex(t, tc.want), s.Bytes(), "value %d", tc.v)

		d := NewDeserializer(s.Bytes())
		v, err := d.Uleb128()
		require.NoError(t, err, "value %d", tc.v)
		assert.Equal(t, tc.v, v)
		assert.Equal(t, 0, d.Remaining())
	}
}

func TestUleb128Rejections(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind error
	}{
		{"empty input", "", ErrTruncated},
		{"dangling continuation", "80", ErrTruncated},
		{"overlong zero", "8000", ErrNonCanonical},
		{"overlong five", "8500", ErrNonCanonical},
		{"overlong three groups", "80808000", ErrNonCanonical},
		{"overlong 300", "ac8200", ErrNonCanonical},
		{"thirty-third bit", "ffffffff10", ErrOverflow},
		{"six byte form", "808080808001", ErrOverflow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDeserializer(mustHex(t, tc.data))
			_, err := d.Uleb128()
			assert.True(t, errors.Is(err, tc.kind), "expected %v, got %v", tc.kind, err)
		})
	}
}

func TestUleb128CanonicalBoundary(t *testing.T) {
	// The largest accepted encoding.
	d := NewDeserializer(mustHex(t, "ffffffff0f"))
	v, err := d.Uleb128()
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), v)

	// Trailing data after a valid value stays unread.
	d = NewDeserializer(mustHex(t, "7f 01"))
	v, err = d.Uleb128()
	require.NoError(t, err)
	assert.Equal(t, uint32(127), v)
	assert.Equal(t, 1, d.Remaining())
}

func TestLengthPrefixBound(t *testing.T) {
	// 1<<31 encodes as a well-formed ULEB128 but exceeds the largest
	// supported container length.
	d := NewDeserializer(mustHex(t, "8080808008"))
	_, err := d.VarBytes()
	assert.True(t, errors.Is(err, ErrOverflow), "got %v", err)
	assert.Contains(t, err.Error(), "exceeds maximum")
}
