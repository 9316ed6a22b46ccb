package bcs

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU128FromUint64(t *testing.T) {
	assert.Equal(t, "0", NewU128FromUint64(0).String())
	assert.Equal(t, "258", NewU128FromUint64(258).String())
	assert.Equal(t, "18446744073709551615", NewU128FromUint64(0xffffffffffffffff).String())
}

func TestU128FromBig(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	v, err := NewU128FromBig(max)
	require.NoError(t, err)
	assert.Equal(t, "340282366920938463463374607431768211455", v.String())
	assert.Equal(t, 0, max.Cmp(v.Big()))

	_, err = NewU128FromBig(new(big.Int).Lsh(big.NewInt(1), 128))
	assert.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)

	_, err = NewU128FromBig(big.NewInt(-1))
	assert.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)

	_, err = NewU128FromBig(nil)
	assert.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)
}

func TestU128FromString(t *testing.T) {
	tests := []struct {
		s    string
		want string
		ok   bool
	}{
		{"0", "0", true},
		{"12345678901234567890123456789", "12345678901234567890123456789", true},
		{"0xff", "255", true},
		{"0XFF", "255", true},
		{"340282366920938463463374607431768211455", "340282366920938463463374607431768211455", true},
		{"340282366920938463463374607431768211456", "", false},
		{"-5", "", false},
		{"", "", false},
		{"12a", "", false},
	}
	for _, tc := range tests {
		v, err := NewU128FromString(tc.s)
		if tc.ok {
			require.NoError(t, err, "input %q", tc.s)
			assert.Equal(t, tc.want, v.String())
		} else {
			assert.True(t, errors.Is(err, ErrOutOfRange), "input %q: got %v", tc.s, err)
		}
	}
}

func TestU128Encoding(t *testing.T) {
	v, err := NewU128FromString("258")
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "0201 0000 0000 0000 0000 0000 0000 0000"), MustMarshal(v))

	var got U128
	require.NoError(t, Unmarshal(MustMarshal(v), &got))
	assert.Equal(t, v, got)
}

func TestU128JSON(t *testing.T) {
	v, err := NewU128FromString("340282366920938463463374607431768211455")
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `"340282366920938463463374607431768211455"`, string(data))

	var got U128
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, v, got)

	require.NoError(t, json.Unmarshal([]byte(`"0x10"`), &got))
	assert.Equal(t, "16", got.String())

	assert.Error(t, json.Unmarshal([]byte(`258`), &got))
	assert.Error(t, json.Unmarshal([]byte(`"258x"`), &got))
}

func TestU256Bounds(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	v, err := NewU256FromBig(max)
	require.NoError(t, err)
	assert.Equal(t, 0, max.Cmp(v.Big()))

	_, err = NewU256FromBig(new(big.Int).Lsh(big.NewInt(1), 256))
	assert.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)

	_, err = NewU256FromBig(big.NewInt(-1))
	assert.True(t, errors.Is(err, ErrOutOfRange), "got %v", err)
}

func TestU256Encoding(t *testing.T) {
	v := NewU256FromUint64(0x0102)
	want := append(mustHex(t, "0201"), make([]byte, 30)...)
	assert.Equal(t, want, MustMarshal(v))

	var got U256
	require.NoError(t, Unmarshal(MustMarshal(v), &got))
	assert.Equal(t, v, got)

	big256, err := NewU256FromString("0xff00000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	data := MustMarshal(big256)
	require.Len(t, data, 32)
	assert.Equal(t, byte(0x01), data[0])
	assert.Equal(t, byte(0xff), data[31])
}

func TestU256JSON(t *testing.T) {
	v, err := NewU256FromString("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	require.NoError(t, err)

	data, err := json.Marshal(v)
	require.NoError(t, err)

	var got U256
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, v, got)
}
