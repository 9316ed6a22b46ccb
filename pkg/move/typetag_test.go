package move

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movechain/gobcs/pkg/bcs"
)

func writeTag(t *testing.T, tag TypeTag) []byte {
	t.Helper()
	s := bcs.NewSerializer()
	require.NoError(t, WriteTypeTag(s, tag))
	return s.Bytes()
}

func TestSimpleTypeTags(t *testing.T) {
	tests := []struct {
		tag   TypeTag
		index byte
		str   string
	}{
		{BoolTag{}, 0, "bool"},
		{U8Tag{}, 1, "u8"},
		{U64Tag{}, 2, "u64"},
		{U128Tag{}, 3, "u128"},
		{AddressTag{}, 4, "address"},
		{SignerTag{}, 5, "signer"},
		{U16Tag{}, 8, "u16"},
		{U32Tag{}, 9, "u32"},
		{U256Tag{}, 10, "u256"},
	}
	for _, tc := range tests {
		t.Run(tc.str, func(t *testing.T) {
			data := writeTag(t, tc.tag)
			assert.Equal(t, []byte{tc.index}, data)
			assert.Equal(t, tc.str, tc.tag.String())

			d := bcs.NewDeserializer(data)
			got, err := ReadTypeTag(d)
			require.NoError(t, err)
			assert.Equal(t, tc.tag, got)
			require.NoError(t, d.ExpectEnd())
		})
	}
}

func TestVectorTag(t *testing.T) {
	tag := VectorTag{Elem: U8Tag{}}
	assert.Equal(t, "vector<u8>", tag.String())

	data := writeTag(t, tag)
	assert.Equal(t, []byte{6, 1}, data)

	got, err := ReadTypeTag(bcs.NewDeserializer(data))
	require.NoError(t, err)
	assert.Equal(t, tag, got)

	nested := VectorTag{Elem: VectorTag{Elem: U64Tag{}}}
	assert.Equal(t, "vector<vector<u64>>", nested.String())
	data = writeTag(t, nested)
	assert.Equal(t, []byte{6, 6, 2}, data)
}

func TestStructTag(t *testing.T) {
	addr, err := NewAddressFromString("0x1")
	require.NoError(t, err)
	tag := &StructTag{
		Address:    addr,
		Module:     "coin",
		Name:       "Coin",
		TypeParams: []TypeTag{U64Tag{}},
	}
	assert.Equal(t, "0x1::coin::Coin<u64>", tag.String())

	data := writeTag(t, tag)
	var want bytes.Buffer
	want.WriteByte(7) // struct variant
	want.Write(addr[:])
	want.WriteByte(4)
	want.WriteString("coin")
	want.WriteByte(4)
	want.WriteString("Coin")
	want.Write([]byte{1, 2}) // one type parameter, u64
	assert.Equal(t, want.Bytes(), data)

	got, err := ReadTypeTag(bcs.NewDeserializer(data))
	require.NoError(t, err)
	assert.Equal(t, tag, got)
}

func TestStructTagAsPlainStruct(t *testing.T) {
	// Without the enum context a struct tag encodes as its body only.
	addr, err := NewAddressFromString("0x2")
	require.NoError(t, err)
	tag := &StructTag{Address: addr, Module: "m", Name: "S"}

	data, err := bcs.Marshal(tag)
	require.NoError(t, err)
	require.Len(t, data, AddressSize+2+2+1)

	// As an enum variant the same body gains exactly the index prefix.
	assert.Equal(t, append([]byte{7}, data...), writeTag(t, tag))

	var got StructTag
	require.NoError(t, bcs.Unmarshal(data, &got))
	assert.Equal(t, tag.Address, got.Address)
	assert.Equal(t, tag.Module, got.Module)
	assert.Equal(t, tag.Name, got.Name)
	assert.Empty(t, got.TypeParams)
}

func TestStructTagStringForms(t *testing.T) {
	addr, err := NewAddressFromString("0xa550c18")
	require.NoError(t, err)
	tag := &StructTag{
		Address: addr,
		Module:  "registry",
		Name:    "Entry",
		TypeParams: []TypeTag{
			BoolTag{},
			VectorTag{Elem: U8Tag{}},
		},
	}
	assert.Equal(t, "0xa550c18::registry::Entry<bool, vector<u8>>", tag.String())
}

func TestTypeTagRejections(t *testing.T) {
	_, err := ReadTypeTag(bcs.NewDeserializer([]byte{11}))
	assert.True(t, errors.Is(err, bcs.ErrUnknownVariant), "got %v", err)

	_, err = ReadTypeTag(bcs.NewDeserializer(nil))
	assert.True(t, errors.Is(err, bcs.ErrTruncated), "got %v", err)

	// Struct variant with a truncated body.
	_, err = ReadTypeTag(bcs.NewDeserializer([]byte{7, 0xaa}))
	assert.True(t, errors.Is(err, bcs.ErrTruncated), "got %v", err)

	s := bcs.NewSerializer()
	err = WriteTypeTag(s, nil)
	require.Error(t, err)
}

func TestTypeTagDepthBound(t *testing.T) {
	// One level under the bound decodes.
	shallow := append(bytes.Repeat([]byte{6}, maxTypeTagDepth-1), 0)
	tag, err := ReadTypeTag(bcs.NewDeserializer(shallow))
	require.NoError(t, err)
	assert.Contains(t, tag.String(), "vector<")

	// At the bound the decoder gives up before the stack does.
	deep := append(bytes.Repeat([]byte{6}, maxTypeTagDepth), 0)
	_, err = ReadTypeTag(bcs.NewDeserializer(deep))
	assert.True(t, errors.Is(err, bcs.ErrOverflow), "got %v", err)
	assert.Contains(t, err.Error(), "nested deeper")
}

func TestTypeTagRoundTripComposite(t *testing.T) {
	addr, err := NewAddressFromString("0x1")
	require.NoError(t, err)
	tag := VectorTag{Elem: &StructTag{
		Address:    addr,
		Module:     "option",
		Name:       "Option",
		TypeParams: []TypeTag{VectorTag{Elem: U128Tag{}}},
	}}

	data := writeTag(t, tag)
	got, err := ReadTypeTag(bcs.NewDeserializer(data))
	require.NoError(t, err)
	assert.Equal(t, tag, got)

	// Re-serialization is byte-identical.
	assert.Equal(t, data, writeTag(t, got))
}
