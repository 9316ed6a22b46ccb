package move

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/movechain/gobcs/pkg/bcs"
)

// Wire variant indexes of TypeTag. The numbering is fixed by the format; the
// integer widths added later sit after the original variants.
const (
	tagBool uint32 = iota
	tagU8
	tagU64
	tagU128
	tagAddress
	tagSigner
	tagVector
	tagStruct
	tagU16
	tagU32
	tagU256
)

// typeTagVariants is the number of defined wire variants.
const typeTagVariants = 11

// maxTypeTagDepth bounds recursion when decoding nested vector and struct
// type parameters.
const maxTypeTagDepth = 32

// TypeTag is the runtime representation of a Move type. The set of variants
// is closed; values are created from the exported concrete types below or
// decoded with ReadTypeTag.
type TypeTag interface {
	fmt.Stringer
	tagIndex() uint32
	writePayload(s *bcs.Serializer) error
}

type BoolTag struct{}

func (BoolTag) String() string { return "bool" }
func (BoolTag) tagIndex() uint32 { return tagBool }
func (BoolTag) writePayload(*bcs.Serializer) error { return nil }

type U8Tag struct{}

func (U8Tag) String() string { return "u8" }
func (U8Tag) tagIndex() uint32 { return tagU8 }
func (U8Tag) writePayload(*bcs.Serializer) error { return nil }

type U16Tag struct{}

func (U16Tag) String() string { return "u16" }
func (U16Tag) tagIndex() uint32 { return tagU16 }
func (U16Tag) writePayload(*bcs.Serializer) error { return nil }

type U32Tag struct{}

func (U32Tag) String() string { return "u32" }
func (U32Tag) tagIndex() uint32 { return tagU32 }
func (U32Tag) writePayload(*bcs.Serializer) error { return nil }

type U64Tag struct{}

func (U64Tag) String() string { return "u64" }
func (U64Tag) tagIndex() uint32 { return tagU64 }
func (U64Tag) writePayload(*bcs.Serializer) error { return nil }

type U128Tag struct{}

func (U128Tag) String() string { return "u128" }
func (U128Tag) tagIndex() uint32 { return tagU128 }
func (U128Tag) writePayload(*bcs.Serializer) error { return nil }

type U256Tag struct{}

func (U256Tag) String() string { return "u256" }
func (U256Tag) tagIndex() uint32 { return tagU256 }
func (U256Tag) writePayload(*bcs.Serializer) error { return nil }

type AddressTag struct{}

func (AddressTag) String() string { return "address" }
func (AddressTag) tagIndex() uint32 { return tagAddress }
func (AddressTag) writePayload(*bcs.Serializer) error { return nil }

type SignerTag struct{}

func (SignerTag) String() string { return "signer" }
func (SignerTag) tagIndex() uint32 { return tagSigner }
func (SignerTag) writePayload(*bcs.Serializer) error { return nil }

// VectorTag is the type of a homogeneous vector, like vector<u8>.
type VectorTag struct {
	Elem TypeTag
}

func (t VectorTag) String() string { return "vector<" + t.Elem.String() + ">" }
func (VectorTag) tagIndex() uint32 { return tagVector }
func (t VectorTag) writePayload(s *bcs.Serializer) error {
	return WriteTypeTag(s, t.Elem)
}

// StructTag names a concrete struct type: the publishing address, module,
// struct name and any type parameters. As a plain struct it encodes as its
// body only; used as a TypeTag it is preceded by the variant index.
type StructTag struct {
	Address    AccountAddress
	Module     Identifier
	Name       Identifier
	TypeParams []TypeTag
}

func (t *StructTag) String() string {
	var sb strings.Builder
	sb.WriteString(t.Address.ShortString())
	sb.WriteString("::")
	sb.WriteString(string(t.Module))
	sb.WriteString("::")
	sb.WriteString(string(t.Name))
	if len(t.TypeParams) > 0 {
		sb.WriteByte('<')
		for i, p := range t.TypeParams {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteByte('>')
	}
	return sb.String()
}

func (*StructTag) tagIndex() uint32 { return tagStruct }

func (t *StructTag) writePayload(s *bcs.Serializer) error {
	return t.MarshalBCS(s)
}

func (t *StructTag) MarshalBCS(s *bcs.Serializer) error {
	if err := t.Address.MarshalBCS(s); err != nil {
		return errors.Wrap(err, "failed to serialize struct tag address")
	}
	if err := t.Module.MarshalBCS(s); err != nil {
		return errors.Wrap(err, "failed to serialize struct tag module")
	}
	if err := t.Name.MarshalBCS(s); err != nil {
		return errors.Wrap(err, "failed to serialize struct tag name")
	}
	return bcs.WriteSequenceFunc(s, t.TypeParams, WriteTypeTag)
}

func (t *StructTag) UnmarshalBCS(d *bcs.Deserializer) error {
	return t.readBody(d, 0)
}

func (t *StructTag) readBody(d *bcs.Deserializer, depth int) error {
	if err := t.Address.UnmarshalBCS(d); err != nil {
		return errors.Wrap(err, "failed to deserialize struct tag address")
	}
	if err := t.Module.UnmarshalBCS(d); err != nil {
		return errors.Wrap(err, "failed to deserialize struct tag module")
	}
	if err := t.Name.UnmarshalBCS(d); err != nil {
		return errors.Wrap(err, "failed to deserialize struct tag name")
	}
	params, err := bcs.ReadSequenceFunc(d, func(d *bcs.Deserializer) (TypeTag, error) {
		return readTypeTag(d, depth+1)
	})
	if err != nil {
		return errors.Wrap(err, "failed to deserialize struct tag type parameters")
	}
	t.TypeParams = params
	return nil
}

// WriteTypeTag encodes t as its ULEB128 variant index followed by the
// variant payload.
func WriteTypeTag(s *bcs.Serializer, t TypeTag) error {
	if t == nil {
		return errors.New("nil type tag")
	}
	return bcs.WriteEnumVariant(s, t.tagIndex(), t.writePayload)
}

// ReadTypeTag decodes a TypeTag. Nesting beyond maxTypeTagDepth levels is
// rejected before the stack can be exhausted by hostile input.
func ReadTypeTag(d *bcs.Deserializer) (TypeTag, error) {
	return readTypeTag(d, 0)
}

func readTypeTag(d *bcs.Deserializer, depth int) (TypeTag, error) {
	if depth >= maxTypeTagDepth {
		return nil, errors.Wrapf(bcs.ErrOverflow, "type tag nested deeper than %d levels", maxTypeTagDepth)
	}
	var result TypeTag
	_, err := bcs.ReadEnumVariant(d, typeTagVariants, func(index uint32, d *bcs.Deserializer) error {
		switch index {
		case tagBool:
			result = BoolTag{}
		case tagU8:
			result = U8Tag{}
		case tagU64:
			result = U64Tag{}
		case tagU128:
			result = U128Tag{}
		case tagAddress:
			result = AddressTag{}
		case tagSigner:
			result = SignerTag{}
		case tagU16:
			result = U16Tag{}
		case tagU32:
			result = U32Tag{}
		case tagU256:
			result = U256Tag{}
		case tagVector:
			elem, err := readTypeTag(d, depth+1)
			if err != nil {
				return err
			}
			result = VectorTag{Elem: elem}
		case tagStruct:
			st := new(StructTag)
			if err := st.readBody(d, depth+1); err != nil {
				return err
			}
			result = st
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
