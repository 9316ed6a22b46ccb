package schema

import (
	"github.com/ccoveille/go-safecast"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"

	"github.com/movechain/gobcs/pkg/bcs"
	"github.com/movechain/gobcs/pkg/move"
)

// maxDecodeDepth bounds nesting across containers and named references. A
// self-referential schema can demand unbounded recursion without consuming
// input, so the walk gives up before the stack does.
const maxDecodeDepth = 128

// Struct is a decoded struct document. Field values are kept in wire order,
// which is the definition order of the schema.
type Struct struct {
	TypeName string
	Fields   *orderedmap.OrderedMap[string, any]
}

// Enum is a decoded enum document. Value is nil for unit variants.
type Enum struct {
	TypeName string
	Variant  string
	Index    uint32
	Value    any
}

// Decoder walks a Deserializer according to a schema and produces document
// trees of plain Go values:
//
//	bool, u8, u16, u32, u64    bool, uint8, uint16, uint32, uint64
//	u128, u256                 bcs.U128, bcs.U256
//	address                    move.AccountAddress
//	string                     string
//	bytes, fixed<N>            []byte
//	vector<T>                  []any
//	option<T>                  nil when absent, the value itself when present
//	map<K, V>                  []bcs.MapEntry[any, any] in wire order
//	named struct, named enum   *Struct, *Enum
//
// Every wire violation surfaces as the bcs error kinds; schema-side
// failures, like an undefined type name, wrap ErrUnknownType.
type Decoder struct {
	schema *Schema
}

// NewDecoder returns a Decoder over s.
func NewDecoder(s *Schema) *Decoder {
	return &Decoder{schema: s}
}

// DecodeType decodes one value of the named type from d. Trailing bytes are
// left unread; callers that require full consumption check d.ExpectEnd.
func (dec *Decoder) DecodeType(d *bcs.Deserializer, name string) (any, error) {
	def, err := dec.schema.Resolve(name)
	if err != nil {
		return nil, err
	}
	return dec.decodeDef(d, def, 0)
}

// Decode decodes one value of the given type expression from d.
func (dec *Decoder) Decode(d *bcs.Deserializer, t *TypeExpr) (any, error) {
	return dec.decodeExpr(d, t, 0)
}

func (dec *Decoder) decodeDef(d *bcs.Deserializer, def *TypeDef, depth int) (any, error) {
	if depth >= maxDecodeDepth {
		return nil, errors.Wrapf(bcs.ErrOverflow, "document nested deeper than %d levels", maxDecodeDepth)
	}
	switch def.Kind {
	case DefStruct:
		fields := orderedmap.NewOrderedMap[string, any]()
		for _, f := range def.Fields {
			v, err := dec.decodeExpr(d, f.Type, depth+1)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to decode field %q of %q", f.Name, def.Name)
			}
			fields.Set(f.Name, v)
		}
		return &Struct{TypeName: def.Name, Fields: fields}, nil
	case DefEnum:
		variants, err := safecast.ToUint32(len(def.Variants))
		if err != nil {
			return nil, errors.Wrapf(bcs.ErrOverflow, "enum %q variant count %d", def.Name, len(def.Variants))
		}
		result := &Enum{TypeName: def.Name}
		_, err = bcs.ReadEnumVariant(d, variants, func(index uint32, d *bcs.Deserializer) error {
			v := def.Variants[index]
			result.Variant = v.Name
			result.Index = index
			if v.Type == nil {
				return nil
			}
			value, err := dec.decodeExpr(d, v.Type, depth+1)
			if err != nil {
				return err
			}
			result.Value = value
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode enum %q", def.Name)
		}
		return result, nil
	}
	return nil, errors.Errorf("unsupported definition kind %d of type %q", def.Kind, def.Name)
}

func (dec *Decoder) decodeExpr(d *bcs.Deserializer, t *TypeExpr, depth int) (any, error) {
	if depth >= maxDecodeDepth {
		return nil, errors.Wrapf(bcs.ErrOverflow, "document nested deeper than %d levels", maxDecodeDepth)
	}
	switch t.Kind {
	case KindBool:
		v, err := d.Bool()
		return v, err
	case KindU8:
		v, err := d.U8()
		return v, err
	case KindU16:
		v, err := d.U16()
		return v, err
	case KindU32:
		v, err := d.U32()
		return v, err
	case KindU64:
		v, err := d.U64()
		return v, err
	case KindU128:
		v, err := d.U128()
		return v, err
	case KindU256:
		v, err := d.U256()
		return v, err
	case KindAddress:
		var a move.AccountAddress
		if err := a.UnmarshalBCS(d); err != nil {
			return nil, err
		}
		return a, nil
	case KindString:
		v, err := d.String()
		return v, err
	case KindBytes:
		v, err := d.VarBytes()
		return v, err
	case KindFixed:
		v, err := d.FixedBytes(t.Size)
		return v, err
	case KindVector:
		v, err := bcs.ReadSequenceFunc(d, func(d *bcs.Deserializer) (any, error) {
			return dec.decodeExpr(d, t.Elem, depth+1)
		})
		if err != nil {
			return nil, err
		}
		return v, nil
	case KindOption:
		v, err := bcs.ReadOptionFunc(d, func(d *bcs.Deserializer) (any, error) {
			return dec.decodeExpr(d, t.Elem, depth+1)
		})
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}
		return *v, nil
	case KindMap:
		v, err := bcs.ReadMapEntriesFunc(d,
			func(d *bcs.Deserializer) (any, error) { return dec.decodeExpr(d, t.Key, depth+1) },
			func(d *bcs.Deserializer) (any, error) { return dec.decodeExpr(d, t.Elem, depth+1) },
		)
		if err != nil {
			return nil, err
		}
		return v, nil
	case KindNamed:
		def, err := dec.schema.Resolve(t.Name)
		if err != nil {
			return nil, err
		}
		return dec.decodeDef(d, def, depth+1)
	}
	return nil, errors.Errorf("unsupported type expression kind %d", t.Kind)
}
