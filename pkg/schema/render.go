package schema

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/movechain/gobcs/pkg/bcs"
	"github.com/movechain/gobcs/pkg/move"
)

// cborMode is the CBOR encoder configured with Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Equal documents always render to identical bytes.
var cborMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	// Addresses carry their identity in unexported-free fixed arrays but
	// read better as their text form; route them through MarshalText.
	opts.TextMarshaler = cbor.TextMarshalerTextString
	m, err := opts.EncMode()
	if err != nil {
		panic("schema: CBOR encoder initialization failed: " + err.Error())
	}
	cborMode = m
}

// RenderJSON writes a decoded document as compact JSON. Struct fields stay
// in wire order. Numbers up to u64 render as JSON numbers; u128 and u256
// render as quoted decimal strings; byte values render as 0x-prefixed hex
// strings; a unit enum variant renders as its name, a payload variant as a
// one-key object. Maps render as objects when their keys have a text form
// and as arrays of [key, value] pairs otherwise.
func RenderJSON(doc any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch v := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case uint8:
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint16:
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint32:
		buf.WriteString(strconv.FormatUint(uint64(v), 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(v, 10))
	case bcs.U128:
		buf.WriteString(strconv.Quote(v.String()))
	case bcs.U256:
		buf.WriteString(strconv.Quote(v.String()))
	case move.AccountAddress:
		buf.WriteString(strconv.Quote(v.String()))
	case string:
		return writeJSONString(buf, v)
	case []byte:
		buf.WriteString(strconv.Quote("0x" + hex.EncodeToString(v)))
	case []any:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case []bcs.MapEntry[any, any]:
		return writeJSONMap(buf, v)
	case *Struct:
		buf.WriteByte('{')
		first := true
		for el := v.Fields.Front(); el != nil; el = el.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeJSONString(buf, el.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, el.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *Enum:
		if v.Value == nil {
			return writeJSONString(buf, v.Variant)
		}
		buf.WriteByte('{')
		if err := writeJSONString(buf, v.Variant); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeJSON(buf, v.Value); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return errors.Errorf("cannot render value of type %T as JSON", v)
	}
	return nil
}

// writeJSONString escapes s the way encoding/json does.
func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to encode JSON string")
	}
	buf.Write(b)
	return nil
}

func writeJSONMap(buf *bytes.Buffer, entries []bcs.MapEntry[any, any]) error {
	asObject := true
	for _, e := range entries {
		if _, ok := mapKeyText(e.Key); !ok {
			asObject = false
			break
		}
	}
	if asObject {
		buf.WriteByte('{')
		for i, e := range entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			text, _ := mapKeyText(e.Key)
			if err := writeJSONString(buf, text); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	}
	buf.WriteByte('[')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		if err := writeJSON(buf, e.Key); err != nil {
			return err
		}
		buf.WriteByte(',')
		if err := writeJSON(buf, e.Value); err != nil {
			return err
		}
		buf.WriteByte(']')
	}
	buf.WriteByte(']')
	return nil
}

// mapKeyText formats a scalar map key for use as a JSON object key. The
// schema fixes the key type, so one map never mixes both renderings.
func mapKeyText(k any) (string, bool) {
	switch k := k.(type) {
	case bool:
		return strconv.FormatBool(k), true
	case uint8:
		return strconv.FormatUint(uint64(k), 10), true
	case uint16:
		return strconv.FormatUint(uint64(k), 10), true
	case uint32:
		return strconv.FormatUint(uint64(k), 10), true
	case uint64:
		return strconv.FormatUint(k, 10), true
	case bcs.U128:
		return k.String(), true
	case bcs.U256:
		return k.String(), true
	case move.AccountAddress:
		return k.String(), true
	case string:
		return k, true
	case []byte:
		return "0x" + hex.EncodeToString(k), true
	}
	return "", false
}

// RenderCBOR writes a decoded document as deterministically encoded CBOR.
// Structs become CBOR maps, which the deterministic mode orders by encoded
// key; wire field order is a JSON-side property only. Document maps become
// arrays of [key, value] pairs in wire order, since BCS permits key types
// that Go maps cannot hold. u128 and u256 become bignums.
func RenderCBOR(doc any) ([]byte, error) {
	native, err := toNative(doc)
	if err != nil {
		return nil, err
	}
	b, err := cborMode.Marshal(native)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode document as CBOR")
	}
	return b, nil
}

func toNative(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, uint8, uint16, uint32, uint64, string, []byte, move.AccountAddress:
		return v, nil
	case bcs.U128:
		return v.Big(), nil
	case bcs.U256:
		return v.Big(), nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			n, err := toNative(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []bcs.MapEntry[any, any]:
		out := make([]any, len(v))
		for i, e := range v {
			k, err := toNative(e.Key)
			if err != nil {
				return nil, err
			}
			val, err := toNative(e.Value)
			if err != nil {
				return nil, err
			}
			out[i] = []any{k, val}
		}
		return out, nil
	case *Struct:
		out := make(map[string]any, v.Fields.Len())
		for el := v.Fields.Front(); el != nil; el = el.Next() {
			n, err := toNative(el.Value)
			if err != nil {
				return nil, err
			}
			out[el.Key] = n
		}
		return out, nil
	case *Enum:
		if v.Value == nil {
			return v.Variant, nil
		}
		n, err := toNative(v.Value)
		if err != nil {
			return nil, err
		}
		return map[string]any{v.Variant: n}, nil
	default:
		return nil, errors.Errorf("cannot render value of type %T as CBOR", v)
	}
}
