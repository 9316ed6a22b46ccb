// Package schema describes BCS wire shapes by name, so a byte stream can be
// decoded for inspection without compiled-in Go types. A schema is a set of
// named struct and enum definitions loaded from TOML:
//
//	root = "Wallet"
//
//	[types.Wallet]
//	kind = "struct"
//	fields = [
//	    { name = "owner",   type = "address" },
//	    { name = "balance", type = "u64" },
//	    { name = "coins",   type = "vector<Coin>" },
//	]
//
//	[types.Coin]
//	kind = "struct"
//	fields = [
//	    { name = "denom",  type = "string" },
//	    { name = "amount", type = "u64" },
//	]
//
//	[types.Curve]
//	kind = "enum"
//	variants = [ { name = "Ed25519" }, { name = "Secp256k1", type = "bytes" } ]
//
// Field and variant types are type expressions over the scalars bool, u8,
// u16, u32, u64, u128, u256, address, string and bytes, the containers
// vector<T>, option<T>, map<K, V> and fixed<N>, and the names of other
// definitions. BCS itself is not self-describing, so the schema carries
// exactly the information the decoding side of the wire format requires:
// field order, variant numbering and element types.
package schema

import (
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ErrUnknownType is reported when a type name is not defined by the schema.
var ErrUnknownType = errors.New("schema: unknown type")

// DefKind tells struct definitions from enum definitions.
type DefKind byte

const (
	DefStruct DefKind = iota + 1
	DefEnum
)

// Field is one field of a struct definition. Fields are encoded in
// definition order with no names on the wire.
type Field struct {
	Name string
	Type *TypeExpr
}

// Variant is one variant of an enum definition, numbered by position. Unit
// variants carry no payload and have a nil Type.
type Variant struct {
	Name string
	Type *TypeExpr
}

// TypeDef is a named struct or enum definition.
type TypeDef struct {
	Name     string
	Kind     DefKind
	Fields   []Field   // DefStruct
	Variants []Variant // DefEnum
}

// Schema is a validated set of named type definitions plus an optional
// default root type. All named references inside a Schema resolve.
type Schema struct {
	Root  string
	types map[string]*TypeDef
}

type rawSchema struct {
	Root  string             `toml:"root"`
	Types map[string]rawType `toml:"types"`
}

type rawType struct {
	Kind     string       `toml:"kind"`
	Fields   []rawField   `toml:"fields"`
	Variants []rawVariant `toml:"variants"`
}

type rawField struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type rawVariant struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Load reads and validates a schema from a TOML file.
func Load(path string) (*Schema, error) {
	var raw rawSchema
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema file '%s'", path)
	}
	s, err := build(&raw, meta)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schema in file '%s'", path)
	}
	return s, nil
}

// Parse reads and validates a schema from TOML text.
func Parse(data []byte) (*Schema, error) {
	var raw rawSchema
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse schema")
	}
	return build(&raw, meta)
}

// Resolve returns the definition of the named type.
func (s *Schema) Resolve(name string) (*TypeDef, error) {
	def, ok := s.types[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "type %q is not defined", name)
	}
	return def, nil
}

// Types returns the names of all defined types in lexical order.
func (s *Schema) Types() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func build(raw *rawSchema, meta toml.MetaData) (*Schema, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown key %q", undecoded[0].String())
	}
	if len(raw.Types) == 0 {
		return nil, errors.New("no types defined")
	}

	names := make([]string, 0, len(raw.Types))
	for name := range raw.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	types := make(map[string]*TypeDef, len(names))
	for _, name := range names {
		def, err := buildDef(name, raw.Types[name])
		if err != nil {
			return nil, err
		}
		types[name] = def
	}
	for _, name := range names {
		if err := checkRefs(types, name, types[name]); err != nil {
			return nil, err
		}
	}
	if raw.Root != "" {
		if _, ok := types[raw.Root]; !ok {
			return nil, errors.Wrapf(ErrUnknownType, "root type %q is not defined", raw.Root)
		}
	}
	return &Schema{Root: raw.Root, types: types}, nil
}

func buildDef(name string, raw rawType) (*TypeDef, error) {
	if !validTypeName(name) {
		return nil, errors.Errorf("invalid type name %q", name)
	}
	if _, reserved := scalarKinds[name]; reserved {
		return nil, errors.Errorf("type name %q is reserved", name)
	}
	switch name {
	case "vector", "option", "map", "fixed":
		return nil, errors.Errorf("type name %q is reserved", name)
	}

	switch raw.Kind {
	case "struct":
		if len(raw.Variants) > 0 {
			return nil, errors.Errorf("struct type %q must not define variants", name)
		}
		def := &TypeDef{Name: name, Kind: DefStruct, Fields: make([]Field, 0, len(raw.Fields))}
		seen := make(map[string]bool, len(raw.Fields))
		for i, f := range raw.Fields {
			if !validTypeName(f.Name) {
				return nil, errors.Errorf("invalid name %q of field %d in type %q", f.Name, i, name)
			}
			if seen[f.Name] {
				return nil, errors.Errorf("duplicate field %q in type %q", f.Name, name)
			}
			seen[f.Name] = true
			t, err := ParseTypeExpr(f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "field %q of type %q", f.Name, name)
			}
			def.Fields = append(def.Fields, Field{Name: f.Name, Type: t})
		}
		return def, nil
	case "enum":
		if len(raw.Fields) > 0 {
			return nil, errors.Errorf("enum type %q must not define fields", name)
		}
		if len(raw.Variants) == 0 {
			return nil, errors.Errorf("enum type %q has no variants", name)
		}
		def := &TypeDef{Name: name, Kind: DefEnum, Variants: make([]Variant, 0, len(raw.Variants))}
		seen := make(map[string]bool, len(raw.Variants))
		for i, v := range raw.Variants {
			if !validTypeName(v.Name) {
				return nil, errors.Errorf("invalid name %q of variant %d in type %q", v.Name, i, name)
			}
			if seen[v.Name] {
				return nil, errors.Errorf("duplicate variant %q in type %q", v.Name, name)
			}
			seen[v.Name] = true
			variant := Variant{Name: v.Name}
			if v.Type != "" {
				t, err := ParseTypeExpr(v.Type)
				if err != nil {
					return nil, errors.Wrapf(err, "variant %q of type %q", v.Name, name)
				}
				variant.Type = t
			}
			def.Variants = append(def.Variants, variant)
		}
		return def, nil
	case "":
		return nil, errors.Errorf("type %q has no kind, expected \"struct\" or \"enum\"", name)
	default:
		return nil, errors.Errorf("unknown kind %q of type %q, expected \"struct\" or \"enum\"", raw.Kind, name)
	}
}

// checkRefs walks every type expression of def and requires each named
// reference to resolve.
func checkRefs(types map[string]*TypeDef, owner string, def *TypeDef) error {
	for _, f := range def.Fields {
		if err := checkExprRefs(types, owner, f.Type); err != nil {
			return err
		}
	}
	for _, v := range def.Variants {
		if err := checkExprRefs(types, owner, v.Type); err != nil {
			return err
		}
	}
	return nil
}

func checkExprRefs(types map[string]*TypeDef, owner string, t *TypeExpr) error {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KindNamed:
		if _, ok := types[t.Name]; !ok {
			return errors.Wrapf(ErrUnknownType, "type %q references undefined type %q", owner, t.Name)
		}
		return nil
	case KindMap:
		if err := checkExprRefs(types, owner, t.Key); err != nil {
			return err
		}
		return checkExprRefs(types, owner, t.Elem)
	case KindVector, KindOption:
		return checkExprRefs(types, owner, t.Elem)
	}
	return nil
}

// validTypeName reports whether s is an underscore or ASCII letter followed
// by underscores, letters and digits. Type, field and variant names share
// the grammar.
func validTypeName(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
