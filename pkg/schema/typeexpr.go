package schema

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/movechain/gobcs/pkg/bcs"
)

// ErrBadTypeExpr is reported when a type expression does not follow the
// grammar.
var ErrBadTypeExpr = errors.New("schema: bad type expression")

// TypeKind enumerates the shapes a type expression can denote.
type TypeKind byte

const (
	KindBool TypeKind = iota + 1
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindU256
	KindAddress
	KindString
	KindBytes
	KindFixed
	KindVector
	KindOption
	KindMap
	KindNamed
)

// TypeExpr is a parsed type expression: a scalar like u64, a container like
// vector<Coin> or map<string, u64>, a fixed<N> byte array, or a reference to
// a named definition.
type TypeExpr struct {
	Kind TypeKind
	Size int       // KindFixed byte count
	Key  *TypeExpr // KindMap key
	Elem *TypeExpr // KindVector and KindOption element, KindMap value
	Name string    // KindNamed reference
}

var scalarKinds = map[string]TypeKind{
	"bool":    KindBool,
	"u8":      KindU8,
	"u16":     KindU16,
	"u32":     KindU32,
	"u64":     KindU64,
	"u128":    KindU128,
	"u256":    KindU256,
	"address": KindAddress,
	"string":  KindString,
	"bytes":   KindBytes,
}

// ParseTypeExpr parses a complete type expression. Whitespace is permitted
// around names and punctuation; anything after the expression is an error.
func ParseTypeExpr(s string) (*TypeExpr, error) {
	p := &exprParser{in: s}
	t, err := p.parse()
	if err != nil {
		return nil, errors.Wrapf(ErrBadTypeExpr, "%s in %q", err, s)
	}
	p.skipSpace()
	if p.pos != len(p.in) {
		return nil, errors.Wrapf(ErrBadTypeExpr, "unexpected %q at position %d in %q", p.in[p.pos:], p.pos, s)
	}
	return t, nil
}

// String returns the canonical text form of the expression; parsing it
// yields an equal expression.
func (t *TypeExpr) String() string {
	switch t.Kind {
	case KindBool:
		return "bool"
	case KindU8:
		return "u8"
	case KindU16:
		return "u16"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindU128:
		return "u128"
	case KindU256:
		return "u256"
	case KindAddress:
		return "address"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindFixed:
		return "fixed<" + strconv.Itoa(t.Size) + ">"
	case KindVector:
		return "vector<" + t.Elem.String() + ">"
	case KindOption:
		return "option<" + t.Elem.String() + ">"
	case KindMap:
		return "map<" + t.Key.String() + ", " + t.Elem.String() + ">"
	case KindNamed:
		return t.Name
	}
	return "invalid"
}

type exprParser struct {
	in  string
	pos int
}

func (p *exprParser) parse() (*TypeExpr, error) {
	name := p.ident()
	if name == "" {
		return nil, errors.Errorf("expected a type name at position %d", p.pos)
	}
	switch name {
	case "vector", "option":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		kind := KindVector
		if name == "option" {
			kind = KindOption
		}
		return &TypeExpr{Kind: kind, Elem: elem}, nil
	case "map":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		key, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		value, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return &TypeExpr{Kind: KindMap, Key: key, Elem: value}, nil
	case "fixed":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		size, err := p.number()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		if size <= 0 || size > bcs.MaxSequenceLength {
			return nil, errors.Errorf("fixed size %d outside 1..%d", size, bcs.MaxSequenceLength)
		}
		return &TypeExpr{Kind: KindFixed, Size: size}, nil
	default:
		if kind, ok := scalarKinds[name]; ok {
			return &TypeExpr{Kind: kind}, nil
		}
		return &TypeExpr{Kind: KindNamed, Name: name}, nil
	}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.in) && (p.in[p.pos] == ' ' || p.in[p.pos] == '\t') {
		p.pos++
	}
}

// ident scans an identifier, an underscore or ASCII letter followed by
// underscores, letters and digits. An empty result means no identifier
// starts at the cursor.
func (p *exprParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.in) {
		c := p.in[p.pos]
		isAlpha := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isAlpha && !(isDigit && p.pos > start) {
			break
		}
		p.pos++
	}
	return p.in[start:p.pos]
}

func (p *exprParser) number() (int, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.in) && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, errors.Errorf("expected a number at position %d", start)
	}
	n, err := strconv.Atoi(p.in[start:p.pos])
	if err != nil {
		return 0, errors.Errorf("number %q out of range", p.in[start:p.pos])
	}
	return n, nil
}

func (p *exprParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.in) || p.in[p.pos] != c {
		return errors.Errorf("expected %q at position %d", string(c), p.pos)
	}
	p.pos++
	return nil
}
