package move

import (
	"github.com/pkg/errors"

	"github.com/movechain/gobcs/pkg/bcs"
)

// Identifier is a Move identifier: an underscore or ASCII letter followed by
// underscores, letters and digits. Module and struct names are Identifiers.
type Identifier string

// NewIdentifier validates s against the identifier grammar.
func NewIdentifier(s string) (Identifier, error) {
	if !validIdentifier(s) {
		return "", errors.Errorf("invalid identifier %q", s)
	}
	return Identifier(s), nil
}

func validIdentifier(s string) bool {
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

func (id Identifier) String() string {
	return string(id)
}

func (id Identifier) MarshalBCS(s *bcs.Serializer) error {
	return s.String(string(id))
}

// UnmarshalBCS reads a length-prefixed string and validates the grammar, so
// no invalid Identifier can enter through the wire.
func (id *Identifier) UnmarshalBCS(d *bcs.Deserializer) error {
	s, err := d.String()
	if err != nil {
		return errors.Wrap(err, "failed to deserialize identifier")
	}
	v, err := NewIdentifier(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}
