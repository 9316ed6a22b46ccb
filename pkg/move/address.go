// Package move holds value types of the Move object model built on top of
// the bcs codec: account addresses, identifiers and type tags.
package move

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/movechain/gobcs/pkg/bcs"
)

// AddressSize is the length of an account address in bytes.
const AddressSize = 32

// AccountAddress is a fixed 32-byte account address. The canonical text form
// is "0x" followed by 64 lowercase hex digits; parsing also accepts the
// short forms with leading zeros omitted, like "0x1".
type AccountAddress [AddressSize]byte

// NewAddressFromBytes creates an address from exactly AddressSize bytes.
func NewAddressFromBytes(b []byte) (AccountAddress, error) {
	var a AccountAddress
	if l := len(b); l != AddressSize {
		return a, errors.Errorf("incorrect address size %d, expected %d", l, AddressSize)
	}
	copy(a[:], b)
	return a, nil
}

// NewAddressFromString parses a hex address with an optional "0x" prefix.
// Short forms are zero-extended on the left, so "0x1" and the full 64-digit
// form denote the same address.
func NewAddressFromString(s string) (AccountAddress, error) {
	var a AccountAddress
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return a, errors.Errorf("empty address string %q", s)
	}
	if len(digits) > 2*AddressSize {
		return a, errors.Errorf("address string %q longer than %d digits", s, 2*AddressSize)
	}
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return a, errors.Wrapf(err, "invalid hex in address string %q", s)
	}
	copy(a[AddressSize-len(b):], b)
	return a, nil
}

// String returns the canonical full form, "0x" plus 64 hex digits.
func (a AccountAddress) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ShortString returns the address with leading zeros trimmed, "0x0" for the
// zero address.
func (a AccountAddress) ShortString() string {
	trimmed := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return "0x" + trimmed
}

func (a AccountAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountAddress) UnmarshalText(text []byte) error {
	addr, err := NewAddressFromString(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

func (a AccountAddress) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

func (a *AccountAddress) UnmarshalJSON(value []byte) error {
	s, err := strconv.Unquote(string(value))
	if err != nil {
		return errors.Wrap(err, "failed to unmarshal address from JSON")
	}
	addr, err := NewAddressFromString(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// MarshalBCS writes the address as 32 raw bytes, no length prefix.
func (a AccountAddress) MarshalBCS(s *bcs.Serializer) error {
	return s.FixedBytes(a[:])
}

func (a *AccountAddress) UnmarshalBCS(d *bcs.Deserializer) error {
	b, err := d.FixedBytes(AddressSize)
	if err != nil {
		return errors.Wrap(err, "failed to deserialize address")
	}
	copy(a[:], b)
	return nil
}
