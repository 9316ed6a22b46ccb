package bcs

import "github.com/pkg/errors"

// Error kinds reported by the codec. Deserialization failures wrap one of
// these sentinels with positional context; callers distinguish kinds with
// errors.Is and must treat any failure as terminal for the whole decode.
var (
	// ErrOutOfRange is reported when a numeric value does not fit the
	// requested type, for example constructing a U8 from 256 or a U128
	// from a negative big integer.
	ErrOutOfRange = errors.New("bcs: value out of range")

	// ErrTruncated is reported when fewer bytes remain in the buffer than
	// an operation requires.
	ErrTruncated = errors.New("bcs: not enough bytes")

	// ErrNonCanonical is reported for input that parses but is not the
	// single permitted encoding of its value: overlong ULEB128 forms,
	// boolean bytes other than 0 and 1, map keys out of order.
	ErrNonCanonical = errors.New("bcs: non-canonical encoding")

	// ErrOverflow is reported when a ULEB128 value or a declared length
	// exceeds the supported width or the sequence length ceiling.
	ErrOverflow = errors.New("bcs: length or value overflows supported range")

	// ErrUnknownVariant is reported when an enum variant index is not
	// below the variant count declared by the caller.
	ErrUnknownVariant = errors.New("bcs: unknown enum variant")

	// ErrInvalidUTF8 is reported when decoded string bytes are not valid
	// UTF-8.
	ErrInvalidUTF8 = errors.New("bcs: invalid UTF-8 string")
)
