package escape

import "fmt"

// ErrorKind classifies why a resolution call failed.
type ErrorKind int

const (
	// ErrInvalidUtf8 means the spliced output does not decode as valid
	// UTF-8, even though every individual escape was well-formed.
	ErrInvalidUtf8 ErrorKind = iota
	// ErrIncompleteHexEscape means fewer than 2 hex digits remained
	// after \x before the end of input.
	ErrIncompleteHexEscape
	// ErrInvalidHexDigit means a required hex digit position held a
	// non-hex character.
	ErrInvalidHexDigit
	// ErrHexValueOutOfRange means a \xHH value exceeded the dialect
	// ceiling (0x7F for ascii, 0xFF for byte/unicode).
	ErrHexValueOutOfRange
	// ErrMalformedUnicodeEscape means a \u escape was missing its
	// braces or carried 0 or more than 6 digits.
	ErrMalformedUnicodeEscape
	// ErrInvalidScalarValue means a \u{...} value exceeded 0x10FFFF or
	// fell into the surrogate range 0xD800-0xDFFF.
	ErrInvalidScalarValue
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidUtf8:
		return "invalid utf-8"
	case ErrIncompleteHexEscape:
		return "incomplete hex escape"
	case ErrInvalidHexDigit:
		return "invalid hex digit"
	case ErrHexValueOutOfRange:
		return "hex value out of range"
	case ErrMalformedUnicodeEscape:
		return "malformed unicode escape"
	case ErrInvalidScalarValue:
		return "invalid scalar value"
	}
	return "unknown error"
}

// EscapeError is the failure result of a resolution call. Offset is
// the byte position of the escape introducer the failure belongs to;
// for ErrInvalidUtf8 it is the position of the offending output byte.
type EscapeError struct {
	Kind   ErrorKind
	Offset int
	detail string
}

func (e *EscapeError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("%s at position %d: %s", e.Kind, e.Offset, e.detail)
	}
	return fmt.Sprintf("%s at position %d", e.Kind, e.Offset)
}

func errAt(kind ErrorKind, offset int, format string, args ...interface{}) *EscapeError {
	return &EscapeError{
		Kind:   kind,
		Offset: offset,
		detail: fmt.Sprintf(format, args...),
	}
}
