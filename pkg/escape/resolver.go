// Package escape resolves backslash escape sequences in literal text.
// It understands the escape grammar of Rust-style string, byte and
// char literals: simple escapes (\n, \t, \r, \\, \0), hex byte
// escapes (\xHH), unicode code point escapes (\u{...}) and quote
// escapes (\', \"). Which of these are legal for a call, and how
// large a hex value may be, is selected by a Dialect.
//
// Resolution is a single left-to-right scan that splices resolved
// escape values into a fresh output buffer; the input is never
// mutated. An escape letter the active dialect does not recognize is
// not an error: the backslash is kept as a literal byte and scanning
// resumes at the following character.
package escape

import "unicode/utf8"

const maxScalar = 0x10FFFF

// Resolve replaces every escape sequence in source that is legal
// under dialect with the literal bytes it denotes. Non-escaped
// content is preserved exactly. A backslash as the very last byte of
// the input is kept literally.
//
// The call either succeeds for the whole input or fails with a
// *EscapeError; no partial output is returned. The output is
// guaranteed to be valid UTF-8.
func Resolve(source string, dialect Dialect) (string, error) {
	if len(source) == 0 {
		return "", nil
	}

	out := make([]byte, 0, len(source))
	for i := 0; i < len(source); {
		c := source[i]
		if c != '\\' || i == len(source)-1 {
			out = append(out, c)
			i++
			continue
		}

		switch next := source[i+1]; {
		case isSimple(next, dialect):
			out = append(out, simpleValue(next))
			i += 2
		case next == 'x' && dialect.hexCeiling() >= 0:
			b, err := scanHexByte(source, i, dialect)
			if err != nil {
				return "", err
			}
			out = append(out, b)
			i += 4
		case next == 'u' && dialect.allowsUnicode():
			r, end, err := scanUnicode(source, i)
			if err != nil {
				return "", err
			}
			out = utf8.AppendRune(out, r)
			i = end
		default:
			// Not an escape under this dialect. Keep the introducer
			// and rescan the following byte fresh.
			out = append(out, '\\')
			i++
		}
	}

	if !utf8.Valid(out) {
		return "", errAt(ErrInvalidUtf8, invalidUtf8Offset(out), "resolved output is not valid UTF-8")
	}
	return string(out), nil
}

// Ascii resolves ASCII escapes: simple escapes plus \xHH with a value
// of at most 0x7F.
func Ascii(source string) (string, error) {
	return Resolve(source, DialectAscii)
}

// Bytes resolves byte escapes: simple escapes plus \xHH with a value
// of at most 0xFF. The spliced output must still form valid UTF-8.
func Bytes(source string) (string, error) {
	return Resolve(source, DialectByte)
}

// Unicode resolves unicode escapes: everything Bytes accepts plus
// \u{...} code point escapes with 1-6 hex digits.
func Unicode(source string) (string, error) {
	return Resolve(source, DialectUnicode)
}

// Quotes resolves quote escapes: simple escapes plus \' and \".
func Quotes(source string) (string, error) {
	return Resolve(source, DialectQuote)
}

func isSimple(c byte, dialect Dialect) bool {
	switch c {
	case 'n', 't', 'r', '\\', '0':
		return true
	case '\'', '"':
		return dialect.allowsQuotes()
	}
	return false
}

func simpleValue(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	// '\\', '\'' and '"' map to themselves.
	return c
}

// scanHexByte scans the \xHH escape starting at offset i and returns
// the encoded byte value.
func scanHexByte(source string, i int, dialect Dialect) (byte, error) {
	if i+3 >= len(source) {
		return 0, errAt(ErrIncompleteHexEscape, i, "need 2 hex digits after \\x")
	}
	hi, ok := hexVal(source[i+2])
	if !ok {
		return 0, errAt(ErrInvalidHexDigit, i, "'%c' is not a hex digit", source[i+2])
	}
	lo, ok := hexVal(source[i+3])
	if !ok {
		return 0, errAt(ErrInvalidHexDigit, i, "'%c' is not a hex digit", source[i+3])
	}
	v := int(hi)<<4 | int(lo)
	if ceiling := dialect.hexCeiling(); v > ceiling {
		return 0, errAt(ErrHexValueOutOfRange, i, "0x%02X exceeds 0x%02X for %s dialect", v, ceiling, dialect)
	}
	return byte(v), nil
}

// scanUnicode scans the \u{H..H} escape starting at offset i and
// returns the decoded rune plus the offset just past the closing
// brace.
func scanUnicode(source string, i int) (rune, int, error) {
	if i+2 >= len(source) || source[i+2] != '{' {
		return 0, 0, errAt(ErrMalformedUnicodeEscape, i, "missing '{' after \\u")
	}

	var value uint32
	j := i + 3
	for ; j < len(source) && source[j] != '}'; j++ {
		v, ok := hexVal(source[j])
		if !ok {
			return 0, 0, errAt(ErrInvalidHexDigit, i, "'%c' is not a hex digit", source[j])
		}
		if j-(i+3) >= 6 {
			return 0, 0, errAt(ErrMalformedUnicodeEscape, i, "more than 6 hex digits")
		}
		value = value<<4 | uint32(v)
	}
	if j >= len(source) {
		return 0, 0, errAt(ErrMalformedUnicodeEscape, i, "missing '}'")
	}
	if j == i+3 {
		return 0, 0, errAt(ErrMalformedUnicodeEscape, i, "empty braces")
	}
	if value > maxScalar || (value >= 0xD800 && value <= 0xDFFF) {
		return 0, 0, errAt(ErrInvalidScalarValue, i, "0x%X is not a unicode scalar value", value)
	}
	return rune(value), j + 1, nil
}

// invalidUtf8Offset returns the position of the first byte where b
// stops decoding as valid UTF-8.
func invalidUtf8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(b)
}
