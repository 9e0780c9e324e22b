package escape

// Dialect selects which escape kinds are legal for one resolution call
// and what numeric range a \xHH escape may take. The dialects mirror
// the escape categories of Rust-style literals: ASCII escapes, byte
// escapes, unicode escapes and quote escapes.
type Dialect int

const (
	// DialectAscii allows simple escapes and \xHH with a value up to 0x7F.
	DialectAscii Dialect = iota
	// DialectByte allows simple escapes and \xHH with a value up to 0xFF.
	DialectByte
	// DialectUnicode is a superset of DialectByte that also allows
	// \u{...} code point escapes.
	DialectUnicode
	// DialectQuote allows simple escapes plus \' and \" passthrough.
	DialectQuote
)

func (d Dialect) String() string {
	switch d {
	case DialectAscii:
		return "ascii"
	case DialectByte:
		return "byte"
	case DialectUnicode:
		return "unicode"
	case DialectQuote:
		return "quote"
	}
	return "unknown"
}

// hexCeiling returns the maximum value a \xHH escape may carry under
// the dialect, or -1 if the dialect has no hex escape at all.
func (d Dialect) hexCeiling() int {
	switch d {
	case DialectAscii:
		return 0x7F
	case DialectByte, DialectUnicode:
		return 0xFF
	}
	return -1
}

// allowsUnicode reports whether \u{...} escapes are part of the dialect.
func (d Dialect) allowsUnicode() bool {
	return d == DialectUnicode
}

// allowsQuotes reports whether \' and \" are part of the dialect.
func (d Dialect) allowsQuotes() bool {
	return d == DialectQuote
}
