package escape

// Hex digit decoding as a lookup table, one entry per byte value.
// 0xFF marks a byte that is not a hex digit.
var hexTable = [256]byte{}

func init() {
	for i := range hexTable {
		hexTable[i] = 0xFF
	}
	for c := '0'; c <= '9'; c++ {
		hexTable[c] = byte(c - '0')
	}
	for c := 'a'; c <= 'f'; c++ {
		hexTable[c] = byte(c-'a') + 10
	}
	for c := 'A'; c <= 'F'; c++ {
		hexTable[c] = byte(c-'A') + 10
	}
}

// hexVal decodes a single hex digit. Total over all byte values: a
// non-digit yields ok == false, never a panic.
func hexVal(c byte) (v byte, ok bool) {
	v = hexTable[c]
	return v, v != 0xFF
}
