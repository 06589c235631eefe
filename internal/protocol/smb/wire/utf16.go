package wire

import (
	"encoding/binary"
	"unicode/utf16"
)

// encodeUTF16LE encodes a string to UTF-16LE byte slice
func encodeUTF16LE(s string) []byte {
	u16s := utf16.Encode([]rune(s))
	b := make([]byte, len(u16s)*2)
	for i, r := range u16s {
		binary.LittleEndian.PutUint16(b[i*2:], r)
	}
	return b
}

// decodeUTF16LE converts UTF-16LE bytes to a Go string
func decodeUTF16LE(b []byte) string {
	if len(b) < 2 {
		return ""
	}
	if len(b)%2 != 0 {
		b = b[:len(b)-1] // Truncate odd byte
	}
	u16s := make([]uint16, len(b)/2)
	for i := range u16s {
		u16s[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	// Remove null terminator if present
	for len(u16s) > 0 && u16s[len(u16s)-1] == 0 {
		u16s = u16s[:len(u16s)-1]
	}
	return string(utf16.Decode(u16s))
}
