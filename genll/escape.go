// Copyright © 2020 The Pea Authors under an MIT-style license.

package genll

import "strings"

// escape returns an escaped form of a string suitable for an LLVM c"" constant.
// Printable ASCII other than " and \ is written as is.
// Any other byte is escaped in the form \XX
// where XX are the hex digits of the byte.
func escape(s string, out *strings.Builder) string {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if ' ' <= b && b <= '~' && b != '"' && b != '\\' {
			out.WriteByte(b)
			continue
		}
		out.WriteByte('\\')
		out.WriteRune(hexDigit(b >> 4))
		out.WriteRune(hexDigit(b & 0xF))
	}
	return out.String()
}

func hexDigit(b byte) rune {
	r := rune(b & 0xF)
	if r < 10 {
		return r + '0'
	}
	return r + ('A' - 10)
}
