package api

import "strings"

// safeBytes are left untouched by Requote in addition to unreserved characters.
const safeBytes = "!#$%&'()*+,/:;=?@[]~"

const upperhex = "0123456789ABCDEF"

// Requote percent-encodes every byte of s that may not appear literally in a
// URL while leaving reserved delimiters and existing %XX escapes alone. The
// filter grammar's braces, quotes and spaces end up encoded on the wire, and
// the server decodes them back to the exact text the caller built.
func Requote(s string) string {
	if !needsQuoting(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%':
			if i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
				b.WriteByte(c)
			} else {
				b.WriteString("%25")
			}
		case isUnreserved(c) || strings.IndexByte(safeBytes, c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

func needsQuoting(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' {
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return true
			}
			continue
		}
		if !isUnreserved(c) && strings.IndexByte(safeBytes, c) < 0 {
			return true
		}
	}
	return false
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	}
	return false
}
