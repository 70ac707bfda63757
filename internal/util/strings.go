package util

import (
	"fmt"
	"strings"
)

// EscapeString makes s safe to embed in a double-quoted assembler string.
// Bytes outside printable ASCII, including each byte of a multi-byte UTF-8
// sequence, become two-digit \xNN escapes.
func EscapeString(s string) string {
	sb := strings.Builder{}
	for _, b := range []byte(s) {
		switch {
		case b == '"':
			sb.WriteString(`\"`)
		case b == '\\':
			sb.WriteString(`\\`)
		case b == '\n':
			sb.WriteString(`\n`)
		case b == '\t':
			sb.WriteString(`\t`)
		case b >= 0x20 && b < 0x7f:
			sb.WriteByte(b)
		default:
			sb.WriteString(fmt.Sprintf("\\x%02X", b))
		}
	}
	return sb.String()
}
