// Package ident handles possibly schema-qualified Postgres identifiers.
package ident

import (
	"strings"
)

// Suffixed returns qualified identifier parts with suffix appended to the last part.
func Suffixed(base, suffix string) []string {
	parts := SplitQualified(base)
	if len(parts) == 0 {
		if suffix == "" {
			return nil
		}
		return []string{suffix}
	}
	out := make([]string, len(parts))
	copy(out, parts)
	out[len(out)-1] = out[len(out)-1] + suffix
	return out
}

// SplitQualified breaks a table identifier such as `audit."Action Log"` into its unquoted parts.
// Dots inside double quotes belong to the part; a doubled quote inside quotes is a literal quote.
func SplitQualified(ident string) []string {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return nil
	}
	var (
		parts  []string
		cur    strings.Builder
		quoted bool
	)
	for i := 0; i < len(ident); i++ {
		c := ident[i]
		switch {
		case c == '"' && quoted && strings.HasPrefix(ident[i+1:], `"`):
			cur.WriteByte('"')
			i++
		case c == '"':
			quoted = !quoted
		case c == '.' && !quoted:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(parts, strings.TrimSpace(cur.String()))
}

// QuoteQualified joins identifier parts into a schema-qualified SQL identifier, quoting each part.
func QuoteQualified(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(Quote(p))
	}
	return b.String()
}

// Quote safely quotes a single identifier part.
func Quote(part string) string {
	return `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
}

// Base returns the last part of a qualified identifier.
func Base(ident string) string {
	parts := SplitQualified(ident)
	if len(parts) == 0 {
		return strings.TrimSpace(ident)
	}
	return parts[len(parts)-1]
}

// Valid reports whether every part of a qualified identifier is non-empty.
func Valid(parts []string) bool {
	if len(parts) == 0 || len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
