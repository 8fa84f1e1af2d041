package naming

import (
	"strings"
	"unicode"
)

// ToSnake converts a camelCase or PascalCase identifier to snake_case.
// An underscore is inserted before an upper-case letter that follows a
// lower-case letter or a digit, so "storageSizeInGBs" becomes
// "storage_size_in_gbs".
func ToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	var prev rune
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

// ToCamel converts a snake_case identifier to lower camelCase.
func ToCamel(s string) string {
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))

	first := true
	for _, part := range parts {
		if part == "" {
			continue
		}
		if first {
			b.WriteString(strings.ToLower(part[:1]) + part[1:])
			first = false
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}
