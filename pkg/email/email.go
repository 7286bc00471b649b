// Package email derives presentable fallbacks from email addresses.
package email

import (
	"strings"
	"unicode"
)

// DisplayName builds a display name from the local part of an email address,
// for signups that omit the name field. "jane.doe@example.com" becomes
// "Jane Doe". Falls back to "User" when nothing usable remains.
func DisplayName(address string) string {
	local := address
	if at := strings.IndexByte(address, '@'); at > 0 {
		local = address[:at]
	}

	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
