package strings

import "strings"

// TrimPrefixAll returns string `s` without provided `prefix`es.
// If `prefix`es are repeated, all of them are removed.
func TrimPrefixAll(s, prefix string) string {
	lp := len(prefix)
	for strings.HasPrefix(s, prefix) {
		s = s[lp:]
	}
	return s
}

// supply suffix if text has not.
func SupplySuffix(text, suffix string) string {
	if strings.HasSuffix(text, suffix) {
		return text
	}
	return text + suffix
}
