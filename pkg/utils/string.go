package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen bytes plus an ellipsis, backing off
// so that a multi-byte character is never cut in half.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
