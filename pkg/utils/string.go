package utils

// Truncate is a simple string truncate. It counts runes, not bytes, so a
// Turkish query is never cut mid-character.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
