package utils

// Truncate caps s at maxLen bytes, marking elision with "...". Keeps long
// identifiers readable in debug logs.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
