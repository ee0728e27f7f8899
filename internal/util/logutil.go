package util

import "strings"

// TruncateForLog caps s at limit runes for log output, marking truncation
// with an ellipsis. A non-positive limit yields the empty string.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
