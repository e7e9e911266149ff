package validators

import "strings"

// SanitizeString trims whitespace and clips the value to maxLen bytes. A zero
// maxLen means unbounded.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
