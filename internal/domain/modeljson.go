package domain

import "strings"

// NormalizeModelJSON strips Markdown code fences that text models wrap around
// JSON answers and trims surrounding whitespace.
func NormalizeModelJSON(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
