package ai

import "strings"

// prohibited words short-circuit the AI flow before any request is made.
var prohibited = []string{"hack", "ddos", "malware", "exploit", "crack"}

// Blocked reports whether the text trips the prohibited-topic filter.
func Blocked(text string) bool {
	lowered := strings.ToLower(text)
	for _, word := range prohibited {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
