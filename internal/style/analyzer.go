// Package style infers a short writing-style descriptor from user-supplied
// example messages.
package style

import (
	"regexp"
	"strings"
)

var capsWord = regexp.MustCompile(`\b[A-Z]{2,}\b`)

// Analyze inspects the example messages and returns a one-line natural
// language summary of the user's writing habits. Returns "" for no examples;
// callers treat empty as "omit the style section".
func Analyze(examples []string) string {
	if len(examples) == 0 {
		return ""
	}

	total := 0
	hasEmojis, hasQuestions, hasExclamations, hasCaps := false, false, false, false
	for _, ex := range examples {
		total += len(ex)
		if containsEmoji(ex) {
			hasEmojis = true
		}
		if strings.Contains(ex, "?") {
			hasQuestions = true
		}
		if strings.Contains(ex, "!") {
			hasExclamations = true
		}
		if capsWord.MatchString(ex) {
			hasCaps = true
		}
	}
	avgLength := float64(total) / float64(len(examples))

	var sb strings.Builder
	sb.WriteString("User writes ")
	switch {
	case avgLength < 50:
		sb.WriteString("short, concise messages. ")
	case avgLength > 150:
		sb.WriteString("detailed, longer messages. ")
	default:
		sb.WriteString("medium-length messages. ")
	}

	if hasEmojis {
		sb.WriteString("Uses emojis occasionally. ")
	}
	if hasQuestions {
		sb.WriteString("Often asks questions. ")
	}
	if hasExclamations {
		sb.WriteString("Uses exclamation marks for emphasis. ")
	}
	if hasCaps {
		sb.WriteString("Sometimes uses CAPS for emphasis. ")
	}

	return sb.String()
}

// containsEmoji reports whether s contains a code point in the main emoji
// blocks (U+1F300 through U+1F9FF).
func containsEmoji(s string) bool {
	for _, r := range s {
		if r >= 0x1F300 && r <= 0x1F9FF {
			return true
		}
	}
	return false
}
