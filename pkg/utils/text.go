package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var spaceRegex = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace and trims the result
func CleanText(text string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))
}

// CountWords counts whitespace separated tokens that contain a letter or digit
func CountWords(text string) int {
	count := 0
	for _, word := range strings.Fields(text) {
		if strings.IndexFunc(word, func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}) >= 0 {
			count++
		}
	}
	return count
}

// TruncateText truncates text to a maximum length, preserving word boundaries
func TruncateText(text string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	truncated := string(runes[:maxLength])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "..."
}

// EscapeTableCell makes text safe for a single markdown table cell
func EscapeTableCell(text string) string {
	text = CleanText(text)
	return strings.ReplaceAll(text, "|", `\|`)
}
