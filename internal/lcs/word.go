package lcs

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SplitWords splits an identifier at case changes, underscores and digits:
// "LowerHex" becomes "Lower", "Hex" and "as_ref2" becomes "as", "_", "ref",
// "2". Runs of underscores form their own word.
func SplitWords(s string) []string {
	var words []string
	start := 0
	for i := 1; i < len(s); i++ {
		var next byte
		if i+1 < len(s) {
			next = s[i+1]
		}
		if boundary(s[i-1], s[i], next) {
			words = append(words, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}

func boundary(prev, curr, next byte) bool {
	switch {
	case isLower(prev) && isUpper(curr):
		// "asRef"
		return true
	case isUpper(prev) && isUpper(curr) && isLower(next):
		// "IOError"
		return true
	case (prev == '_') != (curr == '_'):
		return true
	case isLetter(prev) && isDigit(curr), isDigit(prev) && isLetter(curr):
		return true
	}
	return false
}

func isLower(b byte) bool  { return 'a' <= b && b <= 'z' }
func isUpper(b byte) bool  { return 'A' <= b && b <= 'Z' }
func isDigit(b byte) bool  { return '0' <= b && b <= '9' }
func isLetter(b byte) bool { return isLower(b) || isUpper(b) }

// SnakeCase lowers the words of an identifier and joins them with single
// underscores: "LowerHex" becomes "lower_hex".
func SnakeCase(s string) string {
	lower := cases.Lower(language.Und)
	var words []string
	for _, w := range SplitWords(s) {
		if strings.Trim(w, "_") != "" {
			words = append(words, lower.String(w))
		}
	}
	return strings.Join(words, "_")
}
