package feeds

import (
	"strings"
	"unicode"
)

// wordsPerMinute is the reading speed assumed for technical security news.
const wordsPerMinute = 238

// CalculateReadingTime estimates reading time in whole minutes, rounding up.
// Empty text reads in 0 minutes; anything else takes at least 1.
func CalculateReadingTime(text string) int {
	words := countWords(text)
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// countWords splits on whitespace and punctuation so that "zero-day" and
// "CVE-2024-1234" count as several words, like a reader would scan them.
func countWords(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(".,;:!?\"'()[]{}—–-/", r)
	}))
}
