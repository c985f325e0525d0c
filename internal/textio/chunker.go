// Package textio splits extracted article text into bounded-size segments
// suitable for individual summarization calls.
package textio

import "strings"

// Chunk splits text into ordered segments of at most maxChars characters.
// Boundaries prefer the last ". " occurring past the half-length mark of the
// current slice so chunks stay on sentence boundaries; otherwise the cut is a
// hard one at maxChars. The input is trimmed first; text that fits returns a
// single-element slice (possibly the empty string).
func Chunk(text string, maxChars int) []string {
	runes := []rune(strings.TrimSpace(text))
	if maxChars <= 0 || len(runes) <= maxChars {
		return []string{string(runes)}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		if end < len(runes) {
			if cut := lastSentenceEnd(runes[start:end]); cut > maxChars/2 {
				// Keep the period, drop the following space into the next slice.
				end = start + cut + 1
			}
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[start:end])))
		start = end
	}
	return chunks
}

// lastSentenceEnd returns the index of the '.' in the last ". " occurrence,
// or -1 when the slice contains none.
func lastSentenceEnd(s []rune) int {
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] == '.' && s[i+1] == ' ' {
			return i
		}
	}
	return -1
}
