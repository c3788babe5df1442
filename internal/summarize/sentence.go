// Package summarize condenses extracted document text: chunked ML
// summarization with a deterministic extractive fallback.
package summarize

import (
	"strings"
)

// SplitSentences splits text on runs of sentence-terminal punctuation
// (. ! ?), trims surrounding whitespace and discards empty fragments.
// This is intentionally simple and locale-blind; the chunker and the
// fallback scorer both depend on exactly these boundaries.
func SplitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
