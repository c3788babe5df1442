package summarize

import (
	"math"
	"sort"
	"strings"
)

// indicatorWords earn a sentence a scoring bonus per occurrence; they tend
// to flag sentences that carry a document's conclusions.
var indicatorWords = []string{
	"important", "significant", "therefore", "conclusion",
	"summary", "result", "key", "main",
}

// ExtractiveSummary is the deterministic fallback used when the ML model
// is unavailable or any chunk summarization fails. Sentences are scored
// by position, length and indicator words; the top max(5, ceil(30%)) are
// selected and re-joined in original document order. Documents of five or
// fewer sentences are returned unchanged.
func ExtractiveSummary(text string) string {
	sentences := SplitSentences(text)
	if len(sentences) <= 5 {
		return text
	}

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		ranked[i] = scored{index: i, score: scoreSentence(s, i, len(sentences))}
	}

	// Stable ordering with an index tie-break keeps the selection fully
	// deterministic for a fixed input.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].index < ranked[j].index
	})

	keep := int(math.Ceil(float64(len(sentences)) * 0.3))
	if keep < 5 {
		keep = 5
	}
	ranked = ranked[:keep]

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].index < ranked[j].index })

	selected := make([]string, len(ranked))
	for i, r := range ranked {
		selected[i] = sentences[r.index]
	}
	return strings.Join(selected, ". ") + "."
}

// scoreSentence applies the position / length / keyword heuristic.
func scoreSentence(sentence string, index, total int) float64 {
	var score float64

	// Openings and closings carry disproportionate weight.
	if float64(index) < float64(total)*0.2 || float64(index) > float64(total)*0.8 {
		score += 0.3
	}

	if n := wordCount(sentence); n > 5 && n < 25 {
		score += 0.3
	}

	lower := strings.ToLower(sentence)
	for _, kw := range indicatorWords {
		if strings.Contains(lower, kw) {
			score += 0.1
		}
	}
	return score
}
