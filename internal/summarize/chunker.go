package summarize

import (
	"strings"
)

// DefaultMaxChunkLength bounds rendered chunk text so every chunk fits the
// summarization model's input limit.
const DefaultMaxChunkLength = 512

// Chunk is an ephemeral span of consecutive sentences. Chunks preserve
// sentence boundaries and original order and are never persisted.
type Chunk struct {
	Sentences []string
	length    int // rendered length of Text()
}

// Text renders the chunk the way the model consumes it: sentences joined
// by ". " with a closing period.
func (c Chunk) Text() string {
	if len(c.Sentences) == 0 {
		return ""
	}
	return strings.Join(c.Sentences, ". ") + "."
}

// Len reports the rendered character length of the chunk.
func (c Chunk) Len() int {
	return c.length
}

// PackChunks greedily packs sentences into chunks whose rendered length
// stays within maxLen. A sentence that does not fit closes the current
// chunk and opens the next one; a single sentence longer than maxLen
// still gets a chunk of its own since sentences are never split.
func PackChunks(sentences []string, maxLen int) []Chunk {
	if maxLen <= 0 {
		maxLen = DefaultMaxChunkLength
	}

	var chunks []Chunk
	var current Chunk
	for _, s := range sentences {
		cost := len(s) + 1 // sentence plus closing period
		if len(current.Sentences) > 0 {
			cost = len(s) + 2 // ". " separator replaces the period
		}
		if len(current.Sentences) > 0 && current.length+len(s)+2 > maxLen {
			chunks = append(chunks, current)
			current = Chunk{}
			cost = len(s) + 1
		}
		current.Sentences = append(current.Sentences, s)
		current.length += cost
	}
	if len(current.Sentences) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
