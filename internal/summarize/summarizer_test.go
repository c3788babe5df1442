package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModel summarizes each chunk to a fixed tag so chunk ordering is
// observable in the joined output.
type stubModel struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (m *stubModel) SummarizeChunk(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.fail {
		return "", errors.New("model exploded")
	}
	return fmt.Sprintf("summary(%s)", SplitSentences(text)[0]), nil
}

func TestSummarize_JoinsChunkSummariesInOrder(t *testing.T) {
	// Three sentences of ~300 characters each force one chunk per
	// sentence at the default limit.
	var sentences []string
	for i := 0; i < 3; i++ {
		sentences = append(sentences, fmt.Sprintf("chunk%d %s", i, strings.Repeat("word ", 60)))
	}
	text := strings.Join(sentences, ". ") + "."

	model := &stubModel{}
	s := New(model, DefaultMaxChunkLength, 2)

	summary, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, 3, model.calls)

	positions := make([]int, 3)
	for i := 0; i < 3; i++ {
		positions[i] = strings.Index(summary, fmt.Sprintf("summary(chunk%d", i))
		require.GreaterOrEqual(t, positions[i], 0)
	}
	assert.True(t, positions[0] < positions[1] && positions[1] < positions[2],
		"chunk summaries must be concatenated in chunk order")
}

func TestSummarize_ChunkFailureFallsBack(t *testing.T) {
	model := &stubModel{fail: true}
	s := New(model, DefaultMaxChunkLength, 2)

	text := twentySentences()
	summary, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)

	// Any chunk failure abandons the ML path wholesale.
	assert.Equal(t, ExtractiveSummary(text), summary)
}

func TestSummarize_NilModelUsesFallback(t *testing.T) {
	s := New(nil, DefaultMaxChunkLength, 2)
	text := twentySentences()

	summary, err := s.Summarize(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, ExtractiveSummary(text), summary)
}

func TestSummarize_EmptyText(t *testing.T) {
	s := New(&stubModel{}, DefaultMaxChunkLength, 2)
	summary, err := s.Summarize(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestOpenAIModel_MissingKeyIsUnavailable(t *testing.T) {
	m := NewOpenAIModel("", "gpt-4o-mini", 40, 150)
	_, err := m.SummarizeChunk(context.Background(), "some text")
	require.Error(t, err)
}
