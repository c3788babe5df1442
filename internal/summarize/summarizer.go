package summarize

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Summarizer runs the chunked ML summarization path and degrades to the
// extractive fallback whenever the model cannot serve. It never returns
// an error for model trouble; only an empty input yields an empty summary.
type Summarizer struct {
	model       Model
	maxChunkLen int
	parallelism int
}

// New builds a Summarizer. model may be nil, in which case every call
// takes the fallback path.
func New(model Model, maxChunkLen, parallelism int) *Summarizer {
	if maxChunkLen <= 0 {
		maxChunkLen = DefaultMaxChunkLength
	}
	if parallelism <= 0 {
		parallelism = 4
	}
	return &Summarizer{model: model, maxChunkLen: maxChunkLen, parallelism: parallelism}
}

// Summarize produces a summary of text. Chunks run through the model with
// bounded parallelism and their summaries are concatenated in chunk order;
// any chunk failure abandons the ML path entirely rather than silently
// skipping the chunk.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	if s.model == nil {
		return ExtractiveSummary(text), nil
	}

	summary, err := s.summarizeWithModel(ctx, text)
	if err != nil {
		// Context cancellation is the caller giving up, not a model
		// problem; don't mask it with a fallback summary.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Warnf("model summarization failed, using extractive fallback: %v", err)
		return ExtractiveSummary(text), nil
	}
	return summary, nil
}

func (s *Summarizer) summarizeWithModel(ctx context.Context, text string) (string, error) {
	sentences := SplitSentences(text)
	chunks := PackChunks(sentences, s.maxChunkLen)
	log.Debugf("split text into %d chunks", len(chunks))

	summaries := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			out, err := s.model.SummarizeChunk(gctx, chunk.Text())
			if err != nil {
				return err
			}
			summaries[i] = strings.TrimSpace(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(summaries, " "), nil
}
