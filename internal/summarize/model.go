package summarize

import (
	"context"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"docflow/internal/models"
)

// Model is the opaque summarization model consumed by the Summarizer. A
// chunk-level failure fails the whole ML path; the Summarizer handles the
// fallback, implementations must not.
type Model interface {
	SummarizeChunk(ctx context.Context, text string) (string, error)
}

// OpenAIModel implements Model against the OpenAI chat completion API.
// The client is initialized lazily exactly once per process and is safe
// for concurrent use afterwards.
type OpenAIModel struct {
	apiKey    string
	model     string
	minLength int
	maxLength int

	once    sync.Once
	client  *openai.Client
	initErr error
}

// NewOpenAIModel configures the model without touching the network. An
// empty API key yields a model that reports models.ErrModelUnavailable on
// first use, which degrades the pipeline to the extractive fallback.
func NewOpenAIModel(apiKey, model string, minLength, maxLength int) *OpenAIModel {
	if minLength <= 0 {
		minLength = 40
	}
	if maxLength <= 0 {
		maxLength = 150
	}
	return &OpenAIModel{
		apiKey:    apiKey,
		model:     model,
		minLength: minLength,
		maxLength: maxLength,
	}
}

func (m *OpenAIModel) init() {
	if m.apiKey == "" {
		m.initErr = models.ErrModelUnavailable
		return
	}
	log.Infof("initializing summarization model %s", m.model)
	m.client = openai.NewClient(m.apiKey)
}

func (m *OpenAIModel) SummarizeChunk(ctx context.Context, text string) (string, error) {
	m.once.Do(m.init)
	if m.initErr != nil {
		return "", m.initErr
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: 0, // deterministic decoding
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You summarize document passages. Reply with a summary between %d and %d characters, nothing else.",
					m.minLength, m.maxLength),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
