package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultMaxTokens caps the completion length of an explanation
const DefaultMaxTokens = 1024

// Completion is a language model reply with its token accounting
type Completion struct {
	Text         string
	InputTokens  int64
	OutputTokens int64
}

// LanguageModel produces a single reply for a system and user message
type LanguageModel interface {
	Complete(ctx context.Context, system, user string) (*Completion, error)
	Name() string
}

// OpenAIModel is a LanguageModel backed by the OpenAI chat completions API
type OpenAIModel struct {
	cli       oa.Client
	model     string
	maxTokens int64
}

// NewOpenAIModel creates a client for model; extra options are passed through
// to the SDK (base URL overrides in tests, for instance).
func NewOpenAIModel(apiKey, model string, opts ...option.RequestOption) *OpenAIModel {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIModel{
		cli:       oa.NewClient(opts...),
		model:     model,
		maxTokens: DefaultMaxTokens,
	}
}

// Name returns the model identifier used for pricing and usage logs
func (m *OpenAIModel) Name() string {
	return m.model
}

// Complete sends one chat completion request
func (m *OpenAIModel) Complete(ctx context.Context, system, user string) (*Completion, error) {
	resp, err := m.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(m.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(system),
			oa.UserMessage(user),
		},
		MaxCompletionTokens: oa.Int(m.maxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}
	return &Completion{
		Text:         strings.TrimSpace(resp.Choices[0].Message.Content),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
