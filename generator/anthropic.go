// Package generator produces free-form answers from recalled memories with a
// language model.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxTokens bounds answer length; answers are one or two sentences.
	DefaultMaxTokens = 256
)

const systemPrompt = `You help a person with memory loss recall things they told you earlier.
Answer using only the memories provided, speaking to the person as "you".
Answer concisely in 1-2 sentences. Do not repeat the question.
If the memories do not contain the answer, say "I don't recall".`

// Anthropic generates answers with the Claude Messages API.
type Anthropic struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	requestOpts []option.RequestOption
}

// Option configures the Anthropic generator.
type Option func(*Anthropic)

// WithModel sets the Claude model.
func WithModel(model string) Option {
	return func(a *Anthropic) {
		if model != "" {
			a.model = model
		}
	}
}

// WithMaxTokens sets the maximum response tokens.
func WithMaxTokens(n int64) Option {
	return func(a *Anthropic) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithRequestOptions passes options through to the underlying client, such as
// option.WithBaseURL for a proxy.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(a *Anthropic) {
		a.requestOpts = append(a.requestOpts, opts...)
	}
}

// NewAnthropic creates a generator authenticated with apiKey.
func NewAnthropic(apiKey string, opts ...Option) *Anthropic {
	a := &Anthropic{
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		requestOpts: []option.RequestOption{option.WithAPIKey(apiKey)},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.client = anthropic.NewClient(a.requestOpts...)
	return a
}

// Model returns the configured model name.
func (a *Anthropic) Model() string {
	return a.model
}

// Generate answers query from memories, newest first.
func (a *Anthropic) Generate(ctx context.Context, query string, memories []string) (string, error) {
	if len(memories) == 0 {
		return "", fmt.Errorf("no memories to answer from")
	}

	start := time.Now()
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(query, memories))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude API error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	slog.Debug("answer generated",
		"model", a.model,
		"memories", len(memories),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"duration", time.Since(start),
	)
	return strings.TrimSpace(text.String()), nil
}

// Prompt lays out memories and the question for the model.
func Prompt(query string, memories []string) string {
	var b strings.Builder
	b.WriteString("Memories (newest first):\n")
	for _, m := range memories {
		b.WriteString("- ")
		b.WriteString(m)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	return b.String()
}
