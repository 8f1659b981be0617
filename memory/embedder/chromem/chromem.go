package chromem

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"
)

const (
	// DefaultOllamaModel is the Ollama build of all-MiniLM-L6-v2 (384-dim).
	DefaultOllamaModel = "all-minilm"

	// DefaultOpenAIModel is the OpenAI embedding model used when none is set.
	DefaultOpenAIModel = string(chromem.EmbeddingModelOpenAI3Small)
)

// Embedder adapts a chromem-go EmbeddingFunc to memory.Embedder.
// chromem-go ships HTTP clients for Ollama and OpenAI that return
// normalised vectors, which is what the L2 threshold expects.
type Embedder struct {
	fn    chromem.EmbeddingFunc
	model string
}

// New wraps an arbitrary chromem EmbeddingFunc.
func New(fn chromem.EmbeddingFunc, model string) *Embedder {
	return &Embedder{fn: fn, model: model}
}

// NewOllama creates an embedder backed by a local Ollama server.
// host is the server root such as "http://localhost:11434"; empty uses
// chromem's default.
func NewOllama(model, host string) *Embedder {
	if model == "" {
		model = DefaultOllamaModel
	}
	baseURL := ""
	if host != "" {
		baseURL = strings.TrimSuffix(host, "/") + "/api"
	}
	return New(chromem.NewEmbeddingFuncOllama(model, baseURL), model)
}

// NewOpenAI creates an embedder backed by the OpenAI embeddings API.
func NewOpenAI(apiKey, model string) (*Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return New(chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI(model)), model), nil
}

// Embed converts text to an embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vector, err := e.fn(ctx, text)
	duration := time.Since(start)

	if err != nil {
		slog.Warn("embedding failed", "model", e.model, "text_len", len(text), "duration_ms", duration.Milliseconds(), "error", err)
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("no embedding returned (model: %s)", e.model)
	}

	slog.Debug("embedding complete", "model", e.model, "text_len", len(text), "duration_ms", duration.Milliseconds())
	return vector, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.model
}
