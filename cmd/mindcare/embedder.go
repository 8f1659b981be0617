package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/becomeliminal/mindcare/config"
	"github.com/becomeliminal/mindcare/memory"
	"github.com/becomeliminal/mindcare/memory/embedder/cache"
	"github.com/becomeliminal/mindcare/memory/embedder/chromem"
	"github.com/becomeliminal/mindcare/memory/embedder/mock"
)

// buildEmbedder selects the embedding backend and wraps it in the cache
// unless the cache is disabled.
func buildEmbedder(cfg config.Config) (memory.Embedder, error) {
	var base memory.Embedder

	switch cfg.Embedder {
	case config.EmbedderOllama:
		base = chromem.NewOllama(cfg.EmbeddingModel, cfg.OllamaHost)

	case config.EmbedderOpenAI:
		model := cfg.EmbeddingModel
		if model == chromem.DefaultOllamaModel {
			model = chromem.DefaultOpenAIModel
		}
		e, err := chromem.NewOpenAI(cfg.OpenAIAPIKey, model)
		if err != nil {
			return nil, err
		}
		base = e

	case config.EmbedderONNX:
		e, err := newONNXEmbedder(cfg)
		if err != nil {
			return nil, err
		}
		base = e

	case config.EmbedderMock:
		slog.Warn("using mock embedder, answers are keyword based")
		base = mock.New()

	default:
		return nil, fmt.Errorf("unknown embedder %q", cfg.Embedder)
	}

	if c, ok := base.(io.Closer); ok {
		closers = append(closers, c)
	}

	if cfg.EmbedCacheSize <= 0 {
		return base, nil
	}
	cached, err := cache.New(base, cfg.EmbedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("init embedding cache: %w", err)
	}
	closers = append(closers, cached)
	return cached, nil
}
