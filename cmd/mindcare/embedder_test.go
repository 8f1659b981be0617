package main

import (
	"context"
	"testing"

	"github.com/becomeliminal/mindcare/config"
	"github.com/becomeliminal/mindcare/memory/embedder/cache"
	"github.com/becomeliminal/mindcare/memory/embedder/chromem"
	"github.com/becomeliminal/mindcare/memory/embedder/mock"
)

func TestBuildEmbedder(t *testing.T) {
	t.Cleanup(teardown)

	tests := []struct {
		name    string
		cfg     config.Config
		check   func(t *testing.T, got any)
		wantErr bool
	}{
		{
			name: "mock without cache",
			cfg:  config.Config{Embedder: config.EmbedderMock},
			check: func(t *testing.T, got any) {
				if _, ok := got.(*mock.MockEmbedder); !ok {
					t.Errorf("expected *mock.MockEmbedder, got %T", got)
				}
			},
		},
		{
			name: "mock with cache",
			cfg:  config.Config{Embedder: config.EmbedderMock, EmbedCacheSize: 100},
			check: func(t *testing.T, got any) {
				if _, ok := got.(*cache.Embedder); !ok {
					t.Errorf("expected *cache.Embedder, got %T", got)
				}
			},
		},
		{
			name: "ollama",
			cfg:  config.Config{Embedder: config.EmbedderOllama, EmbeddingModel: "all-minilm", OllamaHost: "http://localhost:11434"},
			check: func(t *testing.T, got any) {
				e, ok := got.(*chromem.Embedder)
				if !ok {
					t.Fatalf("expected *chromem.Embedder, got %T", got)
				}
				if e.Model() != "all-minilm" {
					t.Errorf("unexpected model %q", e.Model())
				}
			},
		},
		{
			name: "openai uses its default model",
			cfg:  config.Config{Embedder: config.EmbedderOpenAI, OpenAIAPIKey: "sk-test", EmbeddingModel: chromem.DefaultOllamaModel},
			check: func(t *testing.T, got any) {
				e, ok := got.(*chromem.Embedder)
				if !ok {
					t.Fatalf("expected *chromem.Embedder, got %T", got)
				}
				if e.Model() != chromem.DefaultOpenAIModel {
					t.Errorf("unexpected model %q", e.Model())
				}
			},
		},
		{
			name:    "unknown",
			cfg:     config.Config{Embedder: "word2vec"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildEmbedder(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildEmbedder failed: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestBuildEmbedder_CachedMockEmbeds(t *testing.T) {
	t.Cleanup(teardown)

	e, err := buildEmbedder(config.Config{Embedder: config.EmbedderMock, EmbedCacheSize: 10})
	if err != nil {
		t.Fatalf("buildEmbedder failed: %v", err)
	}

	v, err := e.Embed(context.Background(), "I parked my car")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(v) != 384 {
		t.Errorf("expected 384 dimensions, got %d", len(v))
	}
}
