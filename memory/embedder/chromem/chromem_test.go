package chromem_test

import (
	"context"
	"errors"
	"testing"

	"github.com/becomeliminal/mindcare/memory/embedder/chromem"
)

func TestEmbedder_DelegatesToFunc(t *testing.T) {
	var seen string
	e := chromem.New(func(ctx context.Context, text string) ([]float32, error) {
		seen = text
		return []float32{0.6, 0.8}, nil
	}, "fake")

	v, err := e.Embed(context.Background(), "I fed my cat")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if seen != "I fed my cat" {
		t.Errorf("expected text to be passed through, got %q", seen)
	}
	if len(v) != 2 || v[0] != 0.6 || v[1] != 0.8 {
		t.Errorf("unexpected vector %v", v)
	}
	if e.Model() != "fake" {
		t.Errorf("expected model 'fake', got %q", e.Model())
	}
}

func TestEmbedder_WrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	e := chromem.New(func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}, "fake")

	_, err := e.Embed(context.Background(), "x")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestEmbedder_RejectsEmptyVector(t *testing.T) {
	e := chromem.New(func(ctx context.Context, text string) ([]float32, error) {
		return nil, nil
	}, "fake")

	if _, err := e.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	if _, err := chromem.NewOpenAI("", ""); err == nil {
		t.Fatal("expected error without API key")
	}

	e, err := chromem.NewOpenAI("sk-test", "")
	if err != nil {
		t.Fatalf("NewOpenAI failed: %v", err)
	}
	if e.Model() != chromem.DefaultOpenAIModel {
		t.Errorf("expected default model, got %q", e.Model())
	}
}

func TestNewOllama_DefaultModel(t *testing.T) {
	e := chromem.NewOllama("", "http://localhost:11434/")
	if e.Model() != chromem.DefaultOllamaModel {
		t.Errorf("expected %q, got %q", chromem.DefaultOllamaModel, e.Model())
	}
}
