package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/becomeliminal/mindcare/engine"
	"github.com/becomeliminal/mindcare/memory"
	"github.com/becomeliminal/mindcare/memory/embedder/mock"
	"github.com/becomeliminal/mindcare/memory/store/inmem"
	"github.com/becomeliminal/mindcare/memory/store/sqlite"
	"github.com/becomeliminal/mindcare/recall"
)

func steppingClock() func() time.Time {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func setupEngine(t *testing.T, opts ...engine.Option) (*engine.Engine, *inmem.Store, *memory.Retriever) {
	t.Helper()
	store := inmem.New(inmem.WithClock(steppingClock()))
	retriever := memory.NewRetriever(mock.New(), nil)
	return engine.New(store, retriever, opts...), store, retriever
}

func TestEngine_AddAndAsk(t *testing.T) {
	ctx := context.Background()
	e, _, _ := setupEngine(t)

	for _, text := range []string{"I parked my car in the garage", "I moved my car to the driveway"} {
		rec, err := e.AddMemory(ctx, text)
		if err != nil {
			t.Fatalf("AddMemory failed: %v", err)
		}
		if rec.ID == "" || rec.Text != text {
			t.Errorf("unexpected record %+v", rec)
		}
	}
	if e.Size() != 2 {
		t.Fatalf("expected 2 indexed memories, got %d", e.Size())
	}

	got, err := e.Ask(ctx, "where is my car now")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if got != "You moved your car to the driveway" {
		t.Errorf("unexpected answer %q", got)
	}
}

func TestEngine_AddMemoryRejectsBlank(t *testing.T) {
	ctx := context.Background()
	e, store, _ := setupEngine(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := e.AddMemory(ctx, text); !errors.Is(err, engine.ErrEmptyMemory) {
			t.Errorf("AddMemory(%q): expected ErrEmptyMemory, got %v", text, err)
		}
	}

	records, _ := store.List(ctx)
	if len(records) != 0 {
		t.Errorf("blank memories should not be stored, got %d", len(records))
	}
}

func TestEngine_AskEmpty(t *testing.T) {
	e, _, _ := setupEngine(t)

	got, err := e.Ask(context.Background(), "where is my car")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if got != recall.NoRecall {
		t.Errorf("expected %q, got %q", recall.NoRecall, got)
	}
}

func TestEngine_WarmRestoresIndex(t *testing.T) {
	ctx := context.Background()
	store := inmem.New(inmem.WithClock(steppingClock()))
	for _, text := range []string{"I fed my cat", "I fed my dog"} {
		if _, err := store.Create(ctx, text); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	retriever := memory.NewRetriever(mock.New(), nil)
	e := engine.New(store, retriever)

	n, err := e.Warm(ctx)
	if err != nil {
		t.Fatalf("Warm failed: %v", err)
	}
	if n != 2 || retriever.Len() != 2 {
		t.Fatalf("expected 2 warmed memories, got n=%d len=%d", n, retriever.Len())
	}

	// Warming twice does not duplicate entries.
	if _, err := e.Warm(ctx); err != nil {
		t.Fatalf("second Warm failed: %v", err)
	}
	if retriever.Len() != 2 {
		t.Errorf("expected 2 memories after rewarm, got %d", retriever.Len())
	}

	got, err := e.Ask(ctx, "what did I feed my cat")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if got != "You fed your cat" {
		t.Errorf("unexpected answer %q", got)
	}
}

func TestEngine_WarmFromSQLite(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(":memory:", sqlite.WithClock(steppingClock()))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	first := engine.New(store, memory.NewRetriever(mock.New(), nil))
	for _, text := range []string{"I parked my car in the garage", "I moved my car to the driveway"} {
		if _, err := first.AddMemory(ctx, text); err != nil {
			t.Fatalf("AddMemory failed: %v", err)
		}
	}

	// A fresh engine over the same store sees nothing until warmed.
	second := engine.New(store, memory.NewRetriever(mock.New(), nil))
	if got, _ := second.Ask(ctx, "where is my car"); got != recall.NoRecall {
		t.Errorf("expected no recall before warm, got %q", got)
	}
	if _, err := second.Warm(ctx); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}

	got, err := second.Ask(ctx, "where was my car before")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	want := "Recent memory history:\nEarlier: In the garage\nThen: To the driveway"
	if got != want {
		t.Errorf("unexpected history:\n%s\nwant:\n%s", got, want)
	}
}

// failingEmbedder fails every call.
type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("model offline")
}

func TestEngine_AddMemoryIndexFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	e := engine.New(store, memory.NewRetriever(failingEmbedder{}, nil))

	rec, err := e.AddMemory(ctx, "I left my keys on the table")
	if !errors.Is(err, memory.ErrEmbeddingFailure) {
		t.Fatalf("expected embedding failure, got %v", err)
	}
	if rec.ID == "" {
		t.Error("expected the persisted record to be returned")
	}

	records, _ := store.List(ctx)
	if len(records) != 1 {
		t.Errorf("expected record to stay persisted, got %d", len(records))
	}
}

func TestEngine_WarmFailureLeavesIndexEmpty(t *testing.T) {
	ctx := context.Background()
	store := inmem.New()
	store.Create(ctx, "I fed my cat")

	retriever := memory.NewRetriever(failingEmbedder{}, nil)
	e := engine.New(store, retriever)

	if _, err := e.Warm(ctx); !errors.Is(err, memory.ErrEmbeddingFailure) {
		t.Fatalf("expected embedding failure, got %v", err)
	}
	if retriever.Len() != 0 {
		t.Errorf("expected empty index, got %d", retriever.Len())
	}
}

type stubGenerator struct{ answer string }

func (g stubGenerator) Generate(ctx context.Context, query string, memories []string) (string, error) {
	return g.answer, nil
}

func TestEngine_WithGenerator(t *testing.T) {
	ctx := context.Background()
	e, _, _ := setupEngine(t, engine.WithGenerator(stubGenerator{answer: "Your keys are on the table."}))

	if _, err := e.AddMemory(ctx, "I left my keys on the table"); err != nil {
		t.Fatalf("AddMemory failed: %v", err)
	}

	got, err := e.Ask(ctx, "where are my keys")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if got != "Your keys are on the table." {
		t.Errorf("expected generated answer, got %q", got)
	}
}
