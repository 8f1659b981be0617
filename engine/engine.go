// Package engine ties the record store, the retrieval index and the
// interpreter together behind the operations the outer surfaces use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/becomeliminal/mindcare/memory"
	"github.com/becomeliminal/mindcare/recall"
)

// ErrEmptyMemory is returned when asked to store blank text.
var ErrEmptyMemory = errors.New("memory content is empty")

// Engine stores memories and answers questions about them. The store is the
// source of truth; the retriever's index is rebuilt from it by Warm.
type Engine struct {
	store       memory.Store
	retriever   *memory.Retriever
	interpreter *recall.Interpreter
	generator   recall.Generator // Optional: free-form latest answers
}

// Option configures the engine.
type Option func(*Engine)

// WithGenerator answers latest-state questions with g, falling back to the
// rule-based answer when it fails.
func WithGenerator(g recall.Generator) Option {
	return func(e *Engine) {
		e.generator = g
	}
}

// New creates an engine over store and retriever. Call Warm before serving
// to load existing memories into the index.
func New(store memory.Store, retriever *memory.Retriever, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		retriever: retriever,
	}
	for _, opt := range opts {
		opt(e)
	}

	var interpreterOpts []recall.Option
	if e.generator != nil {
		interpreterOpts = append(interpreterOpts, recall.WithGenerator(e.generator))
	}
	e.interpreter = recall.New(retriever, store, interpreterOpts...)
	return e
}

// AddMemory persists text and indexes it. If indexing fails after the record
// was stored, the record is returned together with the error; the next Warm
// picks it up.
func (e *Engine) AddMemory(ctx context.Context, text string) (memory.Record, error) {
	if strings.TrimSpace(text) == "" {
		return memory.Record{}, ErrEmptyMemory
	}

	rec, err := e.store.Create(ctx, text)
	if err != nil {
		return memory.Record{}, fmt.Errorf("store memory: %w", err)
	}

	if err := e.retriever.Add(ctx, rec.Text); err != nil {
		slog.Warn("memory stored but not indexed", "id", rec.ID, "error", err)
		return rec, fmt.Errorf("index memory %s: %w", rec.ID, err)
	}

	slog.Info("memory added", "id", rec.ID, "indexed", e.retriever.Len())
	return rec, nil
}

// Warm rebuilds the index from every stored record in creation order and
// returns how many records were loaded.
func (e *Engine) Warm(ctx context.Context) (int, error) {
	records, err := e.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list memories: %w", err)
	}

	if err := e.retriever.Rebuild(ctx, records); err != nil {
		return 0, err
	}

	if len(records) == 0 {
		slog.Info("no memories found in store")
	} else {
		slog.Info("memories loaded into index", "count", len(records))
	}
	return len(records), nil
}

// Ask answers query from stored memories.
func (e *Engine) Ask(ctx context.Context, query string) (string, error) {
	return e.interpreter.Ask(ctx, query)
}

// Interpret answers query and reports the intent, object and records behind
// the answer.
func (e *Engine) Interpret(ctx context.Context, query string) (*recall.Answer, error) {
	return e.interpreter.Interpret(ctx, query)
}

// Size returns the number of indexed memories.
func (e *Engine) Size() int {
	return e.retriever.Len()
}
