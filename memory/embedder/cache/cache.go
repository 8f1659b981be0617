// Package cache memoises embeddings in a ristretto cache so repeated texts,
// typically the same question asked again or records re-embedded on rebuild,
// skip the model call.
package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/ristretto"

	"github.com/becomeliminal/mindcare/memory"
)

// DefaultSize is the number of embeddings kept when no size is given.
const DefaultSize = 10_000

// Embedder wraps another memory.Embedder with a bounded cache keyed by text.
type Embedder struct {
	next  memory.Embedder
	cache *ristretto.Cache
}

// Compile-time check that Embedder implements memory.BatchEmbedder.
var _ memory.BatchEmbedder = (*Embedder)(nil)

// New creates a caching embedder holding up to size embeddings.
func New(next memory.Embedder, size int) (*Embedder, error) {
	if size <= 0 {
		size = DefaultSize
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        int64(size) * 10,
		MaxCost:            int64(size),
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &Embedder{next: next, cache: cache}, nil
}

// Embed returns the cached embedding for text or computes and stores it.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		if vector, ok := v.([]float32); ok {
			slog.Debug("embedding cache hit", "text_len", len(text))
			return vector, nil
		}
	}

	vector, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, vector, 1)
	return vector, nil
}

// EmbedBatch embeds texts in order, only sending cache misses to the
// wrapped embedder (in one batch when it supports batching).
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var missing []string
	var missingAt []int
	for i, text := range texts {
		if v, ok := e.cache.Get(text); ok {
			if vector, ok := v.([]float32); ok {
				vectors[i] = vector
				continue
			}
		}
		missing = append(missing, text)
		missingAt = append(missingAt, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	var computed [][]float32
	if batch, ok := e.next.(memory.BatchEmbedder); ok {
		var err error
		computed, err = batch.EmbedBatch(ctx, missing)
		if err != nil {
			return nil, err
		}
		if len(computed) != len(missing) {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(computed), len(missing))
		}
	} else {
		computed = make([][]float32, len(missing))
		for i, text := range missing {
			vector, err := e.next.Embed(ctx, text)
			if err != nil {
				return nil, err
			}
			computed[i] = vector
		}
	}

	for i, vector := range computed {
		vectors[missingAt[i]] = vector
		e.cache.Set(missing[i], vector, 1)
	}

	slog.Debug("embedding batch", "texts", len(texts), "misses", len(missing))
	return vectors, nil
}

// Wait blocks until pending cache writes are applied.
func (e *Embedder) Wait() {
	e.cache.Wait()
}

// Close releases the cache.
func (e *Embedder) Close() error {
	e.cache.Close()
	return nil
}
