package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Retriever is the retrieval engine: it embeds text through an Embedder,
// keeps the Index in step with the record store and applies a relevance
// cutoff on search.
//
// A Retriever exclusively owns its Index. Create one per process and pass it
// by reference to whatever needs it.
type Retriever struct {
	index    *Index
	embedder Embedder
	config   *Config

	rebuildMu sync.Mutex // serialises Rebuild

	mu         sync.Mutex // guards rebuilding, pending and index writes
	rebuilding bool
	pending    []pendingAdd // Adds that arrived while a Rebuild was embedding
}

type pendingAdd struct {
	vector []float32
	text   string
}

// NewRetriever creates a Retriever with an empty index.
func NewRetriever(embedder Embedder, config *Config) *Retriever {
	if config == nil {
		config = DefaultConfig
	}
	return &Retriever{
		index:    NewIndex(),
		embedder: embedder,
		config:   config,
	}
}

// Add embeds text and appends it to the index. Blank text is ignored.
// An Add that lands while Rebuild is embedding is queued and applied right
// after the rebuilt contents are swapped in.
func (r *Retriever) Add(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	vector, err := r.embed(ctx, text)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rebuilding {
		r.pending = append(r.pending, pendingAdd{vector: vector, text: text})
		slog.Debug("memory queued behind rebuild", "text_len", len(text))
		return nil
	}

	if err := r.index.Add(vector, text); err != nil {
		return fmt.Errorf("index memory: %w", err)
	}

	slog.Debug("memory indexed", "text_len", len(text), "size", r.index.Len())
	return nil
}

// Rebuild replaces the index contents with the given records, in order.
// All embeddings are computed before the index is touched. If any of them
// fails the index is reset and the error returned, so callers never observe
// a partially rebuilt index. Either way, memories added while the rebuild
// was embedding are indexed afterwards.
func (r *Retriever) Rebuild(ctx context.Context, records []Record) error {
	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	texts := make([]string, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.Text) == "" {
			continue
		}
		texts = append(texts, rec.Text)
	}

	r.mu.Lock()
	r.rebuilding = true
	r.pending = nil
	r.mu.Unlock()

	vectors, err := r.embedAll(ctx, texts)

	r.mu.Lock()
	defer r.mu.Unlock()

	pending := r.pending
	r.rebuilding = false
	r.pending = nil

	if err == nil {
		if replaceErr := r.index.Replace(vectors, texts); replaceErr != nil {
			err = fmt.Errorf("rebuild index: %w", replaceErr)
		}
	}
	if err != nil {
		r.index.Reset()
		texts = nil
	}
	r.applyPending(pending, texts)

	if err != nil {
		return err
	}
	slog.Info("memory index rebuilt", "records", len(records), "indexed", len(texts), "late_adds", len(pending))
	return nil
}

// applyPending indexes queued Adds. Texts already rebuilt are skipped: the
// record store resolves a text to every record holding it, so one index
// entry per text is enough. Callers hold r.mu.
func (r *Retriever) applyPending(pending []pendingAdd, rebuilt []string) {
	if len(pending) == 0 {
		return
	}

	have := make(map[string]bool, len(rebuilt))
	for _, text := range rebuilt {
		have[text] = true
	}

	for _, p := range pending {
		if have[p.text] {
			continue
		}
		if err := r.index.Add(p.vector, p.text); err != nil {
			slog.Warn("dropping memory added during rebuild", "text_len", len(p.text), "error", err)
			continue
		}
		have[p.text] = true
	}
}

// Search returns candidates for query using the configured TopK and
// DistanceThreshold.
func (r *Retriever) Search(ctx context.Context, query string) ([]Candidate, error) {
	return r.SearchWith(ctx, query, r.config.TopK, r.config.DistanceThreshold)
}

// SearchWith returns at most topK candidates whose distance to query does not
// exceed threshold, nearest first. An empty index returns no candidates
// without calling the embedder.
func (r *Retriever) SearchWith(ctx context.Context, query string, topK int, threshold float64) ([]Candidate, error) {
	if r.index.Len() == 0 {
		slog.Debug("memory index empty, skipping search")
		return nil, nil
	}

	vector, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	neighbors, err := r.index.Search(vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	var candidates []Candidate
	for _, n := range neighbors {
		if n.Distance > threshold {
			continue
		}
		candidates = append(candidates, Candidate{Text: n.Text, Distance: n.Distance})
	}

	slog.Debug("memory search",
		"query", truncateLog(query, 50),
		"neighbors", len(neighbors),
		"candidates", len(candidates),
		"threshold", threshold,
	)
	return candidates, nil
}

// Reset empties the index. The next embedding added fixes a new dimension.
func (r *Retriever) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index.Reset()
	r.pending = nil
}

// Len returns the number of indexed memories.
func (r *Retriever) Len() int {
	return r.index.Len()
}

// Dimension returns the index dimension, 0 before the first embedding.
func (r *Retriever) Dimension() int {
	return r.index.Dimension()
}

// Texts returns the indexed texts in index order.
func (r *Retriever) Texts() []string {
	return r.index.Texts()
}

func (r *Retriever) embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailure, err)
	}
	return vector, nil
}

// embedAll embeds texts in order, batching when the embedder supports it.
func (r *Retriever) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if batch, ok := r.embedder.(BatchEmbedder); ok {
		vectors, err := batch.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailure, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbeddingFailure, len(vectors), len(texts))
		}
		return vectors, nil
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := r.embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Config holds Retriever configuration.
type Config struct {
	// TopK is the number of nearest neighbours fetched per search.
	// Default: 3
	TopK int

	// DistanceThreshold drops neighbours whose squared L2 distance is larger.
	// Default: 1.5
	// Note: Calibrated for unit-length all-MiniLM-L6-v2 embeddings, where
	// squared L2 ranges over [0, 4]. Re-tune it when the embedder changes.
	DistanceThreshold float64
}

// DefaultConfig returns the defaults tuned for all-MiniLM-L6-v2.
var DefaultConfig = &Config{
	TopK:              3,
	DistanceThreshold: 1.5,
}
