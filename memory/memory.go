package memory

import (
	"context"
	"time"
)

// Record is a persisted memory as supplied by a Store.
// Records are immutable once created.
type Record struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// Candidate is a memory text returned by similarity search, before any
// recency or object filtering.
type Candidate struct {
	Text     string
	Distance float64 // Squared L2, lower is closer
}

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), onnx (local model), chromem (Ollama/OpenAI).
//
// The vector length must stay constant across calls; the Index fixes its
// dimension from the first vector it sees.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is implemented by embedders that can embed many texts in one
// call. Retriever.Rebuild uses it when available.
type BatchEmbedder interface {
	Embedder
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the durable record store.
// Implementations: inmem (tests, ephemeral runs), sqlite (production).
type Store interface {
	// Create persists a new record stamped with the current time.
	Create(ctx context.Context, text string) (Record, error)

	// FindByText returns every record whose text equals text exactly.
	FindByText(ctx context.Context, text string) ([]Record, error)

	// List returns all records in creation order.
	List(ctx context.Context) ([]Record, error)

	// Close releases resources.
	Close() error
}
