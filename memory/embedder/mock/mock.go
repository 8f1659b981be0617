package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync/atomic"
	"unicode"
)

// MockEmbedder is a deterministic embedder for tests and offline runs.
// It hashes lowercased word tokens into buckets (bag of words) and
// normalises the counts, so texts sharing words land close together in L2.
type MockEmbedder struct {
	dimensions int
	calls      atomic.Int64
}

// New creates a new mock embedder.
func New() *MockEmbedder {
	return &MockEmbedder{
		dimensions: 384, // Match all-MiniLM-L6-v2 dimensions
	}
}

// NewWithDimensions creates a mock embedder producing vectors of size dims.
func NewWithDimensions(dims int) *MockEmbedder {
	return &MockEmbedder{dimensions: dims}
}

// Embed creates a deterministic unit vector from the words in text.
// Text without any word yields the zero vector.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.calls.Add(1)

	embedding := make([]float32, m.dimensions)
	for _, token := range Tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		embedding[h.Sum32()%uint32(m.dimensions)]++
	}

	return normalize(embedding), nil
}

// EmbedBatch embeds each text in order.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

// Dimensions returns the embedding size.
func (m *MockEmbedder) Dimensions() int {
	return m.dimensions
}

// Calls returns how many texts have been embedded.
func (m *MockEmbedder) Calls() int {
	return int(m.calls.Load())
}

// Tokenize splits text into lowercased runs of letters, digits and apostrophes.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// normalize converts embedding to unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}

	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}

	return normalized
}
