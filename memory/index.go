package memory

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Neighbor is a single Index search hit.
type Neighbor struct {
	Position int // Insertion position in the index
	Text     string
	Distance float64 // Squared L2
}

// Index is an exact nearest-neighbour store over embeddings, aligned 1:1 with
// a parallel text array. Entry i of vectors always belongs to entry i of
// texts; both arrays are only ever mutated together under mu.
type Index struct {
	mu        sync.RWMutex
	vectors   [][]float32
	texts     []string
	dimension int // 0 until the first vector is added
}

// NewIndex creates an empty index. The dimension is discovered from the
// first vector added.
func NewIndex() *Index {
	return &Index{}
}

// Add appends vector and text as a new entry.
func (x *Index) Add(vector []float32, text string) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension == 0 {
		x.dimension = len(vector)
	} else if len(vector) != x.dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), x.dimension)
	}

	x.vectors = append(x.vectors, vector)
	x.texts = append(x.texts, text)
	return nil
}

// Reset clears every entry and forgets the dimension.
func (x *Index) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.vectors = nil
	x.texts = nil
	x.dimension = 0
}

// Replace swaps the whole contents for vectors and texts in one step.
// The input is validated first; on error the index is left untouched.
func (x *Index) Replace(vectors [][]float32, texts []string) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("replace index: %d vectors for %d texts", len(vectors), len(texts))
	}

	dimension := 0
	if len(vectors) > 0 {
		dimension = len(vectors[0])
		if dimension == 0 {
			return fmt.Errorf("%w: empty vector at 0", ErrDimensionMismatch)
		}
	}
	for i, v := range vectors {
		if len(v) != dimension {
			return fmt.Errorf("%w: vector %d has %d, want %d", ErrDimensionMismatch, i, len(v), dimension)
		}
	}

	newVectors := slices.Clone(vectors)
	newTexts := slices.Clone(texts)

	x.mu.Lock()
	defer x.mu.Unlock()

	x.vectors = newVectors
	x.texts = newTexts
	x.dimension = dimension
	return nil
}

// Search returns the k entries closest to query by squared L2 distance,
// nearest first. Equal distances keep insertion order. An empty index
// yields no neighbours and no error.
func (x *Index) Search(query []float32, k int) ([]Neighbor, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has %d, want %d", ErrDimensionMismatch, len(query), x.dimension)
	}

	neighbors := make([]Neighbor, len(x.vectors))
	for i, v := range x.vectors {
		neighbors[i] = Neighbor{
			Position: i,
			Text:     x.texts[i],
			Distance: squaredL2(query, v),
		}
	}

	slices.SortStableFunc(neighbors, func(a, b Neighbor) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// Len returns the number of entries.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Dimension returns the established vector dimension, or 0 for a fresh index.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Texts returns a copy of the stored texts in insertion order.
func (x *Index) Texts() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return slices.Clone(x.texts)
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
