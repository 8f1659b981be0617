// Package inmem is a process-local memory.Store for tests and ephemeral runs.
package inmem

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/becomeliminal/mindcare/memory"
)

// Store keeps records in a slice in creation order.
type Store struct {
	mu      sync.RWMutex
	records []memory.Record
	now     func() time.Time
}

// Compile-time check that Store implements memory.Store.
var _ memory.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to stamp new records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores text as a new record with a random ID.
func (s *Store) Create(ctx context.Context, text string) (memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return memory.Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := memory.NewRecord(text, s.now().UTC())
	s.records = append(s.records, rec)
	return rec, nil
}

// FindByText returns every record whose text equals text.
func (s *Store) FindByText(ctx context.Context, text string) ([]memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []memory.Record
	for _, r := range s.records {
		if r.Text == text {
			out = append(out, r)
		}
	}
	return out, nil
}

// List returns all records in creation order.
func (s *Store) List(ctx context.Context) ([]memory.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
