// Package repository defines the session result store interface and
// errors.
//
// Analysis results are held in memory for the lifetime of the process
// so one run can analyze and re-read several videos.
package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/courtside/strokelab/internal/domain/model"
)

// ErrNotFound reports an unknown video identifier.
var ErrNotFound = errors.New("session result not found")

// Store provides read/write access to completed analysis results.
type Store interface {
	// Save stores the result under its video identifier, replacing any
	// previous result for the same video.
	Save(ctx context.Context, result model.SessionResult) error
	// Get returns the stored result for a video.
	// Returns ErrNotFound if the video is unknown.
	Get(ctx context.Context, videoID string) (model.SessionResult, error)
	// Videos returns the stored video identifiers in sorted order.
	Videos(ctx context.Context) []string
	// Count returns the number of stored results.
	Count(ctx context.Context) int
}

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacityHint pre-sizes the store for the expected video count.
func WithCapacityHint(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.results = make(map[string]model.SessionResult, n)
		}
	}
}

// MemoryStore implements Store with a mutex-guarded map.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string]model.SessionResult
}

// NewMemoryStore creates an in-memory store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{results: make(map[string]model.SessionResult)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores the result, replacing any previous one for the video.
func (s *MemoryStore) Save(ctx context.Context, result model.SessionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.VideoID] = result
	return nil
}

// Get returns the stored result for a video.
func (s *MemoryStore) Get(ctx context.Context, videoID string) (model.SessionResult, error) {
	if err := ctx.Err(); err != nil {
		return model.SessionResult{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[videoID]
	if !ok {
		return model.SessionResult{}, ErrNotFound
	}
	return result, nil
}

// Videos returns the stored video identifiers in sorted order.
func (s *MemoryStore) Videos(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of stored results.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
