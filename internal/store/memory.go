package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sells-group/practice-intel/internal/model"
)

// MemoryStore keeps runs and patterns in process memory. Best-effort,
// single-process: everything is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	results  map[string]model.VerificationResult
	patterns map[string]model.LearningPattern
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		results:  make(map[string]model.VerificationResult),
		patterns: make(map[string]model.LearningPattern),
	}
}

func (s *MemoryStore) SaveResult(_ context.Context, result *model.VerificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.VerificationID] = *result
	return nil
}

func (s *MemoryStore) GetResult(_ context.Context, verificationID string) (*model.VerificationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[verificationID]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) GetPattern(_ context.Context, key string) (*model.LearningPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patterns[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) PutPattern(_ context.Context, pattern model.LearningPattern) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[pattern.Pattern] = pattern
	return nil
}

func (s *MemoryStore) ListPatterns(_ context.Context, limit int) ([]model.LearningPattern, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LearningPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		out = append(out, p)
	}
	// Confidence descending, key ascending for a stable order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Pattern < out[j].Pattern
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
