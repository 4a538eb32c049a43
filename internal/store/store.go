// Package store persists verification runs and learning patterns. Three
// backends share one interface: an in-process map (best-effort,
// single-process), SQLite, and Postgres.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/practice-intel/internal/config"
	"github.com/sells-group/practice-intel/internal/model"
)

// ErrNotFound is returned when a run or pattern does not exist.
var ErrNotFound = eris.New("store: not found")

// Store is the persistence capability consumed by the orchestrator and
// the feedback service. Pattern reads and writes go through GetPattern /
// PutPattern so the feedback service can keep read-modify-write atomic
// within one synchronous span.
type Store interface {
	SaveResult(ctx context.Context, result *model.VerificationResult) error
	GetResult(ctx context.Context, verificationID string) (*model.VerificationResult, error)

	GetPattern(ctx context.Context, key string) (*model.LearningPattern, error)
	PutPattern(ctx context.Context, pattern model.LearningPattern) error
	ListPatterns(ctx context.Context, limit int) ([]model.LearningPattern, error)

	Close() error
}

// Open creates the store selected by the configuration driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		s, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close() //nolint:errcheck
			return nil, err
		}
		return s, nil
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
