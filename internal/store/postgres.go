package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/practice-intel/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool and runs
// the schema migration.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	s := &PostgresStore{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS verifications (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	confidence INTEGER NOT NULL,
	result     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS patterns (
	pattern       TEXT PRIMARY KEY,
	type          TEXT NOT NULL,
	confidence    INTEGER NOT NULL,
	success_count INTEGER NOT NULL DEFAULT 0,
	failure_count INTEGER NOT NULL DEFAULT 0,
	examples      JSONB,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_verifications_status ON verifications(status);
CREATE INDEX IF NOT EXISTS idx_patterns_confidence ON patterns(confidence);
`

// Migrate creates the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, result *model.VerificationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO verifications (id, status, confidence, result, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, confidence = EXCLUDED.confidence, result = EXCLUDED.result`,
		result.VerificationID, string(result.Status), result.OverallConfidence, payload, result.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: insert verification")
}

func (s *PostgresStore) GetResult(ctx context.Context, verificationID string) (*model.VerificationResult, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM verifications WHERE id = $1`, verificationID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get verification %s", verificationID)
	}

	var result model.VerificationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal result")
	}
	return &result, nil
}

func (s *PostgresStore) GetPattern(ctx context.Context, key string) (*model.LearningPattern, error) {
	var (
		p        model.LearningPattern
		examples []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT pattern, type, confidence, success_count, failure_count, examples, updated_at
		 FROM patterns WHERE pattern = $1`, key,
	).Scan(&p.Pattern, &p.Type, &p.Confidence, &p.SuccessCount, &p.FailureCount, &examples, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get pattern %s", key)
	}
	if len(examples) > 0 {
		if err := json.Unmarshal(examples, &p.Examples); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal examples")
		}
	}
	return &p, nil
}

func (s *PostgresStore) PutPattern(ctx context.Context, pattern model.LearningPattern) error {
	examples, err := json.Marshal(pattern.Examples)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal examples")
	}
	if pattern.UpdatedAt.IsZero() {
		pattern.UpdatedAt = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO patterns (pattern, type, confidence, success_count, failure_count, examples, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (pattern) DO UPDATE SET
			type = EXCLUDED.type, confidence = EXCLUDED.confidence,
			success_count = EXCLUDED.success_count, failure_count = EXCLUDED.failure_count,
			examples = EXCLUDED.examples, updated_at = EXCLUDED.updated_at`,
		pattern.Pattern, string(pattern.Type), pattern.Confidence,
		pattern.SuccessCount, pattern.FailureCount, examples, pattern.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert pattern %s", pattern.Pattern)
}

func (s *PostgresStore) ListPatterns(ctx context.Context, limit int) ([]model.LearningPattern, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT pattern, type, confidence, success_count, failure_count, examples, updated_at
		 FROM patterns ORDER BY confidence DESC, pattern ASC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list patterns")
	}
	defer rows.Close()

	var out []model.LearningPattern
	for rows.Next() {
		var (
			p        model.LearningPattern
			examples []byte
		)
		if err := rows.Scan(&p.Pattern, &p.Type, &p.Confidence, &p.SuccessCount, &p.FailureCount, &examples, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan pattern")
		}
		if len(examples) > 0 {
			if err := json.Unmarshal(examples, &p.Examples); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal examples")
			}
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate patterns")
}
