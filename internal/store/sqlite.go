package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/practice-intel/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS verifications (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	confidence INTEGER NOT NULL,
	result     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS patterns (
	pattern       TEXT PRIMARY KEY,
	type          TEXT NOT NULL,
	confidence    INTEGER NOT NULL,
	success_count INTEGER NOT NULL DEFAULT 0,
	failure_count INTEGER NOT NULL DEFAULT 0,
	examples      TEXT,
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_verifications_status ON verifications(status);
CREATE INDEX IF NOT EXISTS idx_patterns_confidence ON patterns(confidence);
`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveResult(ctx context.Context, result *model.VerificationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verifications (id, status, confidence, result, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status, confidence=excluded.confidence, result=excluded.result`,
		result.VerificationID, string(result.Status), result.OverallConfidence, string(payload), result.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert verification")
}

func (s *SQLiteStore) GetResult(ctx context.Context, verificationID string) (*model.VerificationResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM verifications WHERE id = ?`, verificationID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get verification %s", verificationID)
	}

	var result model.VerificationResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &result, nil
}

func (s *SQLiteStore) GetPattern(ctx context.Context, key string) (*model.LearningPattern, error) {
	var (
		p        model.LearningPattern
		examples sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT pattern, type, confidence, success_count, failure_count, examples, updated_at
		 FROM patterns WHERE pattern = ?`, key,
	).Scan(&p.Pattern, &p.Type, &p.Confidence, &p.SuccessCount, &p.FailureCount, &examples, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get pattern %s", key)
	}
	if examples.Valid && examples.String != "" {
		if err := json.Unmarshal([]byte(examples.String), &p.Examples); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal examples")
		}
	}
	return &p, nil
}

func (s *SQLiteStore) PutPattern(ctx context.Context, pattern model.LearningPattern) error {
	examples, err := json.Marshal(pattern.Examples)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal examples")
	}
	if pattern.UpdatedAt.IsZero() {
		pattern.UpdatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO patterns (pattern, type, confidence, success_count, failure_count, examples, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pattern) DO UPDATE SET
			type=excluded.type, confidence=excluded.confidence,
			success_count=excluded.success_count, failure_count=excluded.failure_count,
			examples=excluded.examples, updated_at=excluded.updated_at`,
		pattern.Pattern, string(pattern.Type), pattern.Confidence,
		pattern.SuccessCount, pattern.FailureCount, string(examples), pattern.UpdatedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert pattern %s", pattern.Pattern)
}

func (s *SQLiteStore) ListPatterns(ctx context.Context, limit int) ([]model.LearningPattern, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT pattern, type, confidence, success_count, failure_count, examples, updated_at
		 FROM patterns ORDER BY confidence DESC, pattern ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list patterns")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.LearningPattern
	for rows.Next() {
		var (
			p        model.LearningPattern
			examples sql.NullString
		)
		if err := rows.Scan(&p.Pattern, &p.Type, &p.Confidence, &p.SuccessCount, &p.FailureCount, &examples, &p.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pattern")
		}
		if examples.Valid && examples.String != "" {
			if err := json.Unmarshal([]byte(examples.String), &p.Examples); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal examples")
			}
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate patterns")
}
