package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/practice-intel/internal/config"
	"github.com/sells-group/practice-intel/internal/model"
)

func configWithDriver(driver string) config.StoreConfig {
	return config.StoreConfig{Driver: driver}
}

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteStore_ResultRoundtrip(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	in := sampleResult("run-1")
	in.Sources = []model.VerificationSource{{
		Type:       model.SourceRegistry,
		Confidence: 95,
		Data:       map[string]any{"npi": "1234567890"},
		Timestamp:  time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, st.SaveResult(ctx, in))

	got, err := st.GetResult(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, in.Status, got.Status)
	assert.Equal(t, in.OverallConfidence, got.OverallConfidence)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, model.SourceRegistry, got.Sources[0].Type)
}

func TestSQLiteStore_SaveResultUpserts(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, st.SaveResult(ctx, sampleResult("run-1")))

	updated := sampleResult("run-1")
	updated.Status = model.StatusLikely
	updated.OverallConfidence = 70
	require.NoError(t, st.SaveResult(ctx, updated))

	got, err := st.GetResult(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusLikely, got.Status)
	assert.Equal(t, 70, got.OverallConfidence)
}

func TestSQLiteStore_ResultNotFound(t *testing.T) {
	st := newTestSQLite(t)
	_, err := st.GetResult(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLiteStore_PatternUpsertAndList(t *testing.T) {
	st := newTestSQLite(t)
	ctx := context.Background()

	p := model.LearningPattern{
		Pattern:      "pure dental",
		Type:         model.PatternPracticeName,
		Confidence:   62,
		SuccessCount: 1,
		Examples:     []string{"https://puredental.com"},
		UpdatedAt:    time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, st.PutPattern(ctx, p))

	p.SuccessCount = 2
	p.Confidence = 64
	require.NoError(t, st.PutPattern(ctx, p))

	got, err := st.GetPattern(ctx, "pure dental")
	require.NoError(t, err)
	assert.Equal(t, 2, got.SuccessCount)
	assert.Equal(t, 64, got.Confidence)
	assert.Equal(t, []string{"https://puredental.com"}, got.Examples)

	require.NoError(t, st.PutPattern(ctx, model.LearningPattern{Pattern: "other", Confidence: 90}))

	list, err := st.ListPatterns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "other", list[0].Pattern)
}

func TestSQLiteStore_PatternNotFound(t *testing.T) {
	st := newTestSQLite(t)
	_, err := st.GetPattern(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}
