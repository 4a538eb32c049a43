package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/practice-intel/internal/model"
)

func sampleResult(id string) *model.VerificationResult {
	return &model.VerificationResult{
		VerificationID:    id,
		Status:            model.StatusVerified,
		OverallConfidence: 88,
		Doctor:            model.Doctor{Name: "Greg White", NPI: "1234567890"},
		Practice:          model.Practice{Name: "Pure Dental", Website: "https://puredental.com"},
		CreatedAt:         time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_ResultRoundtrip(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.SaveResult(ctx, sampleResult("run-1")))

	got, err := st.GetResult(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusVerified, got.Status)
	assert.Equal(t, "Pure Dental", got.Practice.Name)
}

func TestMemoryStore_ResultNotFound(t *testing.T) {
	st := NewMemory()
	_, err := st.GetResult(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_PatternRoundtrip(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	require.NoError(t, st.PutPattern(ctx, model.LearningPattern{
		Pattern:      "pure dental",
		Type:         model.PatternPracticeName,
		Confidence:   62,
		SuccessCount: 1,
	}))

	got, err := st.GetPattern(ctx, "pure dental")
	require.NoError(t, err)
	assert.Equal(t, 62, got.Confidence)

	_, err = st.GetPattern(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_ListPatternsOrderedAndLimited(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()
	require.NoError(t, st.PutPattern(ctx, model.LearningPattern{Pattern: "b", Confidence: 50}))
	require.NoError(t, st.PutPattern(ctx, model.LearningPattern{Pattern: "a", Confidence: 50}))
	require.NoError(t, st.PutPattern(ctx, model.LearningPattern{Pattern: "c", Confidence: 90}))

	got, err := st.ListPatterns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Pattern)
	assert.Equal(t, "a", got[1].Pattern) // tie broken by key
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), configWithDriver("etcd"))
	assert.Error(t, err)
}

func TestOpen_DefaultsToMemory(t *testing.T) {
	st, err := Open(context.Background(), configWithDriver(""))
	require.NoError(t, err)
	_, ok := st.(*MemoryStore)
	assert.True(t, ok)
}
