package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/practice-intel/internal/model"
	"github.com/sells-group/practice-intel/internal/store"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	}
}

func seedRun(t *testing.T, st store.Store, id, practiceName string) {
	t.Helper()
	err := st.SaveResult(context.Background(), &model.VerificationResult{
		VerificationID: id,
		Status:         model.StatusLikely,
		Doctor:         model.Doctor{Name: "Greg White"},
		Practice:       model.Practice{Name: practiceName},
		CreatedAt:      time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestSubmit_Validation(t *testing.T) {
	svc := New(store.NewMemory(), WithClock(fixedClock()))
	ctx := context.Background()

	_, err := svc.Submit(ctx, Submission{Type: model.FeedbackCorrect})
	assert.True(t, errors.Is(err, model.ErrInvalidInput), "missing id")

	_, err = svc.Submit(ctx, Submission{VerificationID: "run-1", Type: "great"})
	assert.True(t, errors.Is(err, model.ErrInvalidInput), "bad type")

	_, err = svc.Submit(ctx, Submission{VerificationID: "no-such-run", Type: model.FeedbackCorrect})
	assert.True(t, errors.Is(err, model.ErrInvalidInput), "unknown verification")
}

func TestSubmit_CorrectBumpsPracticePattern(t *testing.T) {
	st := store.NewMemory()
	seedRun(t, st, "run-1", "Pure Dental")
	svc := New(st, WithClock(fixedClock()))

	out, err := svc.Submit(context.Background(), Submission{
		VerificationID: "run-1",
		Type:           model.FeedbackCorrect,
	})
	require.NoError(t, err)
	assert.Contains(t, out.PatternsUpdated, "pure dental")

	p, err := st.GetPattern(context.Background(), "pure dental")
	require.NoError(t, err)
	assert.Equal(t, 1, p.SuccessCount)
	assert.Equal(t, 0, p.FailureCount)
	assert.Equal(t, 62, p.Confidence) // round(1.0*60 + min(2,40))
}

func TestSubmit_IncorrectBumpsFailure(t *testing.T) {
	st := store.NewMemory()
	seedRun(t, st, "run-1", "Pure Dental")
	svc := New(st, WithClock(fixedClock()))

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), Submission{
			VerificationID: "run-1",
			Type:           model.FeedbackCorrect,
		})
		require.NoError(t, err)
	}
	_, err := svc.Submit(context.Background(), Submission{
		VerificationID: "run-1",
		Type:           model.FeedbackIncorrect,
	})
	require.NoError(t, err)

	p, err := st.GetPattern(context.Background(), "pure dental")
	require.NoError(t, err)
	assert.Equal(t, 3, p.SuccessCount)
	assert.Equal(t, 1, p.FailureCount)
	assert.Equal(t, 53, p.Confidence) // round(0.75*60 + 8)
}

func TestSubmit_CorrectionOverridesRunName(t *testing.T) {
	st := store.NewMemory()
	seedRun(t, st, "run-1", "Pure Dental")
	svc := New(st, WithClock(fixedClock()))

	out, err := svc.Submit(context.Background(), Submission{
		VerificationID: "run-1",
		Type:           model.FeedbackIncorrect,
		Corrections:    &model.Corrections{ActualPracticeName: "White Family Dentistry"},
	})
	require.NoError(t, err)
	assert.Contains(t, out.PatternsUpdated, "white family dentistry")

	_, err = st.GetPattern(context.Background(), "white family dentistry")
	assert.NoError(t, err)
}

func TestSubmit_ConfirmedWebsiteFullConfidence(t *testing.T) {
	st := store.NewMemory()
	seedRun(t, st, "run-1", "Pure Dental")
	svc := New(st, WithClock(fixedClock()))

	out, err := svc.Submit(context.Background(), Submission{
		VerificationID: "run-1",
		Type:           model.FeedbackCorrect,
		Confirmed: &model.ConfirmedData{
			PracticeName:      "Pure Dental",
			Website:           "https://puredental.com",
			IsOfficialWebsite: true,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out.PatternsUpdated, "verified_pure dental")

	p, err := st.GetPattern(context.Background(), "verified_pure dental")
	require.NoError(t, err)
	assert.Equal(t, 100, p.Confidence)
	assert.Contains(t, p.Examples, "https://puredental.com")
	assert.Equal(t, model.PatternDomain, p.Type)
}

func TestSubmit_SuggestionsForBareIncorrect(t *testing.T) {
	st := store.NewMemory()
	seedRun(t, st, "run-1", "Pure Dental")
	svc := New(st, WithClock(fixedClock()))

	out, err := svc.Submit(context.Background(), Submission{
		VerificationID: "run-1",
		Type:           model.FeedbackIncorrect,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Suggestions)
}

func TestPatterns_Sorted(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, st.PutPattern(ctx, model.LearningPattern{Pattern: "a", Confidence: 40}))
	require.NoError(t, st.PutPattern(ctx, model.LearningPattern{Pattern: "b", Confidence: 90}))
	require.NoError(t, st.PutPattern(ctx, model.LearningPattern{Pattern: "c", Confidence: 60}))

	svc := New(st)
	got, err := svc.Patterns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Pattern)
	assert.Equal(t, "c", got[1].Pattern)
}
