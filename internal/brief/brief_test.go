package brief

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/practice-intel/internal/model"
	"github.com/sells-group/practice-intel/pkg/anthropic"
)

type fakeLLM struct {
	req  anthropic.MessageRequest
	resp *anthropic.MessageResponse
	err  error
}

func (f *fakeLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.req = req
	return f.resp, f.err
}

func verifiedResult() *model.VerificationResult {
	return &model.VerificationResult{
		VerificationID:    "run-1",
		Status:            model.StatusVerified,
		OverallConfidence: 88,
		Doctor:            model.Doctor{Name: "Greg White", NPI: "1234567890", Specialty: "Dentist"},
		Practice:          model.Practice{Name: "Pure Dental", Website: "https://puredental.com", WebsiteVerified: true},
		Flags:             model.Flags{RegistryVerified: true},
		Factors:           []string{"NPI registry match confirmed"},
		Sources:           []model.VerificationSource{{Type: model.SourceRegistry, Confidence: 95}},
	}
}

func TestGenerate(t *testing.T) {
	llm := &fakeLLM{resp: &anthropic.MessageResponse{Text: "Greg White runs Pure Dental in Buffalo."}}
	s := New(llm, "claude-sonnet-4-5-20250929")

	got, err := s.Generate(context.Background(), verifiedResult())
	require.NoError(t, err)
	assert.Equal(t, "Greg White runs Pure Dental in Buffalo.", got)

	assert.Equal(t, "claude-sonnet-4-5-20250929", llm.req.Model)
	assert.NotEmpty(t, llm.req.System)
	require.Len(t, llm.req.Messages, 1)
	prompt := llm.req.Messages[0].Content
	assert.Contains(t, prompt, "Greg White")
	assert.Contains(t, prompt, "https://puredental.com")
	assert.Contains(t, prompt, "verified")
	assert.Contains(t, prompt, "NPI registry match confirmed")
}

func TestGenerate_NilResult(t *testing.T) {
	s := New(&fakeLLM{}, "m")
	_, err := s.Generate(context.Background(), nil)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestGenerate_APIError(t *testing.T) {
	s := New(&fakeLLM{err: errors.New("overloaded")}, "m")
	_, err := s.Generate(context.Background(), verifiedResult())
	require.Error(t, err)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	s := New(&fakeLLM{resp: &anthropic.MessageResponse{Text: "   "}}, "m")
	_, err := s.Generate(context.Background(), verifiedResult())
	require.Error(t, err)
}
