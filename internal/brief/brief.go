// Package brief turns a finished verification into a short sales brief
// using the Anthropic API.
package brief

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/practice-intel/internal/model"
	"github.com/sells-group/practice-intel/pkg/anthropic"
)

const systemPrompt = `You are a sales research assistant for a company selling to healthcare practices. Given the verification evidence for one practitioner, write a concise brief for a sales rep: who they are, what their practice looks like, how confident we are in the data, and one suggested opening angle. Four short paragraphs at most. Do not invent facts beyond the evidence given.`

// Synthesizer generates sales briefs.
type Synthesizer struct {
	llm   anthropic.Client
	model string
}

// New creates a brief Synthesizer using the given model.
func New(llm anthropic.Client, model string) *Synthesizer {
	return &Synthesizer{llm: llm, model: model}
}

// Generate writes a sales brief from the verification evidence.
func (s *Synthesizer) Generate(ctx context.Context, result *model.VerificationResult) (string, error) {
	if result == nil {
		return "", eris.Wrap(model.ErrInvalidInput, "brief: nil result")
	}

	resp, err := s.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: 1024,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: evidenceSummary(result)},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "brief: generate")
	}
	resp.Usage.LogUsage(s.model, "sales_brief")

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", eris.New("brief: empty response")
	}
	return text, nil
}

// evidenceSummary flattens the result into the prompt. Only established
// facts go in; the model is told the confidence tier so it can hedge.
func evidenceSummary(r *model.VerificationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Practitioner: %s\n", r.Doctor.Name)
	if r.Doctor.Specialty != "" {
		fmt.Fprintf(&b, "Specialty: %s\n", r.Doctor.Specialty)
	}
	if r.Doctor.Credentials != "" {
		fmt.Fprintf(&b, "Credentials: %s\n", r.Doctor.Credentials)
	}
	if r.Doctor.NPI != "" {
		fmt.Fprintf(&b, "NPI: %s (registry verified: %t)\n", r.Doctor.NPI, r.Flags.RegistryVerified)
	}
	if r.Practice.Name != "" {
		fmt.Fprintf(&b, "Practice: %s\n", r.Practice.Name)
	}
	if r.Practice.Website != "" {
		fmt.Fprintf(&b, "Website: %s (verified: %t)\n", r.Practice.Website, r.Practice.WebsiteVerified)
	}
	if r.Practice.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", r.Practice.Address)
	}
	if r.Practice.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", r.Practice.Phone)
	}
	if len(r.Practice.SocialProfiles) > 0 {
		fmt.Fprintf(&b, "Social profiles: %s\n", strings.Join(r.Practice.SocialProfiles, ", "))
	}
	fmt.Fprintf(&b, "Verification status: %s (confidence %d/100, %d sources)\n",
		r.Status, r.OverallConfidence, len(r.Sources))
	if len(r.Factors) > 0 {
		fmt.Fprintf(&b, "Evidence factors:\n")
		for _, f := range r.Factors {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}
