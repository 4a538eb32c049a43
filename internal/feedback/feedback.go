// Package feedback records user verdicts on past verifications and
// distills them into learning patterns that bias future scoring.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/practice-intel/internal/finder"
	"github.com/sells-group/practice-intel/internal/model"
	"github.com/sells-group/practice-intel/internal/store"
)

// Submission is one piece of user feedback on a finished run.
type Submission struct {
	VerificationID string               `json:"verification_id"`
	Type           model.FeedbackType   `json:"type"`
	Corrections    *model.Corrections   `json:"corrections,omitempty"`
	Confirmed      *model.ConfirmedData `json:"confirmed_data,omitempty"`
}

// Outcome reports what the feedback changed.
type Outcome struct {
	PatternsUpdated []string `json:"patterns_updated,omitempty"`
	Insights        []string `json:"insights,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// Service applies feedback to the pattern store.
type Service struct {
	store store.Store
	now   func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a feedback Service over the given store.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit validates and applies one feedback submission. The referenced
// verification must exist; a missing run or malformed submission is an
// invalid-input error.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if strings.TrimSpace(sub.VerificationID) == "" {
		return nil, eris.Wrap(model.ErrInvalidInput, "feedback: verification id is required")
	}
	if !sub.Type.Valid() {
		return nil, eris.Wrapf(model.ErrInvalidInput, "feedback: unknown type %q", sub.Type)
	}

	run, err := s.store.GetResult(ctx, sub.VerificationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, eris.Wrapf(model.ErrInvalidInput, "feedback: verification %s not found", sub.VerificationID)
		}
		return nil, eris.Wrap(err, "feedback: load verification")
	}

	out := &Outcome{}
	success := sub.Type == model.FeedbackCorrect

	// The practice-name pattern tracks how often the pipeline's naming
	// was right for this practice.
	if name := feedbackPracticeName(run, sub); name != "" {
		key := finder.PatternKey(name)
		if err := s.bumpPattern(ctx, key, model.PatternPracticeName, success, nil); err != nil {
			return nil, err
		}
		out.PatternsUpdated = append(out.PatternsUpdated, key)
	}

	// A confirmed official website becomes a fully trusted domain
	// pattern keyed by practice name.
	if sub.Confirmed != nil && sub.Confirmed.IsOfficialWebsite && sub.Confirmed.Website != "" {
		name := sub.Confirmed.PracticeName
		if name == "" {
			name = run.Practice.Name
		}
		if name != "" {
			key := "verified_" + finder.PatternKey(name)
			if err := s.confirmWebsite(ctx, key, sub.Confirmed.Website); err != nil {
				return nil, err
			}
			out.PatternsUpdated = append(out.PatternsUpdated, key)
			out.Insights = append(out.Insights,
				fmt.Sprintf("Recorded %s as the confirmed website for %q.", sub.Confirmed.Website, name))
		}
	}

	out.Insights = append(out.Insights, insight(sub.Type, run))
	out.Suggestions = suggestions(sub, run)

	zap.L().Info("feedback: applied",
		zap.String("verification_id", sub.VerificationID),
		zap.String("type", string(sub.Type)),
		zap.Strings("patterns", out.PatternsUpdated),
	)

	return out, nil
}

// Patterns returns the highest-confidence learned patterns.
func (s *Service) Patterns(ctx context.Context, limit int) ([]model.LearningPattern, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListPatterns(ctx, limit)
}

// bumpPattern increments the success or failure counter of a pattern,
// creating it on first sight, and recomputes its confidence.
func (s *Service) bumpPattern(ctx context.Context, key string, t model.PatternType, success bool, example *string) error {
	p, err := s.store.GetPattern(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return eris.Wrapf(err, "feedback: load pattern %s", key)
		}
		p = &model.LearningPattern{Pattern: key, Type: t}
	}

	if success {
		p.SuccessCount++
	} else {
		p.FailureCount++
	}
	if example != nil && !contains(p.Examples, *example) {
		p.Examples = append(p.Examples, *example)
	}
	p.RecomputeConfidence()
	p.UpdatedAt = s.now().UTC()

	return s.store.PutPattern(ctx, *p)
}

// confirmWebsite stores a user-confirmed official website at full
// confidence. User confirmation outranks any derived score.
func (s *Service) confirmWebsite(ctx context.Context, key, website string) error {
	p, err := s.store.GetPattern(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return eris.Wrapf(err, "feedback: load pattern %s", key)
		}
		p = &model.LearningPattern{Pattern: key, Type: model.PatternDomain}
	}
	p.SuccessCount++
	if !contains(p.Examples, website) {
		p.Examples = append(p.Examples, website)
	}
	p.Confidence = 100
	p.UpdatedAt = s.now().UTC()

	return s.store.PutPattern(ctx, *p)
}

// feedbackPracticeName picks the practice name this feedback is about:
// corrections win over confirmations, which win over the run's own data.
func feedbackPracticeName(run *model.VerificationResult, sub Submission) string {
	if sub.Corrections != nil && sub.Corrections.ActualPracticeName != "" {
		return sub.Corrections.ActualPracticeName
	}
	if sub.Confirmed != nil && sub.Confirmed.PracticeName != "" {
		return sub.Confirmed.PracticeName
	}
	return run.Practice.Name
}

func insight(t model.FeedbackType, run *model.VerificationResult) string {
	switch t {
	case model.FeedbackCorrect:
		return fmt.Sprintf("Confirmed result for %s. Future searches for similar practices will rank matching candidates higher.", run.Doctor.Name)
	case model.FeedbackIncorrect:
		return fmt.Sprintf("Marked result for %s incorrect. The associated patterns lose confidence.", run.Doctor.Name)
	default:
		return fmt.Sprintf("Recorded partial match for %s.", run.Doctor.Name)
	}
}

func suggestions(sub Submission, run *model.VerificationResult) []string {
	var out []string
	if sub.Type == model.FeedbackIncorrect && (sub.Corrections == nil || *sub.Corrections == (model.Corrections{})) {
		out = append(out, "Adding the actual practice name or website would help future searches.")
	}
	if sub.Type == model.FeedbackPartial && run.Practice.Website == "" {
		out = append(out, "If you know the practice's website, confirming it will pin future results to that domain.")
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
