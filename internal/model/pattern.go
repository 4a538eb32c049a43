package model

import (
	"math"
	"time"
)

// PatternType categorizes a learned heuristic.
type PatternType string

const (
	PatternPracticeName PatternType = "practice_name"
	PatternDomain       PatternType = "domain_pattern"
	PatternSearchTerm   PatternType = "search_term"
)

// FeedbackType is the user's verdict on a past verification.
type FeedbackType string

const (
	FeedbackCorrect   FeedbackType = "correct"
	FeedbackIncorrect FeedbackType = "incorrect"
	FeedbackPartial   FeedbackType = "partial"
)

// Valid reports whether t is a recognized feedback type.
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackCorrect, FeedbackIncorrect, FeedbackPartial:
		return true
	}
	return false
}

// LearningPattern is a reusable name/domain heuristic derived from
// accumulated user feedback, used to bias future candidate scoring.
type LearningPattern struct {
	Pattern      string      `json:"pattern"`
	Type         PatternType `json:"type"`
	Confidence   int         `json:"confidence"`
	SuccessCount int         `json:"success_count"`
	FailureCount int         `json:"failure_count"`
	Examples     []string    `json:"examples,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// RecomputeConfidence derives confidence from the success rate and total
// observation volume: round(successRate*60 + min(total*2, 40)).
func (p *LearningPattern) RecomputeConfidence() {
	total := p.SuccessCount + p.FailureCount
	if total == 0 {
		p.Confidence = 0
		return
	}
	rate := float64(p.SuccessCount) / float64(total)
	volume := math.Min(float64(total)*2, 40)
	p.Confidence = int(math.Round(rate*60 + volume))
}

// Corrections carries user-supplied fixes attached to feedback.
type Corrections struct {
	ActualPracticeName string `json:"actual_practice_name,omitempty"`
	ActualWebsite      string `json:"actual_website,omitempty"`
	ActualLocation     string `json:"actual_location,omitempty"`
}

// ConfirmedData carries positively confirmed facts attached to feedback.
type ConfirmedData struct {
	PracticeName      string `json:"practice_name,omitempty"`
	Website           string `json:"website,omitempty"`
	IsOfficialWebsite bool   `json:"is_official_website"`
}
