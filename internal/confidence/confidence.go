// Package confidence converts aggregated verification evidence into one
// calibrated score with a breakdown and human-readable factor list. All
// confidence arithmetic for the pipeline lives here.
package confidence

import (
	"fmt"
	"time"

	"github.com/sells-group/practice-intel/internal/config"
	"github.com/sells-group/practice-intel/internal/model"
)

// DataQuality tiers the completeness of the evidence payloads.
type DataQuality string

const (
	QualityHigh   DataQuality = "high"
	QualityMedium DataQuality = "medium"
	QualityLow    DataQuality = "low"
)

// Evidence is the synthesizer's input, derived from a run's sources.
type Evidence struct {
	RegistryVerified bool
	SourceCount      int
	WebsiteFound     bool
	WebsiteAnalyzed  bool
	ReviewCount      int
	HasCompetitive   bool
	BuyingSignals    int
	DataQuality      DataQuality
}

// Synthesizer computes scores and statuses from evidence using the
// configured thresholds.
type Synthesizer struct {
	cfg config.VerifyConfig
}

// New creates a Synthesizer with the given thresholds.
func New(cfg config.VerifyConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Breakdown itemizes the evidence contributions. Each signal is capped at
// its own ceiling; the grand total is capped at the configured maximum
// (95 by default, never 100: irreducible uncertainty).
func (s *Synthesizer) Breakdown(ev Evidence) (model.ConfidenceBreakdown, []string) {
	var b model.ConfidenceBreakdown
	var factors []string

	if ev.RegistryVerified {
		b.Registry = 35
		factors = append(factors, "NPI registry match confirmed")
	}

	b.SourceCount = ev.SourceCount * 2
	if b.SourceCount > 30 {
		b.SourceCount = 30
	}
	if ev.SourceCount > 0 {
		factors = append(factors, fmt.Sprintf("%d independent sources consulted", ev.SourceCount))
	}

	if ev.WebsiteFound {
		b.WebsiteFound = 7
		factors = append(factors, "practice website identified")
	}
	if ev.WebsiteAnalyzed {
		b.WebsiteAnalyzed = 8
		factors = append(factors, "website content analyzed")
	}

	switch {
	case ev.ReviewCount >= 50:
		b.Reviews = 10
		factors = append(factors, fmt.Sprintf("strong review volume (%d reviews)", ev.ReviewCount))
	case ev.ReviewCount >= 20:
		b.Reviews = 7
		factors = append(factors, fmt.Sprintf("moderate review volume (%d reviews)", ev.ReviewCount))
	case ev.ReviewCount > 0:
		b.Reviews = 4
		factors = append(factors, fmt.Sprintf("some reviews found (%d)", ev.ReviewCount))
	}

	if ev.HasCompetitive {
		b.Competitive = 3
		factors = append(factors, "competitive analysis data present")
	}

	b.BuyingSignals = ev.BuyingSignals * 2
	if b.BuyingSignals > 4 {
		b.BuyingSignals = 4
	}
	if ev.BuyingSignals > 0 {
		factors = append(factors, fmt.Sprintf("%d buying signals detected", ev.BuyingSignals))
	}

	switch ev.DataQuality {
	case QualityHigh:
		b.DataQuality = 3
	case QualityMedium:
		b.DataQuality = 1
	}

	return b, factors
}

// Overall returns the run's overall confidence: the arithmetic mean of
// all source confidences, rounded, capped. Zero when no sources.
func (s *Synthesizer) Overall(result *model.VerificationResult) int {
	return result.MeanSourceConfidence(s.cfg.ConfidenceCap)
}

// Status applies the terminal state machine. Computed fresh every run;
// nothing persists between calls.
func (s *Synthesizer) Status(overall int, ev Evidence) model.VerificationStatus {
	switch {
	case overall >= s.cfg.VerifiedThreshold && ev.RegistryVerified && ev.WebsiteFound:
		return model.StatusVerified
	case overall >= s.cfg.LikelyThreshold:
		return model.StatusLikely
	case overall < s.cfg.SuspiciousThreshold && ev.SourceCount >= s.cfg.SuspiciousMinSources:
		return model.StatusSuspicious
	default:
		return model.StatusUnverified
	}
}

// Flags derives the boolean flag set from sources and practice data. The
// flags are always recomputed here, never carried over.
func Flags(sources []model.VerificationSource, practice model.Practice, locationConfirmed bool, now time.Time) model.Flags {
	registryVerified := false
	agree := 0
	recent := false
	for _, src := range sources {
		if src.Type == model.SourceRegistry {
			registryVerified = true
		}
		if src.Confidence >= 60 {
			agree++
		}
		if now.Sub(src.Timestamp) < 24*time.Hour {
			recent = true
		}
	}
	return model.Flags{
		HasOfficialWebsite:   practice.Website != "" && practice.WebsiteVerified,
		RegistryVerified:     registryVerified,
		LocationConfirmed:    locationConfirmed,
		MultipleSourcesAgree: agree >= 2,
		RecentlyUpdated:      recent,
	}
}
