package model

import (
	"math"
	"time"
)

// VerificationStatus is the terminal outcome of a verification run.
type VerificationStatus string

const (
	StatusVerified   VerificationStatus = "verified"
	StatusLikely     VerificationStatus = "likely"
	StatusUnverified VerificationStatus = "unverified"
	StatusSuspicious VerificationStatus = "suspicious"
)

// Depth controls which evidence adapters a verification run consults.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// Valid reports whether d is a recognized depth.
func (d Depth) Valid() bool {
	switch d {
	case DepthQuick, DepthStandard, DepthDeep:
		return true
	}
	return false
}

// SourceType identifies which kind of evidence source produced a record.
type SourceType string

const (
	SourceRegistry SourceType = "npi"
	SourceWeb      SourceType = "web"
	SourceSocial   SourceType = "social"
	SourcePractice SourceType = "practice"
)

// SearchHints carries optional context supplied by the caller to narrow
// the search space.
type SearchHints struct {
	PracticeName string `json:"practice_name,omitempty"`
	Location     string `json:"location,omitempty"`
	Specialty    string `json:"specialty,omitempty"`
}

// VerificationSource is one aggregated evidence source attached to a run.
// Sources are append-only: the orchestrator adds one per adapter that
// returned usable evidence and never mutates them afterward.
type VerificationSource struct {
	Type       SourceType     `json:"type"`
	Confidence int            `json:"confidence"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Doctor holds the identity facts established for the practitioner.
type Doctor struct {
	Name        string `json:"name"`
	NPI         string `json:"npi,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Credentials string `json:"credentials,omitempty"`
}

// Practice holds what was established about the practitioner's practice.
type Practice struct {
	Name            string   `json:"name,omitempty"`
	Website         string   `json:"website,omitempty"`
	WebsiteVerified bool     `json:"website_verified"`
	Phone           string   `json:"phone,omitempty"`
	Address         string   `json:"address,omitempty"`
	SocialProfiles  []string `json:"social_profiles,omitempty"`
}

// Flags are booleans derived from sources and practice data. They are
// recomputed on every synthesis and never stored independently.
type Flags struct {
	HasOfficialWebsite   bool `json:"has_official_website"`
	RegistryVerified     bool `json:"registry_verified"`
	LocationConfirmed    bool `json:"location_confirmed"`
	MultipleSourcesAgree bool `json:"multiple_sources_agree"`
	RecentlyUpdated      bool `json:"recently_updated"`
}

// Clarification is a single fixed-choice question posed back to the user
// when automated evidence is insufficient to decide.
type Clarification struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// ConfidenceBreakdown itemizes the contributions behind the overall score.
type ConfidenceBreakdown struct {
	Registry        int `json:"registry"`
	SourceCount     int `json:"source_count"`
	WebsiteFound    int `json:"website_found"`
	WebsiteAnalyzed int `json:"website_analyzed"`
	Reviews         int `json:"reviews"`
	Competitive     int `json:"competitive"`
	BuyingSignals   int `json:"buying_signals"`
	DataQuality     int `json:"data_quality"`
}

// Total sums the breakdown contributions before capping.
func (b ConfidenceBreakdown) Total() int {
	return b.Registry + b.SourceCount + b.WebsiteFound + b.WebsiteAnalyzed +
		b.Reviews + b.Competitive + b.BuyingSignals + b.DataQuality
}

// VerificationResult is the top-level artifact of one verification run.
type VerificationResult struct {
	VerificationID    string               `json:"verification_id"`
	Status            VerificationStatus   `json:"status"`
	OverallConfidence int                  `json:"overall_confidence"`
	Breakdown         ConfidenceBreakdown  `json:"breakdown"`
	Factors           []string             `json:"factors,omitempty"`
	Doctor            Doctor               `json:"doctor"`
	Practice          Practice             `json:"practice"`
	Sources           []VerificationSource `json:"sources"`
	Flags             Flags                `json:"flags"`
	Recommendations   []string             `json:"recommendations"`
	Clarification     *Clarification       `json:"clarification_needed,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
}

// MeanSourceConfidence returns the arithmetic mean of all source
// confidences rounded to the nearest integer and capped at 95. An empty
// source list yields zero.
func (r *VerificationResult) MeanSourceConfidence(cap int) int {
	if len(r.Sources) == 0 {
		return 0
	}
	sum := 0
	for _, s := range r.Sources {
		sum += s.Confidence
	}
	mean := int(math.Round(float64(sum) / float64(len(r.Sources))))
	if mean > cap {
		return cap
	}
	return mean
}
