// Package recommend maps a finished verification onto natural-language
// recommendations and, when the evidence is ambiguous, a single
// fixed-choice clarification question.
package recommend

import (
	"fmt"

	"github.com/sells-group/practice-intel/internal/model"
)

// Build produces the ordered recommendation list for a run. The mapping
// is deterministic: same status, confidence, flags and practice always
// yield the same strings in the same order.
func Build(status model.VerificationStatus, confidence int, flags model.Flags, practice model.Practice) []string {
	var recs []string

	switch status {
	case model.StatusVerified:
		recs = append(recs, "Identity and practice verified with high confidence. Safe to proceed with outreach.")
		if practice.Website != "" {
			recs = append(recs, fmt.Sprintf("Reference %s in your opening message to show you did your homework.", practice.Website))
		}
	case model.StatusLikely:
		recs = append(recs, "Evidence points to a real practice but verification is incomplete. Confirm key details before committing resources.")
		if !flags.RegistryVerified {
			recs = append(recs, "No NPI registry match yet. Ask for the provider's NPI number to close the gap.")
		}
		if practice.Website == "" {
			recs = append(recs, "No official website located. The practice may rely on directory listings only.")
		}
	case model.StatusSuspicious:
		recs = append(recs, "Sources conflict despite a broad search. Treat this lead with caution until a human reviews the evidence.")
		recs = append(recs, "Cross-check the provider's name spelling and location before any outreach.")
	default:
		recs = append(recs, "Not enough evidence to verify this provider automatically.")
		if practice.Name == "" {
			recs = append(recs, "Supplying a practice name or location would significantly narrow the search.")
		}
	}

	if !flags.LocationConfirmed && status != model.StatusVerified {
		recs = append(recs, "Location could not be confirmed from any source.")
	}

	return recs
}

// Clarify returns at most one clarification question, or nil. Verified
// runs never ask a question. Weak-but-present evidence also asks nothing:
// the recommendations alone suffice.
func Clarify(status model.VerificationStatus, practice model.Practice, sourceCount int) *model.Clarification {
	if status == model.StatusVerified {
		return nil
	}

	if practice.Name != "" && !practice.WebsiteVerified {
		return &model.Clarification{
			Question: fmt.Sprintf("Is %q the correct practice?", practice.Name),
			Options:  []string{"Yes", "No - different practice", "Not sure"},
		}
	}

	if sourceCount == 0 {
		return &model.Clarification{
			Question: "We couldn't find this provider. What additional detail can you share?",
			Options:  []string{"I know the practice name", "I have their NPI number", "I know their location", "Skip"},
		}
	}

	return nil
}
