// Package strategy generates ordered, weighted web-search queries for
// locating a practice's official website.
package strategy

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/practice-intel/internal/model"
)

// Strategy is one candidate query with its trust weight. Results found by
// a higher-weight strategy outrank the same signals found by a lower one.
type Strategy struct {
	Query       string `json:"query"`
	Weight      int    `json:"weight"`
	Description string `json:"description"`
}

// Input carries the context available for query generation.
type Input struct {
	SearchTerms         string
	KnownPracticeName   string
	Location            string
	IncludeAlternatives bool
}

// practiceNamePattern extracts a candidate practice name from free text,
// e.g. "Pure Dental" out of "dr greg white Pure Dental buffalo".
var practiceNamePattern = regexp.MustCompile(`\b([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)*)\s+(Dental|Medical|Clinic|Practice|Center|Orthodontics|Pediatrics)\b`)

var officeKeywords = []string{"dental office", "medical office", "clinic"}

var commonTLDs = []string{".com", ".net", ".org"}

// Generate produces the ordered strategy list, highest weight first.
// At least one of SearchTerms or KnownPracticeName must be non-empty.
// Pure function of its input.
func Generate(in Input) ([]Strategy, error) {
	terms := strings.TrimSpace(in.SearchTerms)
	practice := strings.TrimSpace(in.KnownPracticeName)
	location := strings.TrimSpace(in.Location)

	if terms == "" && practice == "" {
		return nil, eris.Wrap(model.ErrInvalidInput, "strategy: search terms or practice name required")
	}

	var out []Strategy

	if practice != "" {
		if location != "" {
			out = append(out, Strategy{
				Query:       fmt.Sprintf(`"%s" %s website`, practice, location),
				Weight:      100,
				Description: "exact practice name with location",
			})
		}
		for _, kw := range officeKeywords {
			out = append(out, Strategy{
				Query:       fmt.Sprintf(`"%s" %s`, practice, kw),
				Weight:      90,
				Description: "practice name with office keyword",
			})
			if !in.IncludeAlternatives {
				break
			}
		}
		compact := strings.ToLower(strings.Join(strings.Fields(practice), ""))
		for _, tld := range commonTLDs {
			out = append(out, Strategy{
				Query:       compact + tld,
				Weight:      80,
				Description: "domain-style guess",
			})
			if !in.IncludeAlternatives {
				break
			}
		}
		if location != "" {
			first := strings.Fields(practice)[0]
			out = append(out, Strategy{
				Query:       fmt.Sprintf("%s %s", first, location),
				Weight:      60,
				Description: "practice first token with location",
			})
		}
	}

	if terms != "" {
		out = append(out, Strategy{
			Query:       terms + " official website",
			Weight:      70,
			Description: "free-text terms with official website",
		})

		// A practice name embedded in free text outranks the raw terms.
		if extracted := ExtractPracticeName(terms); extracted != "" && !strings.EqualFold(extracted, practice) {
			q := extracted
			if location != "" {
				q = extracted + " " + location
			}
			out = append(out, Strategy{
				Query:       q,
				Weight:      85,
				Description: "extracted practice name",
			})
		}
	}

	if location != "" {
		subject := practice
		if subject == "" {
			subject = terms
		}
		out = append(out, Strategy{
			Query:       fmt.Sprintf("%s %s -yelp -healthgrades -zocdoc", subject, location),
			Weight:      40,
			Description: "generic local search excluding directories",
		})
	}

	// Highest weight first; equal weights keep generation order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })

	return out, nil
}

// ExtractPracticeName pulls a capitalized practice name followed by a
// practice-type word out of free text. Returns "" when nothing matches.
func ExtractPracticeName(text string) string {
	m := practiceNamePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1] + " " + m[2])
}
