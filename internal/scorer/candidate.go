// Package scorer turns raw search results into scored website candidates
// and reconciles candidates across strategies.
package scorer

import (
	"math"
	"strings"

	"github.com/sells-group/practice-intel/internal/model"
)

// directoryDomains lists review/listing aggregators that are never a
// practice's own website.
var directoryDomains = []string{
	"yelp.com", "healthgrades.com", "zocdoc.com", "vitals.com",
	"ratemds.com", "yellowpages.com", "facebook.com", "linkedin.com",
	"webmd.com", "wellness.com", "doctor.com", "caredash.com",
	"bbb.org", "mapquest.com", "foursquare.com",
}

// builderSubdomains are website-builder hosts that indicate the practice
// does not control its own domain.
var builderSubdomains = []string{
	".wixsite.com", ".squarespace.com", ".weebly.com", ".wordpress.com",
	".godaddysites.com", ".business.site",
}

// practiceKeywords signal a healthcare-practice website in a domain or title.
var practiceKeywords = []string{
	"dental", "dentist", "medical", "clinic", "practice", "office",
	"center", "health", "orthodontic", "pediatric", "dermatology",
	"family", "care", "smile",
}

// Context carries what is already known about the practice when scoring.
type Context struct {
	KnownPracticeName string
	Location          string
}

// RawResult is one unscored search hit from an evidence source.
type RawResult struct {
	URL         string
	Title       string
	Description string
}

// Score evaluates one raw result against the context and the weight of
// the strategy that produced it, returning an immutable candidate.
// Signals are additive, then scaled by weight/100, then clamped to
// [0,100]. Deterministic for identical inputs.
func Score(raw RawResult, ctx Context, weight int) model.Candidate {
	domain := model.NormalizeDomain(raw.URL)
	lowerTitle := strings.ToLower(raw.Title)
	lowerDesc := strings.ToLower(raw.Description)
	lowerURL := strings.ToLower(raw.URL)

	score := 0
	var indicators []string

	isDirectory := isDirectoryDomain(domain)
	if isDirectory {
		score -= 20
		indicators = append(indicators, "directory or listing site")
	}

	domainKeyword := containsAnyKeyword(domain, practiceKeywords)
	if domainKeyword {
		score += 30
		indicators = append(indicators, "practice keyword in domain")
	}

	titleKeyword := containsAnyKeyword(lowerTitle, practiceKeywords)
	if titleKeyword {
		score += 20
		indicators = append(indicators, "practice keyword in title")
	}

	if ctx.KnownPracticeName != "" {
		score += nameSimilarityPoints(domain, lowerTitle, ctx.KnownPracticeName, &indicators)
	}

	locationMatch := false
	if ctx.Location != "" {
		for _, token := range locationTokens(ctx.Location) {
			if strings.Contains(lowerTitle, token) || strings.Contains(lowerDesc, token) || strings.Contains(lowerURL, token) {
				locationMatch = true
				break
			}
		}
		if locationMatch {
			score += 15
			indicators = append(indicators, "location match")
		}
	}

	customDomain := !isDirectory && !isBuilderSubdomain(domain)
	if customDomain {
		score += 20
		indicators = append(indicators, "custom domain")
	}

	if strings.HasPrefix(lowerURL, "https://") {
		score += 5
		indicators = append(indicators, "https")
	}

	if isHomepagePath(raw.URL) {
		score += 10
		indicators = append(indicators, "homepage url")
	}

	scaled := int(math.Round(float64(score) * float64(weight) / 100))
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 100 {
		scaled = 100
	}

	return model.Candidate{
		URL:               raw.URL,
		Domain:            domain,
		Title:             raw.Title,
		Description:       raw.Description,
		SourceType:        model.SourceWeb,
		Score:             scaled,
		Indicators:        indicators,
		LocationMatch:     locationMatch,
		IsPracticeWebsite: !isDirectory && customDomain && (domainKeyword || titleKeyword) && scaled > 30,
	}
}

// nameSimilarityPoints scores how closely the domain and title match the
// known practice name.
func nameSimilarityPoints(domain, lowerTitle, practiceName string, indicators *[]string) int {
	points := 0
	lowerName := strings.ToLower(practiceName)
	compact := strings.Join(strings.Fields(lowerName), "")
	bare := domain
	if i := strings.Index(bare, "."); i >= 0 {
		bare = bare[:i]
	}

	switch {
	case compact != "" && (strings.Contains(bare, compact) || strings.Contains(compact, bare) && bare != ""):
		points += 40
		*indicators = append(*indicators, "domain matches practice name")
	default:
		if overlap := tokenOverlap(bare, lowerName); overlap >= 0.5 {
			points += 25
			*indicators = append(*indicators, "domain partially matches practice name")
		}
	}

	if strings.Contains(lowerTitle, lowerName) {
		points += 35
		*indicators = append(*indicators, "title contains practice name")
	} else if allTokensPresent(lowerTitle, lowerName) {
		points += 25
		*indicators = append(*indicators, "title contains practice name tokens")
	}

	return points
}

// tokenOverlap returns the fraction of name tokens present in s.
func tokenOverlap(s, name string) float64 {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return 0
	}
	found := 0
	for _, t := range tokens {
		if strings.Contains(s, t) {
			found++
		}
	}
	return float64(found) / float64(len(tokens))
}

func allTokensPresent(s, name string) bool {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

// locationTokens splits "Buffalo, NY" into comparable lowercase tokens.
func locationTokens(location string) []string {
	fields := strings.FieldsFunc(strings.ToLower(location), func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

func isDirectoryDomain(domain string) bool {
	for _, d := range directoryDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

func isBuilderSubdomain(domain string) bool {
	for _, b := range builderSubdomains {
		if strings.HasSuffix(domain, b) || domain == strings.TrimPrefix(b, ".") {
			return true
		}
	}
	return false
}

// isHomepagePath reports whether the URL path looks like a site root
// rather than a blog post or profile page.
func isHomepagePath(rawURL string) bool {
	s := rawURL
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	slash := strings.Index(s, "/")
	if slash < 0 {
		return true
	}
	path := strings.ToLower(strings.TrimRight(s[slash:], "/"))
	if path == "" {
		return true
	}
	for _, deep := range []string{"/blog/", "/profile/", "/page/", "/blog", "/profile", "/page"} {
		if strings.HasPrefix(path, deep) {
			return false
		}
	}
	// Single shallow segment like "/home" still reads as a homepage.
	return strings.Count(path, "/") <= 1 && len(path) <= 12
}

func containsAnyKeyword(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
