package model

import (
	"net/url"
	"strings"
)

// Candidate is a single scored result from one evidence source, created
// by the candidate scorer and immutable after creation.
type Candidate struct {
	URL               string     `json:"url"`
	Domain            string     `json:"domain"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	SourceType        SourceType `json:"source_type"`
	Score             int        `json:"score"`
	Indicators        []string   `json:"indicators,omitempty"`
	LocationMatch     bool       `json:"location_match"`
	IsPracticeWebsite bool       `json:"is_practice_website"`
}

// NormalizeDomain extracts the lowercase host from a URL, stripping any
// leading "www.". Returns the input lowercased when it does not parse as
// a URL, so raw hostnames dedupe the same way full URLs do.
func NormalizeDomain(rawURL string) string {
	s := strings.TrimSpace(strings.ToLower(rawURL))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	parsed, err := url.Parse(s)
	if err != nil || parsed.Host == "" {
		return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(rawURL)), "www.")
	}
	host := parsed.Host
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}
