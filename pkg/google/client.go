// Package google provides a Google Places client used as the local
// business search adapter.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/practice-intel/internal/resilience"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// Client performs Google Places API operations.
type Client interface {
	TextSearch(ctx context.Context, query string, count int) ([]Place, error)
}

// Place represents a business returned by the API.
type Place struct {
	Title           string   `json:"title"`
	Address         string   `json:"address"`
	Phone           string   `json:"phone"`
	Rating          float64  `json:"rating"`
	UserRatingCount int      `json:"user_rating_count"`
	Categories      []string `json:"categories"`
	WebsiteURL      string   `json:"website_url"`
	Synthetic       bool     `json:"synthetic,omitempty"`
}

// SyntheticFallback returns a structurally valid placeholder for use when
// the live API is unavailable, so downstream scoring never crashes on an
// adapter outage. The record is flagged and carries no scoreable signals.
func SyntheticFallback(query string) []Place {
	return []Place{{
		Title:     query,
		Address:   "unavailable",
		Synthetic: true,
	}}
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type textSearchRequest struct {
	TextQuery    string `json:"textQuery"`
	PageSize     int    `json:"pageSize,omitempty"`
	LanguageCode string `json:"languageCode,omitempty"`
}

type textSearchResponse struct {
	Places []apiPlace `json:"places"`
}

type apiPlace struct {
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress            string   `json:"formattedAddress"`
	NationalPhoneNumber         string   `json:"nationalPhoneNumber"`
	Rating                      float64  `json:"rating"`
	UserRatingCount             int      `json:"userRatingCount"`
	Types                       []string `json:"types"`
	WebsiteURI                  string   `json:"websiteUri"`
	PrimaryTypeDisplayNameValue struct {
		Text string `json:"text"`
	} `json:"primaryTypeDisplayName"`
}

func (c *httpClient) TextSearch(ctx context.Context, query string, count int) ([]Place, error) {
	if count <= 0 {
		count = 5
	}
	body, err := json.Marshal(textSearchRequest{TextQuery: query, PageSize: count})
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask",
		"places.displayName,places.formattedAddress,places.nationalPhoneNumber,places.rating,places.userRatingCount,places.types,places.websiteUri")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "google: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "google: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("google: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var parsed textSearchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal response")
	}

	places := make([]Place, 0, len(parsed.Places))
	for _, p := range parsed.Places {
		places = append(places, Place{
			Title:           p.DisplayName.Text,
			Address:         p.FormattedAddress,
			Phone:           p.NationalPhoneNumber,
			Rating:          p.Rating,
			UserRatingCount: p.UserRatingCount,
			Categories:      p.Types,
			WebsiteURL:      p.WebsiteURI,
		})
	}

	return places, nil
}
