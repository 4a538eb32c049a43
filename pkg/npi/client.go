// Package npi provides a client for the CMS NPI registry API.
package npi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/practice-intel/internal/resilience"
)

const defaultBaseURL = "https://npiregistry.cms.hhs.gov/api"

// Client performs NPI registry lookups.
type Client interface {
	Search(ctx context.Context, req SearchRequest) ([]Provider, error)
}

// SearchRequest holds the registry query parameters. Either Number or a
// name must be set.
type SearchRequest struct {
	FirstName string
	LastName  string
	State     string
	Number    string
	Limit     int
}

// Provider is one registry record, flattened from the API response.
type Provider struct {
	ID                string
	Name              string
	Credential        string
	Specialty         string
	OrganizationName  string
	City              string
	State             string
	Phone             string
	Street            string
	IsPrimaryTaxonomy bool
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an NPI registry client. The registry API requires no
// credentials.
func NewClient(opts ...Option) Client {
	c := &httpClient{
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

// apiResponse mirrors the registry's wire format.
type apiResponse struct {
	ResultCount int         `json:"result_count"`
	Results     []apiResult `json:"results"`
}

type apiResult struct {
	Number json.Number `json:"number"`
	Basic  struct {
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		Credential       string `json:"credential"`
		OrganizationName string `json:"organization_name"`
	} `json:"basic"`
	Taxonomies []struct {
		Desc    string `json:"desc"`
		Primary bool   `json:"primary"`
	} `json:"taxonomies"`
	Addresses []struct {
		City            string `json:"city"`
		State           string `json:"state"`
		TelephoneNumber string `json:"telephone_number"`
		Address1        string `json:"address_1"`
		AddressPurpose  string `json:"address_purpose"`
	} `json:"addresses"`
}

func (c *httpClient) Search(ctx context.Context, req SearchRequest) ([]Provider, error) {
	q := url.Values{}
	q.Set("version", "2.1")
	if req.Number != "" {
		q.Set("number", req.Number)
	}
	if req.FirstName != "" {
		q.Set("first_name", req.FirstName)
	}
	if req.LastName != "" {
		q.Set("last_name", req.LastName)
	}
	if req.State != "" {
		q.Set("state", req.State)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	q.Set("limit", strconv.Itoa(limit))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "npi: create request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "npi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "npi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("npi: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "npi: unmarshal response")
	}

	providers := make([]Provider, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		p := Provider{
			ID:               r.Number.String(),
			Name:             strings.TrimSpace(r.Basic.FirstName + " " + r.Basic.LastName),
			Credential:       r.Basic.Credential,
			OrganizationName: r.Basic.OrganizationName,
		}
		for _, t := range r.Taxonomies {
			if t.Primary {
				p.Specialty = t.Desc
				p.IsPrimaryTaxonomy = true
				break
			}
		}
		if p.Specialty == "" && len(r.Taxonomies) > 0 {
			p.Specialty = r.Taxonomies[0].Desc
		}
		// Prefer the practice location over the mailing address.
		for _, a := range r.Addresses {
			if a.AddressPurpose == "LOCATION" || p.City == "" {
				p.City = a.City
				p.State = a.State
				p.Phone = a.TelephoneNumber
				p.Street = a.Address1
			}
			if a.AddressPurpose == "LOCATION" {
				break
			}
		}
		providers = append(providers, p)
	}

	return providers, nil
}
