package npi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/practice-intel/internal/resilience"
)

const registryResponse = `{
	"result_count": 1,
	"results": [{
		"number": 1234567890,
		"basic": {
			"first_name": "GREG",
			"last_name": "WHITE",
			"credential": "DDS"
		},
		"taxonomies": [
			{"desc": "General Practice", "primary": false},
			{"desc": "Dentist", "primary": true}
		],
		"addresses": [
			{"city": "ANYTOWN", "state": "NY", "telephone_number": "716-555-0199", "address_1": "PO BOX 1", "address_purpose": "MAILING"},
			{"city": "BUFFALO", "state": "NY", "telephone_number": "716-555-0100", "address_1": "100 MAIN ST", "address_purpose": "LOCATION"}
		]
	}]
}`

func TestSearch_ByName(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "2.1", q.Get("version"))
		assert.Equal(t, "greg", q.Get("first_name"))
		assert.Equal(t, "white", q.Get("last_name"))
		assert.Equal(t, "NY", q.Get("state"))
		assert.Equal(t, "10", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(registryResponse))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.Search(context.Background(), SearchRequest{
		FirstName: "greg",
		LastName:  "white",
		State:     "NY",
	})

	require.NoError(t, err)
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, "1234567890", p.ID)
	assert.Equal(t, "GREG WHITE", p.Name)
	assert.Equal(t, "DDS", p.Credential)
	assert.Equal(t, "Dentist", p.Specialty)
	assert.True(t, p.IsPrimaryTaxonomy)
	// The practice location wins over the mailing address.
	assert.Equal(t, "BUFFALO", p.City)
	assert.Equal(t, "100 MAIN ST", p.Street)
	assert.Equal(t, "716-555-0100", p.Phone)
}

func TestSearch_ByNumber(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1234567890", r.URL.Query().Get("number"))
		w.Write([]byte(registryResponse))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.Search(context.Background(), SearchRequest{Number: "1234567890"})

	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSearch_NoResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"result_count": 0, "results": []}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	got, err := client.Search(context.Background(), SearchRequest{LastName: "nobody"})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), SearchRequest{LastName: "white"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.True(t, resilience.IsTransient(err))
}

func TestSearch_BadRequestIsPermanent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), SearchRequest{LastName: "white"})

	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}
