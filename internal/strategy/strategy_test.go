package strategy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/practice-intel/internal/model"
)

func TestGenerate_RequiresInput(t *testing.T) {
	_, err := Generate(Input{Location: "Buffalo, NY"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestGenerate_PracticeWithLocationLeads(t *testing.T) {
	out, err := Generate(Input{
		KnownPracticeName: "Pure Dental",
		Location:          "Buffalo, NY",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)

	assert.Equal(t, `"Pure Dental" Buffalo, NY website`, out[0].Query)
	assert.Equal(t, 100, out[0].Weight)
}

func TestGenerate_SortedByWeightDescending(t *testing.T) {
	out, err := Generate(Input{
		SearchTerms:         "dr greg white dentist",
		KnownPracticeName:   "Pure Dental",
		Location:            "Buffalo",
		IncludeAlternatives: true,
	})
	require.NoError(t, err)

	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].Weight, out[i].Weight)
	}
}

func TestGenerate_DomainGuess(t *testing.T) {
	out, err := Generate(Input{KnownPracticeName: "Pure Dental"})
	require.NoError(t, err)

	queries := make([]string, 0, len(out))
	for _, s := range out {
		queries = append(queries, s.Query)
	}
	assert.Contains(t, queries, "puredental.com")
}

func TestGenerate_AlternativesExpandVariants(t *testing.T) {
	base, err := Generate(Input{KnownPracticeName: "Pure Dental"})
	require.NoError(t, err)
	alt, err := Generate(Input{KnownPracticeName: "Pure Dental", IncludeAlternatives: true})
	require.NoError(t, err)

	assert.Greater(t, len(alt), len(base))
}

func TestGenerate_ExtractedNameFromFreeText(t *testing.T) {
	out, err := Generate(Input{
		SearchTerms: "dr greg white Pure Dental implants",
		Location:    "Buffalo",
	})
	require.NoError(t, err)

	var found bool
	for _, s := range out {
		if s.Query == "Pure Dental Buffalo" {
			found = true
			assert.Equal(t, 85, s.Weight)
		}
	}
	assert.True(t, found, "expected extracted practice name strategy")
}

func TestGenerate_DirectoryExclusions(t *testing.T) {
	out, err := Generate(Input{SearchTerms: "dr smith", Location: "Austin, TX"})
	require.NoError(t, err)

	var found bool
	for _, s := range out {
		if s.Weight == 40 {
			found = true
			assert.Contains(t, s.Query, "-yelp")
			assert.Contains(t, s.Query, "-healthgrades")
			assert.Contains(t, s.Query, "-zocdoc")
		}
	}
	assert.True(t, found, "expected generic local strategy")
}

func TestGenerate_Deterministic(t *testing.T) {
	in := Input{
		SearchTerms:         "dr greg white dentist",
		KnownPracticeName:   "Pure Dental",
		Location:            "Buffalo",
		IncludeAlternatives: true,
	}
	a, err := Generate(in)
	require.NoError(t, err)
	b, err := Generate(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExtractPracticeName(t *testing.T) {
	assert.Equal(t, "Pure Dental", ExtractPracticeName("dr greg white Pure Dental buffalo"))
	assert.Equal(t, "Lakeside Medical", ExtractPracticeName("visit Lakeside Medical today"))
	assert.Equal(t, "", ExtractPracticeName("dr greg white dentist"))
}
