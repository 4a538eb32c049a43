package scorer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/practice-intel/internal/model"
)

func TestDedupe_KeepsHighestScorePerDomain(t *testing.T) {
	in := []model.Candidate{
		{Domain: "puredental.com", URL: "https://puredental.com/about", Score: 40},
		{Domain: "puredental.com", URL: "https://puredental.com", Score: 80},
		{Domain: "yelp.com", URL: "https://yelp.com/biz/pure-dental", Score: 20},
	}

	out := Dedupe(in)
	require.Len(t, out, 2)
	assert.Equal(t, "https://puredental.com", out[0].URL)
	assert.Equal(t, 80, out[0].Score)
}

func TestDedupe_Idempotent(t *testing.T) {
	in := []model.Candidate{
		{Domain: "a.com", Score: 50},
		{Domain: "b.com", Score: 70},
		{Domain: "a.com", Score: 30},
	}

	once := Dedupe(in)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestRank_PracticeWebsitesFirst(t *testing.T) {
	in := []model.Candidate{
		{Domain: "yelp.com", Score: 90},
		{Domain: "puredental.com", Score: 60, IsPracticeWebsite: true},
	}

	out := Rank(in)
	assert.Equal(t, "puredental.com", out[0].Domain)
}

func TestDedupeAndRank_OrderIndependent(t *testing.T) {
	base := []model.Candidate{
		{Domain: "puredental.com", Score: 85, IsPracticeWebsite: true},
		{Domain: "yelp.com", Score: 40},
		{Domain: "healthgrades.com", Score: 40},
		{Domain: "puredentalbuffalo.com", Score: 85, IsPracticeWebsite: true},
		{Domain: "facebook.com", Score: 25},
	}

	expected := DedupeAndRank(base)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := make([]model.Candidate, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, expected, DedupeAndRank(shuffled))
	}
}

func TestDedupeAndRank_Empty(t *testing.T) {
	assert.Empty(t, DedupeAndRank(nil))
}
