package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameSimilarity_Exact(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("Greg White", "Greg White"))
}

func TestNameSimilarity_IgnoresHonorificsAndCase(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("Dr. Greg White, DDS", "greg white"))
}

func TestNameSimilarity_IgnoresOrdering(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("White Greg", "Greg White"))
}

func TestNameSimilarity_Diacritics(t *testing.T) {
	assert.Equal(t, 1.0, NameSimilarity("José García", "Jose Garcia"))
}

func TestNameSimilarity_EditDistanceAllowance(t *testing.T) {
	// One transcription slip in a long token still matches.
	assert.Equal(t, 1.0, NameSimilarity("Dr. Johnsen Smith", "Johnson Smith"))
	// Short tokens get no allowance.
	assert.Equal(t, 0.5, NameSimilarity("Jon Smith", "Jan Smith"))
}

func TestNameSimilarity_PartialMatch(t *testing.T) {
	got := NameSimilarity("Greg White", "Greg Black")
	assert.Equal(t, 0.5, got)
}

func TestNameSimilarity_Empty(t *testing.T) {
	assert.Equal(t, 0.0, NameSimilarity("", "Greg White"))
	assert.Equal(t, 0.0, NameSimilarity("Greg White", ""))
	assert.Equal(t, 0.0, NameSimilarity("Dr.", "MD"))
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Dr. Greg Alan White, DDS")
	assert.Equal(t, "greg", first)
	assert.Equal(t, "white", last)

	first, last = splitName("Cher")
	assert.Equal(t, "", first)
	assert.Equal(t, "cher", last)

	first, last = splitName("")
	assert.Equal(t, "", first)
	assert.Equal(t, "", last)
}
