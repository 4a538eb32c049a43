package verify

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameFolder strips diacritics so "José" and "Jose" compare equal.
var nameFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// honorifics and credentials are ignored when comparing names.
var nameNoise = map[string]bool{
	"dr": true, "dr.": true, "doctor": true, "md": true, "m.d.": true,
	"dds": true, "d.d.s.": true, "do": true, "dmd": true, "jr": true,
	"jr.": true, "sr": true, "sr.": true, "ii": true, "iii": true,
}

// normalizeName folds diacritics, lowercases, strips punctuation and
// drops honorific/credential tokens.
func normalizeName(name string) []string {
	folded, _, err := transform.String(nameFolder, name)
	if err != nil {
		folded = name
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, folded)

	fields := strings.Fields(cleaned)
	out := fields[:0]
	for _, f := range fields {
		if !nameNoise[f] {
			out = append(out, f)
		}
	}
	return out
}

// NameSimilarity scores how well a candidate record's name matches the
// queried name, in [0,1]. Token overlap with a small edit-distance
// allowance per token, insensitive to case, punctuation and ordering.
func NameSimilarity(candidate, query string) float64 {
	candTokens := normalizeName(candidate)
	queryTokens := normalizeName(query)
	if len(candTokens) == 0 || len(queryTokens) == 0 {
		return 0
	}

	matched := 0
	used := make([]bool, len(candTokens))
	for _, qt := range queryTokens {
		for i, ct := range candTokens {
			if used[i] {
				continue
			}
			if tokensEqual(qt, ct) {
				matched++
				used[i] = true
				break
			}
		}
	}

	return float64(matched) / float64(len(queryTokens))
}

// tokensEqual allows one edit for tokens of five or more characters, so
// common transcription slips ("jon"/"john") still match.
func tokensEqual(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) >= 5 && len(b) >= 5 {
		return levenshtein.ComputeDistance(a, b) <= 1
	}
	return false
}

// splitName divides a full name into first and last parts for registry
// queries. Single-token names go to the last-name field.
func splitName(name string) (first, last string) {
	tokens := normalizeName(name)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return "", tokens[0]
	default:
		return tokens[0], tokens[len(tokens)-1]
	}
}
