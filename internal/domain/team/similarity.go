package team

import (
	"strings"
	"unicode"
)

// DefaultSimilarityThreshold is where fuzzy matching draws the line between
// "same club, different spelling" and "different club".
const DefaultSimilarityThreshold = 0.75

// Similarity computes trigram similarity between two names, compatible with
// Postgres pg_trgm: each word is padded with two leading and one trailing
// space before trigrams are extracted, and the score is shared trigrams over
// the union. Returns a value in [0, 1].
func Similarity(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		if len(ta) == 0 && len(tb) == 0 {
			return 1
		}
		return 0
	}

	shared := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

func trigrams(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make(map[string]struct{})
	for _, w := range words {
		padded := "  " + w + " "
		for i := 0; i+3 <= len(padded); i++ {
			out[padded[i:i+3]] = struct{}{}
		}
	}
	return out
}
