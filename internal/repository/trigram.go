package repository

import (
	"strings"
	"unicode"
)

// trigramSet extracts pg_trgm style trigrams: the input is lower-cased and
// split on non-alphanumeric runes, and each word is padded with two leading
// spaces and one trailing space before sliding a three-rune window over it.
func trigramSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// TrigramSimilarity returns |A∩B| / |A∪B| over the trigram sets of a and b,
// matching pg_trgm's similarity().
func TrigramSimilarity(a, b string) float64 {
	ta, tb := trigramSet(a), trigramSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for g := range ta {
		if _, ok := tb[g]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}
