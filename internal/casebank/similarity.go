package casebank

import "strings"

// SimilarityThreshold is the minimum lexical score a stored case must
// exceed to count as similar to a query.
const SimilarityThreshold = 0.3

// Similarity returns the Jaccard index over the sets of lowercase
// whitespace-delimited tokens of the two texts: |A ∩ B| / |A ∪ B|.
// Either side tokenizing to the empty set scores 0.
func Similarity(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range tokensA {
		if tokensB[tok] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection

	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
