package interpreter

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const maxSuggestionDistance = 2

// suggestName finds the closest visible name for a misspelt identifier.
func suggestName(name string, candidates []string) (string, bool) {
	if name == "" || len(candidates) == 0 {
		return "", false
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, true
	}
	best, bestDistance := "", maxSuggestionDistance+1
	for _, candidate := range candidates {
		if d := fuzzy.LevenshteinDistance(name, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best, best != ""
}
