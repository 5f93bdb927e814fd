// Package fuzzy provides edit-distance helpers for fandom name matching.
package fuzzy

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

// Distance computes the Levenshtein edit distance between two strings.
// Insertions, deletions and substitutions cost one each and comparison is
// per rune and case-sensitive; callers lowercase both sides first.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len([]rune(b))
	}
	if len(b) == 0 {
		return len([]rune(a))
	}
	return edlib.LevenshteinDistance(a, b)
}

// Within reports whether a and b are at most maxDiff edits apart.
// The rune length difference is a lower bound on the distance, so obviously
// distant pairs skip the full computation.
func Within(a, b string, maxDiff int) bool {
	la, lb := len([]rune(a)), len([]rune(b))
	if abs(la-lb) > maxDiff {
		return false
	}
	return Distance(a, b) <= maxDiff
}

// Similarity returns the Jaro-Winkler similarity of a and b in [0, 1].
func Similarity(a, b string) float64 {
	return float64(edlib.JaroWinklerSimilarity(a, b))
}

// Candidate is one ranked entry returned by Nearest.
type Candidate struct {
	Name       string  `json:"name"`
	Distance   int     `json:"distance"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0, higher is better
}

// Nearest ranks candidates by edit distance to query and returns at most n
// of them. Ties are broken by Jaro-Winkler similarity, then by name.
// The query itself is excluded from the result.
func Nearest(query string, candidates []string, n int) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, name := range candidates {
		if name == query {
			continue
		}
		ranked = append(ranked, Candidate{
			Name:       name,
			Distance:   Distance(query, name),
			Confidence: Similarity(query, name),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Name < ranked[j].Name
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
