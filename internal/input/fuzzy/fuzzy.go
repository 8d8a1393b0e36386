package fuzzy

import (
	"sort"
	"strings"
	"unicode"
)

// Scoring weights.
const (
	baseScore        = 100
	consecutiveBonus = 20
	boundaryBonus    = 15
	prefixBonus      = 25
	exactPrefixBonus = 50
	gapPenalty       = 2
	lengthBonusLimit = 20
)

// Match is one ranked candidate.
type Match struct {
	// Index is the candidate's position in the input slice.
	Index int
	// Score is higher for better matches.
	Score int
	// Positions are the rune indices of the matched runes.
	Positions []int
}

// Score matches query against text. It reports false when some rune of
// query does not occur in order in text. An empty query matches
// everything with score 0.
func Score(query, text string) (int, []int, bool) {
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return 0, nil, true
	}
	original := []rune(text)
	lower := []rune(strings.ToLower(text))
	if len(lower) != len(original) {
		// Case folding changed the length; match on the original runes.
		lower = original
	}

	positions := make([]int, 0, len(q))
	qi := 0
	for i := 0; i < len(lower) && qi < len(q); i++ {
		if lower[i] == q[qi] {
			positions = append(positions, i)
			qi++
		}
	}
	if qi != len(q) {
		return 0, nil, false
	}
	return score(q, original, lower, positions), positions, true
}

func score(query, original, lower []rune, positions []int) int {
	s := baseScore
	for i := 1; i < len(positions); i++ {
		if positions[i] == positions[i-1]+1 {
			s += consecutiveBonus
		}
	}
	for _, p := range positions {
		if isBoundary(original, p) {
			s += boundaryBonus
		}
	}

	first, last := positions[0], positions[len(positions)-1]
	if first == 0 {
		s += prefixBonus
	}
	if gap := last - first - len(positions) + 1; gap > 0 {
		s -= gap * gapPenalty
	}
	s -= first

	if len(lower) < lengthBonusLimit {
		s += lengthBonusLimit - len(lower)
	}
	if len(lower) >= len(query) && string(lower[:len(query)]) == string(query) {
		s += exactPrefixBonus
	}
	return max(s, 1)
}

// isBoundary reports whether the rune at i starts a word.
func isBoundary(runes []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev, cur := runes[i-1], runes[i]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}

// Rank returns the candidates that match query, best first. Candidates
// with equal scores keep their input order.
func Rank(query string, candidates []string) []Match {
	out := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		if s, pos, ok := Score(query, c); ok {
			out = append(out, Match{Index: i, Score: s, Positions: pos})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
