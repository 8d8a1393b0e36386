package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScore(t *testing.T) {
	tests := []struct {
		query, text string
		ok          bool
		positions   []int
	}{
		{"", "anything", true, nil},
		{"pb", "push_back", true, []int{0, 5}},
		{"PB", "push_back", true, []int{0, 5}},
		{"vec", "vector", true, []int{0, 1, 2}},
		{"xv", "vector", false, nil},
		{"ü", "über", true, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.text, func(t *testing.T) {
			_, pos, ok := Score(tt.query, tt.text)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.positions, pos)
		})
	}
}

func TestScoreOrdering(t *testing.T) {
	prefix, _, _ := Score("pu", "push")
	inner, _, _ := Score("pu", "input")
	require.Greater(t, prefix, inner, "prefix beats inner match")

	consecutive, _, _ := Score("ab", "abxx")
	gapped, _, _ := Score("ab", "axxb")
	require.Greater(t, consecutive, gapped)

	camel, _, _ := Score("gv", "getValue")
	flat, _, _ := Score("gv", "gravel")
	require.Greater(t, camel, flat, "camelCase boundary counts")
}

func TestRank(t *testing.T) {
	got := Rank("pb", []string{"begin", "pop_back", "push_back", "probe"})
	idx := make([]int, len(got))
	for i, m := range got {
		idx[i] = m.Index
	}
	require.Equal(t, []int{1, 2, 3}, idx[:3], "word-boundary matches rank above probe")
	require.Len(t, got, 3)

	all := Rank("", []string{"b", "a"})
	require.Equal(t, 0, all[0].Index)
	require.Equal(t, 1, all[1].Index)
}

func TestScorePositionsAreMatches(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z_]{0,12}`).Draw(t, "text")
		query := rapid.StringMatching(`[a-z]{0,4}`).Draw(t, "query")

		s, pos, ok := Score(query, text)
		if !ok {
			return
		}
		if query == "" {
			if s != 0 {
				t.Fatalf("empty query scored %d", s)
			}
			return
		}
		if s < 1 {
			t.Fatalf("score %d below 1", s)
		}
		runes := []rune(text)
		q := []rune(query)
		if len(pos) != len(q) {
			t.Fatalf("got %d positions for %d runes", len(pos), len(q))
		}
		for i, p := range pos {
			if i > 0 && p <= pos[i-1] {
				t.Fatalf("positions not increasing: %v", pos)
			}
			if r := runes[p]; r != q[i] && r != q[i]-'a'+'A' {
				t.Fatalf("position %d holds %q, want %q", p, r, q[i])
			}
		}
	})
}
