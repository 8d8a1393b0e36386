// Package fuzzy ranks completion candidates against the word being typed.
//
// A candidate matches when every rune of the query appears in it in order,
// ignoring case. Matches are scored so that prefixes, runs of consecutive
// runes and word-boundary hits (after punctuation, or a lower-to-upper
// camelCase step) rank first:
//
//	for _, m := range fuzzy.Rank("pb", []string{"push_back", "pop_back", "begin"}) {
//		fmt.Println(m.Index, m.Score)
//	}
package fuzzy
