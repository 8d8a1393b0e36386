package syntax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChromaHighlightsKeywords(t *testing.T) {
	p := NewChroma()

	spans, err := p.Highlight("go", "package main\n\nfunc main() {}\n")
	require.NoError(t, err)
	require.NotEmpty(t, spans)

	var sawPackage, sawFunc bool
	for _, s := range spans {
		if s.Kind != KindKeyword {
			continue
		}
		if s.Line == 0 && s.StartCol == 0 && s.EndCol == 7 {
			sawPackage = true
		}
		if s.Line == 2 && s.StartCol == 0 && s.EndCol == 4 {
			sawFunc = true
		}
	}
	require.True(t, sawPackage, "expected keyword span for package: %v", spans)
	require.True(t, sawFunc, "expected keyword span for func: %v", spans)
}

func TestChromaByExtension(t *testing.T) {
	p := NewChroma()

	spans, err := p.Highlight("cpp", "// hi\nint x = 1;\n")
	require.NoError(t, err)

	var comment bool
	for _, s := range spans {
		require.Less(t, s.StartCol, s.EndCol)
		if s.Kind == KindComment && s.Line == 0 {
			comment = true
		}
	}
	require.True(t, comment)
}

func TestChromaUnknownLanguage(t *testing.T) {
	spans, err := NewChroma().Highlight("no-such-language-xyz", "text")
	require.NoError(t, err)
	require.Empty(t, spans)
}

func TestChromaCachesResult(t *testing.T) {
	p := NewChroma()
	text := "x := 1"

	first, err := p.Highlight("go", text)
	require.NoError(t, err)
	_, ok := p.cache.Get(cacheKey("go", text))
	require.True(t, ok)

	second, err := p.Highlight("go", text)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "keyword", KindKeyword.String())
	require.Equal(t, "Kind(99)", Kind(99).String())
}
