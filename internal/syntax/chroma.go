package syntax

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rivo/uniseg"
)

const (
	defaultExpiration      = 5 * time.Minute
	defaultCleanupInterval = 10 * time.Minute
)

// Chroma highlights text with chroma lexers.
type Chroma struct {
	cache *gocache.Cache
}

// NewChroma creates a chroma-backed provider with an in-memory span cache.
func NewChroma() *Chroma {
	return &Chroma{cache: gocache.New(defaultExpiration, defaultCleanupInterval)}
}

// Highlight implements Provider.
func (c *Chroma) Highlight(lang, text string) ([]Span, error) {
	key := cacheKey(lang, text)
	if v, ok := c.cache.Get(key); ok {
		if spans, ok := v.([]Span); ok {
			return spans, nil
		}
	}

	lexer := lookupLexer(lang)
	if lexer == nil {
		return nil, nil
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, text)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", lang, err)
	}

	var spans []Span
	line, col := 0, 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		kind := classify(tok.Type)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				line++
				col = 0
			}
			n := uniseg.GraphemeClusterCount(part)
			if n > 0 && kind != KindPlain {
				spans = append(spans, Span{Line: line, StartCol: col, EndCol: col + n, Kind: kind})
			}
			col += n
		}
	}

	c.cache.Set(key, spans, gocache.DefaultExpiration)
	return spans, nil
}

func lookupLexer(lang string) chroma.Lexer {
	if lang == "" {
		return nil
	}
	if l := lexers.Get(lang); l != nil {
		return l
	}
	return lexers.Match("source." + strings.TrimPrefix(lang, "."))
}

func classify(t chroma.TokenType) Kind {
	switch {
	case t == chroma.CommentPreproc || t == chroma.CommentPreprocFile:
		return KindPreprocessor
	case t.InCategory(chroma.Comment):
		return KindComment
	case t == chroma.KeywordType || t == chroma.NameBuiltin || t == chroma.NameClass:
		return KindType
	case t.InCategory(chroma.Keyword):
		return KindKeyword
	case t == chroma.NameFunction:
		return KindFunction
	case t.InSubCategory(chroma.LiteralString):
		return KindString
	case t.InSubCategory(chroma.LiteralNumber):
		return KindNumber
	case t.InCategory(chroma.Operator):
		return KindOperator
	default:
		return KindPlain
	}
}

func cacheKey(lang, text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return fmt.Sprintf("%s:%x", lang, h.Sum64())
}
