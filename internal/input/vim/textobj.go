package vim

// TextObjectKind says how a text object finds its range.
type TextObjectKind uint8

const (
	// ObjectWord is a run of word characters, punctuation or blanks.
	ObjectWord TextObjectKind = iota

	// ObjectBigWord is a run of non-blanks.
	ObjectBigWord

	// ObjectPair is the innermost bracket pair around the cursor. Pairs
	// may span lines and nest.
	ObjectPair

	// ObjectQuote is a quoted string on the cursor line.
	ObjectQuote
)

// TextObject selects a region by structure rather than by motion. It
// follows 'i' (inner) or 'a' (around) after an operator or in Visual mode.
type TextObject struct {
	// Name is the text object identifier (e.g., "word", "paren").
	Name string

	// Key is the key that identifies this text object.
	Key rune

	// Kind selects the range finder.
	Kind TextObjectKind

	// Open and Close delimit pairs and quotes. They are equal for quotes.
	Open, Close string
}

// Standard text objects.
var (
	TextObjWord        = TextObject{Name: "word", Key: 'w', Kind: ObjectWord}
	TextObjBigWord     = TextObject{Name: "WORD", Key: 'W', Kind: ObjectBigWord}
	TextObjParen       = TextObject{Name: "paren", Key: '(', Kind: ObjectPair, Open: "(", Close: ")"}
	TextObjBracket     = TextObject{Name: "bracket", Key: '[', Kind: ObjectPair, Open: "[", Close: "]"}
	TextObjBrace       = TextObject{Name: "brace", Key: '{', Kind: ObjectPair, Open: "{", Close: "}"}
	TextObjAngle       = TextObject{Name: "angle", Key: '<', Kind: ObjectPair, Open: "<", Close: ">"}
	TextObjDoubleQuote = TextObject{Name: "doubleQuote", Key: '"', Kind: ObjectQuote, Open: `"`, Close: `"`}
	TextObjSingleQuote = TextObject{Name: "singleQuote", Key: '\'', Kind: ObjectQuote, Open: "'", Close: "'"}
	TextObjBacktick    = TextObject{Name: "backtick", Key: '`', Kind: ObjectQuote, Open: "`", Close: "`"}
)

// textObjects maps keys to text objects. Closing brackets and the b/B
// aliases name the same pair as the opening bracket.
var textObjects = map[rune]*TextObject{
	'w':  &TextObjWord,
	'W':  &TextObjBigWord,
	'(':  &TextObjParen,
	')':  &TextObjParen,
	'b':  &TextObjParen,
	'[':  &TextObjBracket,
	']':  &TextObjBracket,
	'{':  &TextObjBrace,
	'}':  &TextObjBrace,
	'B':  &TextObjBrace,
	'<':  &TextObjAngle,
	'>':  &TextObjAngle,
	'"':  &TextObjDoubleQuote,
	'\'': &TextObjSingleQuote,
	'`':  &TextObjBacktick,
}

// GetTextObject returns the text object for key, or nil.
func GetTextObject(key rune) *TextObject {
	return textObjects[key]
}

// IsTextObjectPrefix reports whether r starts a text object (i or a).
func IsTextObjectPrefix(r rune) bool {
	return r == 'i' || r == 'a'
}
