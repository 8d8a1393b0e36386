package vim

import "github.com/dshills/accepted/internal/engine"

// MotionType says how an operator treats the text a motion covers.
type MotionType uint8

const (
	// MotionCharwise covers the characters between cursor and target.
	MotionCharwise MotionType = iota

	// MotionLinewise covers every line between cursor and target.
	MotionLinewise
)

// Motion describes a cursor movement and how operators use it.
type Motion struct {
	// Name is the motion identifier (e.g., "wordForward").
	Name string

	// Keys is the key sequence that triggers the motion.
	Keys string

	// Kind is the engine motion performed.
	Kind engine.MotionKind

	// Type is charwise or linewise.
	Type MotionType

	// Inclusive motions include the target character in an operator range:
	// 'e' is inclusive, 'w' is not.
	Inclusive bool

	// NeedsChar motions take a character argument (f, F, t, T).
	NeedsChar bool
}

// Engine returns the engine motion with the character argument attached.
func (m *Motion) Engine(char string) engine.Motion {
	return engine.Motion{Kind: m.Kind, Char: char}
}

// IsLinewise reports whether the motion is linewise.
func (m *Motion) IsLinewise() bool {
	return m.Type == MotionLinewise
}

// Standard motions.
var (
	MotionLeft          = Motion{Name: "left", Keys: "h", Kind: engine.MotionLeft}
	MotionRight         = Motion{Name: "right", Keys: "l", Kind: engine.MotionRight}
	MotionUp            = Motion{Name: "up", Keys: "k", Kind: engine.MotionUp, Type: MotionLinewise}
	MotionDown          = Motion{Name: "down", Keys: "j", Kind: engine.MotionDown, Type: MotionLinewise}
	MotionWordForward   = Motion{Name: "wordForward", Keys: "w", Kind: engine.MotionWordForward}
	MotionWordBackward  = Motion{Name: "wordBackward", Keys: "b", Kind: engine.MotionWordBackward}
	MotionWordEnd       = Motion{Name: "wordEnd", Keys: "e", Kind: engine.MotionWordEnd, Inclusive: true}
	MotionBigWordFwd    = Motion{Name: "bigWordForward", Keys: "W", Kind: engine.MotionBigWordForward}
	MotionBigWordBack   = Motion{Name: "bigWordBackward", Keys: "B", Kind: engine.MotionBigWordBackward}
	MotionBigWordEnd    = Motion{Name: "bigWordEnd", Keys: "E", Kind: engine.MotionBigWordEnd, Inclusive: true}
	MotionLineStart     = Motion{Name: "lineStart", Keys: "0", Kind: engine.MotionLineStart}
	MotionFirstNonBlank = Motion{Name: "firstNonBlank", Keys: "^", Kind: engine.MotionFirstNonBlank}
	MotionLineEnd       = Motion{Name: "lineEnd", Keys: "$", Kind: engine.MotionLineEnd, Inclusive: true}
	MotionDocumentStart = Motion{Name: "documentStart", Keys: "gg", Kind: engine.MotionDocumentStart, Type: MotionLinewise}
	MotionDocumentEnd   = Motion{Name: "documentEnd", Keys: "G", Kind: engine.MotionDocumentEnd, Type: MotionLinewise}
	MotionFindForward   = Motion{Name: "findForward", Keys: "f", Kind: engine.MotionFindForward, Inclusive: true, NeedsChar: true}
	MotionFindBackward  = Motion{Name: "findBackward", Keys: "F", Kind: engine.MotionFindBackward, NeedsChar: true}
	MotionTillForward   = Motion{Name: "tillForward", Keys: "t", Kind: engine.MotionTillForward, Inclusive: true, NeedsChar: true}
	MotionTillBackward  = Motion{Name: "tillBackward", Keys: "T", Kind: engine.MotionTillBackward, NeedsChar: true}
)

var motions = map[rune]*Motion{
	'h': &MotionLeft,
	'l': &MotionRight,
	'k': &MotionUp,
	'j': &MotionDown,
	'w': &MotionWordForward,
	'b': &MotionWordBackward,
	'e': &MotionWordEnd,
	'W': &MotionBigWordFwd,
	'B': &MotionBigWordBack,
	'E': &MotionBigWordEnd,
	'0': &MotionLineStart,
	'^': &MotionFirstNonBlank,
	'$': &MotionLineEnd,
	'G': &MotionDocumentEnd,
	'f': &MotionFindForward,
	'F': &MotionFindBackward,
	't': &MotionTillForward,
	'T': &MotionTillBackward,
}

// gMotions are reached through the g prefix.
var gMotions = map[rune]*Motion{
	'g': &MotionDocumentStart,
}

// GetMotion returns the single-key motion bound to r, or nil.
func GetMotion(r rune) *Motion {
	return motions[r]
}

// IsCharSearchMotion reports whether r is f, F, t or T.
func IsCharSearchMotion(r rune) bool {
	m := motions[r]
	return m != nil && m.NeedsChar
}
