package vim

// Operator is a command that acts on the text covered by a motion.
type Operator struct {
	// Name is the operator identifier (e.g., "delete").
	Name string

	// Key is the key that triggers the operator.
	Key rune

	// Action is dispatched when the operator is given a motion.
	Action string

	// LinewiseAction is dispatched when the operator key is doubled (dd).
	LinewiseAction string

	// ChangesText indicates the operator modifies the buffer.
	ChangesText bool

	// EntersInsert indicates the operator leaves the editor in Insert mode.
	EntersInsert bool
}

// Operator actions.
const (
	ActionDelete     = "editor.delete"
	ActionDeleteLine = "editor.deleteLine"
	ActionChange     = "editor.change"
	ActionChangeLine = "editor.changeLine"
	ActionYank       = "editor.yank"
	ActionYankLine   = "editor.yankLine"
)

// Standard operators.
var (
	OpDelete = Operator{
		Name:           "delete",
		Key:            'd',
		Action:         ActionDelete,
		LinewiseAction: ActionDeleteLine,
		ChangesText:    true,
	}

	OpChange = Operator{
		Name:           "change",
		Key:            'c',
		Action:         ActionChange,
		LinewiseAction: ActionChangeLine,
		ChangesText:    true,
		EntersInsert:   true,
	}

	OpYank = Operator{
		Name:           "yank",
		Key:            'y',
		Action:         ActionYank,
		LinewiseAction: ActionYankLine,
	}
)

var operators = map[rune]*Operator{
	'd': &OpDelete,
	'c': &OpChange,
	'y': &OpYank,
}

// GetOperator returns the operator bound to r, or nil.
func GetOperator(r rune) *Operator {
	return operators[r]
}

// IsOperator reports whether r starts an operator.
func IsOperator(r rune) bool {
	_, ok := operators[r]
	return ok
}
