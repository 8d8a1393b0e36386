package vim

import (
	"github.com/dshills/accepted/internal/input/key"
)

// ParseStatus indicates the result of parsing a key event.
type ParseStatus uint8

const (
	// StatusPending indicates more input is needed.
	StatusPending ParseStatus = iota

	// StatusComplete indicates a complete command was parsed.
	StatusComplete

	// StatusInvalid indicates the sequence is invalid and was discarded.
	StatusInvalid

	// StatusPassthrough indicates the key is not part of the grammar.
	StatusPassthrough
)

// String returns a string representation of the status.
func (s ParseStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusComplete:
		return "complete"
	case StatusInvalid:
		return "invalid"
	case StatusPassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// ParseState represents the current state of the parser.
type ParseState uint8

const (
	// StateInitial is waiting for initial input.
	StateInitial ParseState = iota

	// StateCount is accumulating a count prefix.
	StateCount

	// StateRegister is waiting for a register name after ".
	StateRegister

	// StateOperator has received an operator and waits for a motion.
	StateOperator

	// StateOperatorCount is accumulating a count after the operator.
	StateOperatorCount

	// StateGPrefix has received 'g'.
	StateGPrefix

	// StateCharSearch has received f/F/t/T and waits for the character.
	StateCharSearch

	// StateReplaceChar has received 'r' and waits for the character.
	StateReplaceChar

	// StateTextObject has received i or a and waits for the object key.
	StateTextObject
)

// String returns a string representation of the state.
func (s ParseState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateCount:
		return "count"
	case StateRegister:
		return "register"
	case StateOperator:
		return "operator"
	case StateOperatorCount:
		return "operatorCount"
	case StateGPrefix:
		return "gPrefix"
	case StateCharSearch:
		return "charSearch"
	case StateReplaceChar:
		return "replaceChar"
	case StateTextObject:
		return "textObject"
	default:
		return "unknown"
	}
}

// Simple command actions.
const (
	ActionMove            = "cursor.move"
	ActionInsert          = "insert.before"
	ActionInsertLineStart = "insert.lineStart"
	ActionAppend          = "insert.after"
	ActionAppendLineEnd   = "insert.lineEnd"
	ActionOpenBelow       = "insert.openBelow"
	ActionOpenAbove       = "insert.openAbove"
	ActionVisual          = "visual.char"
	ActionVisualLine      = "visual.line"
	ActionPutAfter        = "editor.putAfter"
	ActionPutBefore       = "editor.putBefore"
	ActionJoinLines       = "editor.joinLines"
	ActionReplaceChar     = "editor.replaceChar"
	ActionUndo            = "history.undo"
	ActionRedo            = "history.redo"
	ActionRepeat          = "editor.repeat"
	ActionSearchNext      = "search.next"
	ActionSearchPrev      = "search.prev"
	ActionSelectObject    = "visual.textObject"
)

// simpleActions are complete after one key.
var simpleActions = map[rune]string{
	'i': ActionInsert,
	'I': ActionInsertLineStart,
	'a': ActionAppend,
	'A': ActionAppendLineEnd,
	'o': ActionOpenBelow,
	'O': ActionOpenAbove,
	'v': ActionVisual,
	'V': ActionVisualLine,
	'p': ActionPutAfter,
	'P': ActionPutBefore,
	'J': ActionJoinLines,
	'u': ActionUndo,
	'.': ActionRepeat,
	'n': ActionSearchNext,
	'N': ActionSearchPrev,
}

// shorthand keys expand to an operator and a motion (x is dl).
var shorthand = map[rune]struct {
	op     *Operator
	motion *Motion
	line   bool
}{
	'x': {&OpDelete, &MotionRight, false},
	'X': {&OpDelete, &MotionLeft, false},
	's': {&OpChange, &MotionRight, false},
	'D': {&OpDelete, &MotionLineEnd, false},
	'C': {&OpChange, &MotionLineEnd, false},
	'Y': {&OpYank, nil, true},
}

// Command represents a parsed command.
type Command struct {
	// Count is the repeat count (0 means none was typed).
	Count int

	// Register is the register named with ", or 0 for the default.
	Register rune

	// Operator is the operator, if any.
	Operator *Operator

	// Motion is the motion, if any.
	Motion *Motion

	// Char is the argument of f/F/t/T and r.
	Char string

	// Linewise marks a doubled operator (dd, yy, cc).
	Linewise bool

	// Object is the text object, if any.
	Object *TextObject

	// Inner selects the inner variant of Object (i rather than a).
	Inner bool

	// Action is the action to dispatch.
	Action string
}

// GetCount returns the effective count (1 if none specified).
func (c *Command) GetCount() int {
	if c.Count <= 0 {
		return 1
	}
	return c.Count
}

// ChangesText reports whether running the command can edit the buffer.
// Such commands are the ones '.' repeats.
func (c *Command) ChangesText() bool {
	if c.Operator != nil {
		return c.Operator.ChangesText
	}
	switch c.Action {
	case ActionInsert, ActionInsertLineStart, ActionAppend, ActionAppendLineEnd,
		ActionOpenBelow, ActionOpenAbove, ActionPutAfter, ActionPutBefore,
		ActionJoinLines, ActionReplaceChar:
		return true
	}
	return false
}

// ParseResult contains the result of parsing a key event.
type ParseResult struct {
	// Status indicates the parse result.
	Status ParseStatus

	// Command is the parsed command (if Status == StatusComplete).
	Command *Command

	// PendingDisplay shows the pending keys for the status line.
	PendingDisplay string
}

// Parser turns Normal-mode key sequences into commands:
//
//	[count]["x][operator][count](motion | operator | textobject)
//	[count]["x]action
type Parser struct {
	state ParseState

	count1     CountState // before the operator
	count2     CountState // after the operator
	register   rune
	operator   *Operator
	charSearch *Motion
	inner      bool

	pendingKeys []rune
}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{
		state:       StateInitial,
		pendingKeys: make([]rune, 0, 8),
	}
}

// Reset clears all pending state.
func (p *Parser) Reset() {
	p.state = StateInitial
	p.count1.Reset()
	p.count2.Reset()
	p.register = 0
	p.operator = nil
	p.charSearch = nil
	p.inner = false
	p.pendingKeys = p.pendingKeys[:0]
}

// BeginTextObject starts a text object without an operator, as Visual mode
// does for iw or a(. The next key completes it with ActionSelectObject.
func (p *Parser) BeginTextObject(inner bool) {
	r := 'a'
	if inner {
		r = 'i'
	}
	p.pendingKeys = append(p.pendingKeys, r)
	p.inner = inner
	p.state = StateTextObject
}

// State returns the current parser state.
func (p *Parser) State() ParseState {
	return p.state
}

// Idle reports whether no key of a command has been typed.
func (p *Parser) Idle() bool {
	return p.state == StateInitial && len(p.pendingKeys) == 0
}

// Register returns the register named so far, or 0.
func (p *Parser) Register() rune {
	return p.register
}

// PendingKeys returns the keys typed so far.
func (p *Parser) PendingKeys() string {
	return string(p.pendingKeys)
}

// Parse processes a key event.
func (p *Parser) Parse(event key.Event) ParseResult {
	if event.Key == key.KeyEscape {
		p.Reset()
		return ParseResult{Status: StatusPassthrough}
	}

	if event.IsCtrl('r') && (p.state == StateInitial || p.state == StateCount) {
		cmd := p.buildBaseCommand()
		cmd.Action = ActionRedo
		return p.complete(cmd)
	}

	if !event.IsRune() || event.IsModified() {
		if m := arrowMotion(event); m != nil && !event.IsModified() {
			return p.acceptMotion(m)
		}
		if !p.Idle() {
			return p.invalid()
		}
		return ParseResult{Status: StatusPassthrough}
	}

	r := event.Rune
	p.pendingKeys = append(p.pendingKeys, r)

	switch p.state {
	case StateInitial:
		return p.parseInitial(r)
	case StateCount:
		return p.parseCount(r)
	case StateRegister:
		return p.parseRegister(r)
	case StateOperator:
		return p.parseOperator(r)
	case StateOperatorCount:
		return p.parseOperatorCount(r)
	case StateGPrefix:
		return p.parseGPrefix(r)
	case StateCharSearch:
		return p.parseCharSearch(r)
	case StateReplaceChar:
		return p.parseReplaceChar(r)
	case StateTextObject:
		return p.parseTextObject(r)
	default:
		return p.invalid()
	}
}

func arrowMotion(event key.Event) *Motion {
	switch event.Key {
	case key.KeyLeft:
		return &MotionLeft
	case key.KeyRight:
		return &MotionRight
	case key.KeyUp:
		return &MotionUp
	case key.KeyDown:
		return &MotionDown
	case key.KeyHome:
		return &MotionLineStart
	case key.KeyEnd:
		return &MotionLineEnd
	}
	return nil
}

// acceptMotion completes a motion typed as a special key.
func (p *Parser) acceptMotion(m *Motion) ParseResult {
	switch p.state {
	case StateInitial, StateCount, StateOperator, StateOperatorCount:
		return p.completeMotion(m, "")
	}
	return p.invalid()
}

func (p *Parser) pending() ParseResult {
	return ParseResult{Status: StatusPending, PendingDisplay: p.PendingKeys()}
}

func (p *Parser) invalid() ParseResult {
	p.Reset()
	return ParseResult{Status: StatusInvalid}
}

func (p *Parser) parseInitial(r rune) ParseResult {
	if IsCountStart(r) {
		p.state = StateCount
		p.count1.AccumulateDigit(r)
		return p.pending()
	}
	return p.parseCommandStart(r)
}

// parseCommandStart handles the first key after any count or register.
func (p *Parser) parseCommandStart(r rune) ParseResult {
	switch {
	case r == '"':
		// A second register prefix replaces the first, as in "a"byy.
		p.state = StateRegister
		return p.pending()
	case r == 'g':
		p.state = StateGPrefix
		return p.pending()
	case r == 'r':
		p.state = StateReplaceChar
		return p.pending()
	case IsOperator(r):
		p.operator = GetOperator(r)
		p.state = StateOperator
		return p.pending()
	case IsCharSearchMotion(r):
		p.charSearch = GetMotion(r)
		p.state = StateCharSearch
		return p.pending()
	}

	if m := GetMotion(r); m != nil {
		return p.completeMotion(m, "")
	}
	if s, ok := shorthand[r]; ok {
		cmd := p.buildBaseCommand()
		cmd.Operator = s.op
		if s.line {
			cmd.Linewise = true
			cmd.Action = s.op.LinewiseAction
		} else {
			cmd.Motion = s.motion
			cmd.Action = s.op.Action
		}
		return p.complete(cmd)
	}
	if action, ok := simpleActions[r]; ok {
		cmd := p.buildBaseCommand()
		cmd.Action = action
		return p.complete(cmd)
	}

	if p.state == StateInitial && len(p.pendingKeys) == 1 {
		p.pendingKeys = p.pendingKeys[:0]
		return ParseResult{Status: StatusPassthrough}
	}
	return p.invalid()
}

func (p *Parser) parseCount(r rune) ParseResult {
	if IsCountDigit(r) {
		p.count1.AccumulateDigit(r)
		return p.pending()
	}
	p.state = StateInitial
	return p.parseCommandStart(r)
}

func (p *Parser) parseRegister(r rune) ParseResult {
	if !IsValidRegister(r) {
		return p.invalid()
	}
	p.register = r
	p.state = StateInitial
	return p.pending()
}

func (p *Parser) parseOperator(r rune) ParseResult {
	if IsCountStart(r) {
		p.state = StateOperatorCount
		p.count2.AccumulateDigit(r)
		return p.pending()
	}
	return p.parseOperatorTarget(r)
}

func (p *Parser) parseOperatorCount(r rune) ParseResult {
	if IsCountDigit(r) {
		p.count2.AccumulateDigit(r)
		return p.pending()
	}
	return p.parseOperatorTarget(r)
}

// parseOperatorTarget handles the key that completes an operator.
func (p *Parser) parseOperatorTarget(r rune) ParseResult {
	switch {
	case r == p.operator.Key:
		cmd := p.buildBaseCommand()
		cmd.Operator = p.operator
		cmd.Linewise = true
		cmd.Action = p.operator.LinewiseAction
		return p.complete(cmd)
	case r == 'g':
		p.state = StateGPrefix
		return p.pending()
	case IsCharSearchMotion(r):
		p.charSearch = GetMotion(r)
		p.state = StateCharSearch
		return p.pending()
	case IsTextObjectPrefix(r):
		p.inner = r == 'i'
		p.state = StateTextObject
		return p.pending()
	}
	if m := GetMotion(r); m != nil {
		return p.completeMotion(m, "")
	}
	return p.invalid()
}

func (p *Parser) parseTextObject(r rune) ParseResult {
	obj := GetTextObject(r)
	if obj == nil {
		return p.invalid()
	}
	cmd := p.buildBaseCommand()
	cmd.Object = obj
	cmd.Inner = p.inner
	if p.operator != nil {
		cmd.Operator = p.operator
		cmd.Action = p.operator.Action
	} else {
		cmd.Action = ActionSelectObject
	}
	return p.complete(cmd)
}

func (p *Parser) parseGPrefix(r rune) ParseResult {
	if m, ok := gMotions[r]; ok {
		return p.completeMotion(m, "")
	}
	return p.invalid()
}

func (p *Parser) parseCharSearch(r rune) ParseResult {
	return p.completeMotion(p.charSearch, string(r))
}

func (p *Parser) parseReplaceChar(r rune) ParseResult {
	cmd := p.buildBaseCommand()
	cmd.Action = ActionReplaceChar
	cmd.Char = string(r)
	return p.complete(cmd)
}

// completeMotion finishes a bare motion or an operator with its motion.
func (p *Parser) completeMotion(m *Motion, char string) ParseResult {
	cmd := p.buildBaseCommand()
	cmd.Motion = m
	cmd.Char = char
	if p.operator != nil {
		cmd.Operator = p.operator
		cmd.Action = p.operator.Action
	} else {
		cmd.Action = ActionMove
	}
	return p.complete(cmd)
}

func (p *Parser) complete(cmd *Command) ParseResult {
	p.Reset()
	return ParseResult{Status: StatusComplete, Command: cmd}
}

func (p *Parser) buildBaseCommand() *Command {
	return &Command{
		Count:    CombineCounts(p.count1, p.count2),
		Register: p.register,
	}
}
