package mode

import (
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/input/key"
	"github.com/dshills/accepted/internal/input/vim"
)

// prefixCommands maps the key after Space to an effect. 'a' (save as) opens
// the command line instead.
var prefixCommands = map[rune]EffectKind{
	' ': EffectFormat,
	'q': EffectQuit,
	's': EffectSave,
	'y': EffectCopyAll,
	't': EffectTest,
	'T': EffectTestOptimized,
	'l': EffectStartLSP,
	'c': EffectCompile,
	'k': EffectCancelJob,
}

// NormalMode implements Normal mode. Keys are parsed into commands by the
// machine's vim.Parser; Space and ':' start prefix commands and the
// command line.
type NormalMode struct{}

// NewNormalMode creates a new normal mode instance.
func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

// Name returns the mode identifier.
func (n *NormalMode) Name() string {
	return ModeNormal
}

// DisplayName returns the human-readable mode name.
func (n *NormalMode) DisplayName() string {
	return "NORMAL"
}

// CursorStyle returns the cursor style for normal mode.
func (n *NormalMode) CursorStyle() CursorStyle {
	return CursorBlock
}

// Enter is called when entering normal mode.
func (n *NormalMode) Enter(m *Machine) {
	m.parser.Reset()
	m.doc.ClearSelection()
	m.doc.ClampCursorNormal()
}

// Exit is called when leaving normal mode.
func (n *NormalMode) Exit(m *Machine) {
	m.parser.Reset()
	m.prefixActive = false
}

// HandleKey interprets one key in normal mode.
func (n *NormalMode) HandleKey(m *Machine, ev key.Event) {
	if m.prefixActive {
		m.prefixActive = false
		if ev.Timestamp.Sub(m.prefixAt) <= m.prefixTimeout {
			m.runPrefix(ev)
			return
		}
	}

	if m.parser.Idle() && ev.IsChar() {
		switch ev.Rune {
		case ' ':
			m.prefixActive = true
			m.prefixAt = ev.Timestamp
			return
		case ':':
			_ = m.Switch(ModeCommand)
			return
		case '/':
			m.openPrompt(PromptSearch, "")
			return
		}
	}

	res := m.parser.Parse(ev)
	if res.Status != vim.StatusComplete {
		return
	}
	m.run(res.Command)
}

// run executes a parsed command, recording it for '.' when it edits.
func (m *Machine) run(cmd *vim.Command) {
	recordable := cmd.ChangesText() && !m.replaying
	if recordable {
		m.lastChange = &change{cmd: cmd}
	}
	m.execute(cmd)
	if recordable && m.current.Name() == ModeInsert {
		m.recording = m.lastChange
	}
}

func (m *Machine) runPrefix(ev key.Event) {
	if !ev.IsChar() {
		return
	}
	if ev.Rune == 'a' {
		m.OpenCommandLine("saveas " + m.doc.Path())
		return
	}
	if kind, ok := prefixCommands[ev.Rune]; ok {
		m.emit(kind, "")
	}
}

// execute performs a Normal-mode command.
func (m *Machine) execute(cmd *vim.Command) {
	doc := m.doc
	cur := doc.Cursor()

	switch cmd.Action {
	case vim.ActionMove:
		doc.MoveCursor(cmd.Motion.Engine(cmd.Char), cmd.Count)

	case vim.ActionDelete, vim.ActionChange, vim.ActionYank:
		m.operate(cmd)

	case vim.ActionDeleteLine, vim.ActionChangeLine, vim.ActionYankLine:
		last := min(cur.Line+cmd.GetCount()-1, doc.LineCount()-1)
		m.applyLines(cmd.Operator, cmd.Register, cur.Line, last)

	case vim.ActionInsert:
		m.startInsert(nil)

	case vim.ActionInsertLineStart:
		m.startInsert(func() {
			doc.MoveCursor(engine.Motion{Kind: engine.MotionFirstNonBlank}, 0)
		})

	case vim.ActionAppend:
		m.startInsert(func() {
			if doc.LineLen(cur.Line) > 0 {
				doc.SetCursor(engine.Point{Line: cur.Line, Col: cur.Col + 1})
			}
		})

	case vim.ActionAppendLineEnd:
		m.startInsert(func() {
			doc.SetCursor(engine.Point{Line: cur.Line, Col: doc.LineLen(cur.Line)})
		})

	case vim.ActionOpenBelow:
		m.startInsert(func() {
			indent := doc.NextIndent(cur.Line)
			doc.Insert(engine.Point{Line: cur.Line, Col: doc.LineLen(cur.Line)}, "\n"+indent)
		})

	case vim.ActionOpenAbove:
		m.startInsert(func() {
			indent := leadingWhitespace(doc.Line(cur.Line))
			at := engine.Point{Line: cur.Line}
			doc.Insert(at, indent+"\n")
			doc.SetCursor(engine.Point{Line: cur.Line, Col: graphemeLen(indent)})
		})

	case vim.ActionVisual:
		_ = m.Switch(ModeVisual)

	case vim.ActionVisualLine:
		_ = m.Switch(ModeVisualLine)

	case vim.ActionPutAfter, vim.ActionPutBefore:
		m.put(cmd.Register, cmd.GetCount(), cmd.Action == vim.ActionPutAfter)

	case vim.ActionJoinLines:
		m.joinLines(max(cmd.GetCount(), 2))

	case vim.ActionReplaceChar:
		m.replaceChars(cmd.Char, cmd.GetCount())

	case vim.ActionUndo:
		for i := 0; i < cmd.GetCount(); i++ {
			if !doc.Undo() {
				break
			}
		}

	case vim.ActionRedo:
		for i := 0; i < cmd.GetCount(); i++ {
			if !doc.Redo() {
				break
			}
		}

	case vim.ActionRepeat:
		m.repeat(cmd.Count)

	case vim.ActionSearchNext, vim.ActionSearchPrev:
		m.searchNext(cmd.GetCount(), cmd.Action == vim.ActionSearchPrev)
	}
}
