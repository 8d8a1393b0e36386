package mode

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/input/key"
)

// Prompt is the character that opened the command line.
type Prompt rune

const (
	// PromptCommand reads an editor command.
	PromptCommand Prompt = ':'

	// PromptSearch reads a search pattern.
	PromptSearch Prompt = '/'
)

// CommandMode implements the ':' command line and the '/' search prompt.
// Each prompt keeps its own history.
type CommandMode struct {
	prompt Prompt

	// buffer holds the command being typed.
	buffer []rune

	// cursorPos is the cursor position within the command buffer.
	cursorPos int

	// history holds previous commands.
	history []string

	// searches holds previous search patterns.
	searches []string

	// historyIndex is the current position in history (-1 = current input).
	historyIndex int

	// savedBuffer holds the buffer when navigating history.
	savedBuffer []rune

	// prefill is typed into the buffer on the next Enter.
	prefill string
}

// NewCommandMode creates a new command mode instance.
func NewCommandMode() *CommandMode {
	return &CommandMode{
		prompt:       PromptCommand,
		buffer:       make([]rune, 0, 64),
		history:      make([]string, 0, 32),
		historyIndex: -1,
	}
}

// Name returns the mode identifier.
func (c *CommandMode) Name() string {
	return ModeCommand
}

// DisplayName returns the human-readable mode name.
func (c *CommandMode) DisplayName() string {
	return "COMMAND"
}

// CursorStyle returns the cursor style for command mode.
func (c *CommandMode) CursorStyle() CursorStyle {
	return CursorBar
}

// Enter clears the command line, or fills it with a prefill.
func (c *CommandMode) Enter(m *Machine) {
	c.SetBuffer(c.prefill)
	c.prefill = ""
	c.historyIndex = -1
	c.savedBuffer = nil
}

// Exit puts the command prompt back for the next ':'.
func (c *CommandMode) Exit(m *Machine) {
	c.prompt = PromptCommand
}

// Prompt returns the active prompt.
func (c *CommandMode) Prompt() Prompt {
	return c.prompt
}

// HandleKey edits the command line and runs it on Enter.
func (c *CommandMode) HandleKey(m *Machine, ev key.Event) {
	switch ev.Key {
	case key.KeyEscape:
		_ = m.Switch(ModeNormal)
	case key.KeyEnter:
		line, prompt := c.Buffer(), c.prompt
		c.AddToHistory(line)
		_ = m.Switch(ModeNormal)
		if prompt == PromptSearch {
			m.search(line)
			return
		}
		m.runCommandLine(line)
	case key.KeyBackspace:
		if len(c.buffer) == 0 {
			_ = m.Switch(ModeNormal)
			return
		}
		c.Backspace()
	case key.KeyDelete:
		c.Delete()
	case key.KeyLeft:
		c.MoveLeft()
	case key.KeyRight:
		c.MoveRight()
	case key.KeyHome:
		c.cursorPos = 0
	case key.KeyEnd:
		c.cursorPos = len(c.buffer)
	case key.KeyUp:
		c.HistoryPrev()
	case key.KeyDown:
		c.HistoryNext()
	case key.KeyRune:
		if ev.IsRune() && !ev.IsModified() && unicode.IsPrint(ev.Rune) {
			c.insertRune(ev.Rune)
		}
	}
}

// runCommandLine executes a command typed after ':'.
func (m *Machine) runCommandLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "w":
		m.save(arg)
	case "q":
		m.emit(EffectQuit, "")
	case "q!":
		m.emit(EffectForceQuit, "")
	case "wq", "x":
		m.save(arg)
		m.emit(EffectQuit, "")
	case "saveas":
		if arg == "" {
			m.notice("saveas: file name required")
			return
		}
		m.emit(EffectSaveAs, arg)
	case "fmt":
		m.emit(EffectFormat, "")
	case "make":
		m.emit(EffectCompile, "")
	case "test":
		m.emit(EffectTest, "")
	case "test!":
		m.emit(EffectTestOptimized, "")
	case "lsp":
		m.emit(EffectStartLSP, "")
	case "lsprestart":
		m.emit(EffectRestartLSP, "")
	default:
		if n, err := strconv.Atoi(name); err == nil && arg == "" {
			m.doc.MoveCursor(engine.Motion{Kind: engine.MotionDocumentStart}, max(n, 1))
			return
		}
		m.notice("not an editor command: %s", line)
	}
}

func (m *Machine) save(path string) {
	if path != "" {
		m.emit(EffectSaveAs, path)
		return
	}
	m.emit(EffectSave, "")
}

// insertRune inserts a character at the cursor position.
func (c *CommandMode) insertRune(r rune) {
	if c.cursorPos >= len(c.buffer) {
		c.buffer = append(c.buffer, r)
	} else {
		c.buffer = append(c.buffer[:c.cursorPos+1], c.buffer[c.cursorPos:]...)
		c.buffer[c.cursorPos] = r
	}
	c.cursorPos++
}

// Buffer returns the current command buffer content.
func (c *CommandMode) Buffer() string {
	return string(c.buffer)
}

// SetBuffer sets the command buffer content and moves the cursor to its end.
func (c *CommandMode) SetBuffer(s string) {
	c.buffer = []rune(s)
	c.cursorPos = len(c.buffer)
}

// CursorPos returns the cursor position in the command buffer.
func (c *CommandMode) CursorPos() int {
	return c.cursorPos
}

// Backspace deletes the character before the cursor.
func (c *CommandMode) Backspace() bool {
	if c.cursorPos == 0 {
		return false
	}
	c.buffer = append(c.buffer[:c.cursorPos-1], c.buffer[c.cursorPos:]...)
	c.cursorPos--
	return true
}

// Delete deletes the character at the cursor.
func (c *CommandMode) Delete() bool {
	if c.cursorPos >= len(c.buffer) {
		return false
	}
	c.buffer = append(c.buffer[:c.cursorPos], c.buffer[c.cursorPos+1:]...)
	return true
}

// MoveLeft moves the cursor left.
func (c *CommandMode) MoveLeft() bool {
	if c.cursorPos == 0 {
		return false
	}
	c.cursorPos--
	return true
}

// MoveRight moves the cursor right.
func (c *CommandMode) MoveRight() bool {
	if c.cursorPos >= len(c.buffer) {
		return false
	}
	c.cursorPos++
	return true
}

// entries returns the history of the active prompt.
func (c *CommandMode) entries() *[]string {
	if c.prompt == PromptSearch {
		return &c.searches
	}
	return &c.history
}

// AddToHistory adds a line to the active prompt's history, skipping repeats
// of the last entry.
func (c *CommandMode) AddToHistory(cmd string) {
	h := c.entries()
	if cmd == "" {
		return
	}
	if len(*h) > 0 && (*h)[len(*h)-1] == cmd {
		return
	}
	*h = append(*h, cmd)
}

// HistoryPrev moves to the previous history entry.
func (c *CommandMode) HistoryPrev() bool {
	h := *c.entries()
	if len(h) == 0 {
		return false
	}

	switch {
	case c.historyIndex == -1:
		c.savedBuffer = append([]rune(nil), c.buffer...)
		c.historyIndex = len(h) - 1
	case c.historyIndex > 0:
		c.historyIndex--
	default:
		return false
	}

	c.SetBuffer(h[c.historyIndex])
	return true
}

// HistoryNext moves to the next history entry, restoring the typed text
// after the newest one.
func (c *CommandMode) HistoryNext() bool {
	if c.historyIndex == -1 {
		return false
	}

	h := *c.entries()
	c.historyIndex++
	if c.historyIndex >= len(h) {
		c.historyIndex = -1
		c.SetBuffer(string(c.savedBuffer))
		c.savedBuffer = nil
		return true
	}
	c.SetBuffer(h[c.historyIndex])
	return true
}

// History returns the history of the active prompt.
func (c *CommandMode) History() []string {
	return *c.entries()
}
