package mode

import (
	"fmt"
	"time"

	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/input/key"
	"github.com/dshills/accepted/internal/input/vim"
)

// DefaultPrefixTimeout is how long the Space prefix waits for its key.
const DefaultPrefixTimeout = time.Second

// ModeChangeCallback is called when the mode changes.
type ModeChangeCallback func(from, to Mode)

// Option configures a Machine.
type Option func(*Machine)

// WithPrefixTimeout sets how long the Space prefix stays armed.
func WithPrefixTimeout(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.prefixTimeout = d
		}
	}
}

// WithRegisters shares a register store between machines.
func WithRegisters(rs *vim.RegisterStore) Option {
	return func(m *Machine) {
		if rs != nil {
			m.registers = rs
		}
	}
}

// WithClipboard connects the + and * registers to a clipboard.
func WithClipboard(c vim.ClipboardProvider) Option {
	return func(m *Machine) {
		m.clipboard = c
	}
}

// WithAutoPairs turns bracket and quote pairing in Insert mode on or off.
// It is on by default.
func WithAutoPairs(on bool) Option {
	return func(m *Machine) {
		m.autoPairs = on
	}
}

// Machine is the modal input state machine for one document. It turns key
// events into document edits and Effects. It is not safe for concurrent
// use and never blocks.
type Machine struct {
	doc       *engine.Document
	registers *vim.RegisterStore
	clipboard vim.ClipboardProvider
	parser    *vim.Parser

	modes     map[string]Mode
	current   Mode
	previous  Mode
	callbacks []ModeChangeCallback

	prefixTimeout time.Duration
	prefixAt      time.Time
	prefixActive  bool

	autoPairs bool

	lastChange *change
	recording  *change
	replaying  bool

	completion *Completion
	cmdline    *CommandMode
	lastSearch string

	effects []Effect
}

// change is what '.' repeats: the command and the Insert session it opened.
type change struct {
	cmd   *vim.Command
	steps []insertStep
}

// insertStep is one recorded Insert-mode action. A step with text is an
// accepted completion that erased erase graphemes before the cursor.
type insertStep struct {
	ev    key.Event
	text  string
	erase int
}

// New creates a machine editing doc, starting in Normal mode.
func New(doc *engine.Document, opts ...Option) *Machine {
	m := &Machine{
		doc:           doc,
		parser:        vim.NewParser(),
		modes:         make(map[string]Mode),
		prefixTimeout: DefaultPrefixTimeout,
		autoPairs:     true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registers == nil {
		m.registers = vim.NewRegisterStore()
	}
	if m.clipboard != nil {
		m.registers.SetClipboard(m.clipboard)
	}

	m.cmdline = NewCommandMode()
	for _, mode := range []Mode{
		NewNormalMode(),
		NewInsertMode(),
		NewVisualMode(),
		NewVisualLineMode(),
		m.cmdline,
	} {
		m.modes[mode.Name()] = mode
	}
	m.current = m.modes[ModeNormal]
	m.current.Enter(m)
	return m
}

// HandleKey feeds one key event to the current mode and returns the effects
// it produced.
func (m *Machine) HandleKey(ev key.Event) []Effect {
	m.effects = nil
	m.current.HandleKey(m, ev)
	if m.current.Name() == ModeNormal {
		m.doc.ClampCursorNormal()
	}
	effects := m.effects
	m.effects = nil
	return effects
}

func (m *Machine) emit(kind EffectKind, arg string) {
	m.effects = append(m.effects, Effect{Kind: kind, Arg: arg})
}

func (m *Machine) notice(format string, args ...any) {
	m.emit(EffectNotice, fmt.Sprintf(format, args...))
}

// Switch changes to the named mode, calling Exit on the current mode and
// Enter on the new one.
func (m *Machine) Switch(name string) error {
	next, ok := m.modes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	old := m.current
	old.Exit(m)
	m.previous = old
	m.current = next
	next.Enter(m)
	for _, cb := range m.callbacks {
		if cb != nil {
			cb(old, next)
		}
	}
	return nil
}

// OnChange registers a callback for mode changes.
func (m *Machine) OnChange(cb ModeChangeCallback) {
	m.callbacks = append(m.callbacks, cb)
}

// Document returns the document being edited.
func (m *Machine) Document() *engine.Document {
	return m.doc
}

// Registers returns the register store.
func (m *Machine) Registers() *vim.RegisterStore {
	return m.registers
}

// Current returns the current mode.
func (m *Machine) Current() Mode {
	return m.current
}

// Mode returns the current mode name.
func (m *Machine) Mode() string {
	return m.current.Name()
}

// IsMode reports whether the current mode is one of names.
func (m *Machine) IsMode(names ...string) bool {
	for _, n := range names {
		if m.current.Name() == n {
			return true
		}
	}
	return false
}

// CursorStyle returns the cursor style to draw.
func (m *Machine) CursorStyle() CursorStyle {
	switch m.parser.State() {
	case vim.StateCharSearch, vim.StateReplaceChar:
		return CursorUnderline
	}
	return m.current.CursorStyle()
}

// PendingKeys returns the keys of an unfinished command for the status line.
func (m *Machine) PendingKeys() string {
	if m.prefixActive {
		return "<Space>"
	}
	return m.parser.PendingKeys()
}

// ExpirePrefix disarms the Space prefix when it has waited longer than the
// timeout at now. It reports whether the prefix was disarmed.
func (m *Machine) ExpirePrefix(now time.Time) bool {
	if !m.prefixActive || now.Sub(m.prefixAt) <= m.prefixTimeout {
		return false
	}
	m.prefixActive = false
	return true
}

// PrefixDeadline returns when an armed Space prefix expires.
func (m *Machine) PrefixDeadline() (time.Time, bool) {
	if !m.prefixActive {
		return time.Time{}, false
	}
	return m.prefixAt.Add(m.prefixTimeout), true
}

// CommandLine returns the command-line text and cursor while in Command mode.
func (m *Machine) CommandLine() (text string, cursor int, ok bool) {
	if m.current != Mode(m.cmdline) {
		return "", 0, false
	}
	return m.cmdline.Buffer(), m.cmdline.CursorPos(), true
}

// CommandPrompt returns the prompt of the command line, PromptCommand when
// it is closed.
func (m *Machine) CommandPrompt() Prompt {
	return m.cmdline.Prompt()
}

// OpenCommandLine enters Command mode with text already typed.
func (m *Machine) OpenCommandLine(text string) {
	m.openPrompt(PromptCommand, text)
}

// openPrompt enters Command mode under prompt with text already typed.
func (m *Machine) openPrompt(prompt Prompt, text string) {
	m.parser.Reset()
	m.prefixActive = false
	if m.current == Mode(m.cmdline) {
		m.cmdline.prompt = prompt
		m.cmdline.SetBuffer(text)
		return
	}
	m.cmdline.prefill = text
	m.cmdline.prompt = prompt
	_ = m.Switch(ModeCommand)
}

// record appends an Insert-mode step to the change being recorded.
func (m *Machine) record(step insertStep) {
	if m.recording != nil && !m.replaying {
		m.recording.steps = append(m.recording.steps, step)
	}
}

// repeat re-runs the last change. A count replaces the recorded one.
func (m *Machine) repeat(count int) {
	last := m.lastChange
	if last == nil {
		return
	}
	cmd := *last.cmd
	if count > 0 {
		cmd.Count = count
		last.cmd = &cmd
	}

	m.replaying = true
	defer func() { m.replaying = false }()

	m.execute(&cmd)
	if m.current.Name() != ModeInsert {
		return
	}
	insert := m.current
	for _, step := range last.steps {
		if step.text != "" {
			m.insertCompletion(step.text, step.erase)
			continue
		}
		insert.HandleKey(m, step.ev)
	}
	m.leaveInsert()
}
