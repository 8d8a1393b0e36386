package vim

import (
	"strings"
	"sync"
	"unicode"
)

// RegisterType categorizes registers.
type RegisterType uint8

const (
	// RegisterUnnamed is the default register (").
	RegisterUnnamed RegisterType = iota

	// RegisterNamed are a-z; A-Z append to them.
	RegisterNamed

	// RegisterLastYank is register 0.
	RegisterLastYank

	// RegisterNumbered are 1-9, shifted by each multi-line delete.
	RegisterNumbered

	// RegisterSmallDelete (-) holds deletes within one line.
	RegisterSmallDelete

	// RegisterBlackHole (_) discards what is written to it.
	RegisterBlackHole

	// RegisterClipboard (+ and *) reads and writes the system clipboard.
	RegisterClipboard
)

// Register holds text and whether it was cut as whole lines.
type Register struct {
	Name     rune
	Type     RegisterType
	Content  string
	Linewise bool
}

// ClipboardProvider is the system clipboard as the registers see it.
type ClipboardProvider interface {
	Read() (string, error)
	Write(text string) error
}

// RegisterStore holds every register.
type RegisterStore struct {
	mu        sync.RWMutex
	registers map[rune]*Register
	numbered  [9]*Register
	clipboard ClipboardProvider
}

// NewRegisterStore creates a register store.
func NewRegisterStore() *RegisterStore {
	rs := &RegisterStore{registers: make(map[rune]*Register)}

	rs.registers['"'] = &Register{Name: '"', Type: RegisterUnnamed}
	for r := 'a'; r <= 'z'; r++ {
		rs.registers[r] = &Register{Name: r, Type: RegisterNamed}
	}
	rs.registers['0'] = &Register{Name: '0', Type: RegisterLastYank}
	for i := 1; i <= 9; i++ {
		r := rune('0' + i)
		rs.registers[r] = &Register{Name: r, Type: RegisterNumbered}
		rs.numbered[i-1] = rs.registers[r]
	}
	rs.registers['-'] = &Register{Name: '-', Type: RegisterSmallDelete}
	rs.registers['_'] = &Register{Name: '_', Type: RegisterBlackHole}
	return rs
}

// SetClipboard connects the + and * registers to a clipboard.
func (rs *RegisterStore) SetClipboard(c ClipboardProvider) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.clipboard = c
}

func (rs *RegisterStore) clipboardProvider() ClipboardProvider {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.clipboard
}

// Get returns the content of a register and whether it is linewise.
// Name 0 reads the unnamed register. Clipboard text ending in a newline
// reads as linewise.
func (rs *RegisterStore) Get(name rune) (string, bool) {
	if name == 0 {
		name = '"'
	}
	if name == '+' || name == '*' {
		c := rs.clipboardProvider()
		if c == nil {
			return "", false
		}
		text, err := c.Read()
		if err != nil {
			return "", false
		}
		text = strings.ReplaceAll(text, "\r\n", "\n")
		return text, strings.HasSuffix(text, "\n")
	}

	name = unicode.ToLower(name)

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	reg, ok := rs.registers[name]
	if !ok {
		return "", false
	}
	return reg.Content, reg.Linewise
}

// Set stores content in one register. Uppercase names append to the
// lowercase register. It returns the clipboard error for + and *.
func (rs *RegisterStore) Set(name rune, content string, linewise bool) error {
	if name == '_' {
		return nil
	}
	if name == '+' || name == '*' {
		if c := rs.clipboardProvider(); c != nil {
			return c.Write(content)
		}
		return nil
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	appendMode := unicode.IsUpper(name)
	name = unicode.ToLower(name)

	reg, ok := rs.registers[name]
	if !ok {
		return nil
	}
	if appendMode && reg.Type == RegisterNamed && reg.Content != "" {
		switch {
		case reg.Linewise && !strings.HasSuffix(reg.Content, "\n"):
			reg.Content += "\n" + content
		default:
			reg.Content += content
		}
		reg.Linewise = reg.Linewise || linewise
		return nil
	}
	reg.Content = content
	reg.Linewise = linewise
	return nil
}

// Yank records yanked text. With no register named it goes to 0 and the
// unnamed register; otherwise to the named register and the unnamed one.
func (rs *RegisterStore) Yank(name rune, content string, linewise bool) error {
	if name == '_' {
		return nil
	}
	if name == 0 || name == '"' {
		rs.store('0', content, linewise)
		rs.store('"', content, linewise)
		return nil
	}
	err := rs.Set(name, content, linewise)
	rs.store('"', content, linewise)
	return err
}

// Delete records deleted text. Without a named register, deletes within a
// line go to -, others shift 1-9 and land in 1.
func (rs *RegisterStore) Delete(name rune, content string, linewise bool) error {
	if name == '_' {
		return nil
	}
	if name != 0 && name != '"' {
		err := rs.Set(name, content, linewise)
		rs.store('"', content, linewise)
		return err
	}

	rs.mu.Lock()
	if !linewise && !strings.Contains(content, "\n") {
		set(rs.registers['-'], content, linewise)
	} else {
		for i := len(rs.numbered) - 1; i > 0; i-- {
			set(rs.numbered[i], rs.numbered[i-1].Content, rs.numbered[i-1].Linewise)
		}
		set(rs.numbered[0], content, linewise)
	}
	set(rs.registers['"'], content, linewise)
	rs.mu.Unlock()
	return nil
}

func (rs *RegisterStore) store(name rune, content string, linewise bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	set(rs.registers[name], content, linewise)
}

func set(reg *Register, content string, linewise bool) {
	reg.Content = content
	reg.Linewise = linewise
}

// GetRegisterType returns the type of the register called name.
func GetRegisterType(name rune) RegisterType {
	switch {
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z':
		return RegisterNamed
	case name == '0':
		return RegisterLastYank
	case name >= '1' && name <= '9':
		return RegisterNumbered
	case name == '-':
		return RegisterSmallDelete
	case name == '_':
		return RegisterBlackHole
	case name == '+', name == '*':
		return RegisterClipboard
	default:
		return RegisterUnnamed
	}
}

// IsValidRegister reports whether name can follow ".
func IsValidRegister(name rune) bool {
	switch {
	case name == '"':
		return true
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z':
		return true
	case name >= '0' && name <= '9':
		return true
	case name == '-', name == '_', name == '+', name == '*':
		return true
	default:
		return false
	}
}
