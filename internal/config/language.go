package config

import (
	"path/filepath"
	"strings"
)

// CompilerType selects how compiler output is parsed into diagnostics.
type CompilerType string

// Compiler output types.
const (
	// CompilerNone reports no diagnostics, only success or failure.
	CompilerNone CompilerType = ""
	// CompilerRustc reads rustc's --error-format=json lines.
	CompilerRustc CompilerType = "rustc"
	// CompilerGCC reads "file:line:col: level: message" lines.
	CompilerGCC CompilerType = "gcc"
	// CompilerClang is read the same way as gcc.
	CompilerClang CompilerType = "clang"
)

// Valid reports whether t is a known compiler type.
func (t CompilerType) Valid() bool {
	switch t {
	case CompilerNone, CompilerRustc, CompilerGCC, CompilerClang:
		return true
	}
	return false
}

// Compiler is the compile step for a language. Command and OptimizeOption
// may refer to $FILE_PATH, $FILE_STEM and $FILE_DIR.
type Compiler struct {
	Command        []string     `toml:"command" yaml:"command"`
	OptimizeOption []string     `toml:"optimize_option" yaml:"optimize_option"`
	Type           CompilerType `toml:"type" yaml:"type"`
}

// Args returns the command line, with the optimize options appended when
// optimized is set.
func (c *Compiler) Args(optimized bool) []string {
	args := append([]string(nil), c.Command...)
	if optimized {
		args = append(args, c.OptimizeOption...)
	}
	return args
}

// Language is the resolved configuration for one file type. Empty command
// slices mean the tool is not configured.
type Language struct {
	// Extension is the file extension without the dot; empty for files
	// without one.
	Extension string

	IndentWidth int
	HardTab     bool

	Compiler    *Compiler
	Formatter   []string
	LSP         []string
	TestCommand []string

	// Syntax names the highlighting language. It defaults to Extension.
	Syntax string

	// Snippets maps a trigger prefix to the text it expands to.
	Snippets map[string]string
}

// HasFormatter reports whether a formatter is configured.
func (l Language) HasFormatter() bool {
	return len(l.Formatter) > 0
}

// HasCompiler reports whether a compiler is configured.
func (l Language) HasCompiler() bool {
	return l.Compiler != nil && len(l.Compiler.Command) > 0
}

// HasLSP reports whether a language server is configured.
func (l Language) HasLSP() bool {
	return len(l.LSP) > 0
}

// Extension returns the extension of path without the dot.
func Extension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// languageFile is one [file.<ext>] or [file_default] table as written.
// Pointer fields distinguish unset from zero.
type languageFile struct {
	IndentWidth *int      `toml:"indent_width" yaml:"indent_width"`
	HardTab     *bool     `toml:"hard_tab" yaml:"hard_tab"`
	Compiler    *Compiler `toml:"compiler" yaml:"compiler"`
	Formatter   []string  `toml:"formatter" yaml:"formatter"`
	LSP         []string  `toml:"lsp" yaml:"lsp"`
	TestCommand []string  `toml:"test_command" yaml:"test_command"`
	Syntax      *string   `toml:"syntax" yaml:"syntax"`
	Snippets    []string  `toml:"snippets" yaml:"snippets"`
}

// fileConfig is a whole configuration file.
type fileConfig struct {
	File        map[string]*languageFile `toml:"file" yaml:"file"`
	FileDefault *languageFile            `toml:"file_default" yaml:"file_default"`

	// FileDefaultDashed accepts the older [file-default] spelling.
	FileDefaultDashed *languageFile `toml:"file-default" yaml:"file-default"`
}

func (f *fileConfig) fallback() *languageFile {
	if f.FileDefault != nil {
		return f.FileDefault
	}
	return f.FileDefaultDashed
}

func (f *fileConfig) validate() error {
	check := func(section string, l *languageFile) error {
		if l == nil {
			return nil
		}
		if l.IndentWidth != nil && *l.IndentWidth <= 0 {
			return &ValidationError{Section: section, Field: "indent_width", Value: *l.IndentWidth, Err: ErrInvalidIndent}
		}
		if c := l.Compiler; c != nil {
			if !c.Type.Valid() {
				return &ValidationError{Section: section, Field: "compiler.type", Value: c.Type, Err: ErrUnknownCompilerType}
			}
			if len(c.Command) == 0 {
				return &ValidationError{Section: section, Field: "compiler.command", Value: c.Command, Err: ErrEmptyCommand}
			}
		}
		for field, cmd := range map[string][]string{
			"formatter":    l.Formatter,
			"lsp":          l.LSP,
			"test_command": l.TestCommand,
		} {
			if cmd != nil && len(cmd) == 0 {
				return &ValidationError{Section: section, Field: field, Value: cmd, Err: ErrEmptyCommand}
			}
		}
		return nil
	}

	for ext, l := range f.File {
		if err := check("file."+ext, l); err != nil {
			return err
		}
	}
	if err := check("file_default", f.FileDefault); err != nil {
		return err
	}
	return check("file-default", f.FileDefaultDashed)
}
