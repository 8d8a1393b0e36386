package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed default_config.toml
var defaultConfig []byte

// Built-in values used when no layer sets them.
const (
	DefaultIndentWidth = 4
)

// Config holds the configuration layers, highest priority first.
type Config struct {
	path   string
	fsys   FileSystem
	layers []*layer
}

type layer struct {
	name string
	dir  string
	file *fileConfig
}

// Option configures Load.
type Option func(*Config)

// WithFS reads configuration and snippet files through fsys.
func WithFS(fsys FileSystem) Option {
	return func(c *Config) {
		if fsys != nil {
			c.fsys = fsys
		}
	}
}

// Default returns a configuration holding only the built-in layer.
func Default() *Config {
	c := &Config{fsys: OSFS{}}
	c.layers = []*layer{builtin()}
	return c
}

func builtin() *layer {
	f, err := decode("default_config.toml", defaultConfig, FormatTOML)
	if err != nil {
		panic(fmt.Sprintf("config: built-in defaults: %v", err))
	}
	return &layer{name: "builtin", file: f}
}

// Load reads the user configuration at path on top of the built-in layer.
// A missing file is not an error; the built-in layer is used alone.
func Load(path string, opts ...Option) (*Config, error) {
	c := Default()
	c.path = path
	for _, opt := range opts {
		opt(c)
	}
	if path == "" {
		return c, nil
	}

	f, err := readFile(c.fsys, path)
	if err != nil {
		return nil, err
	}
	if f != nil {
		user := &layer{name: "user", dir: filepath.Dir(path), file: f}
		c.layers = append([]*layer{user}, c.layers...)
	}
	return c, nil
}

// Parse builds a configuration from user data already in memory.
func Parse(data []byte, format Format) (*Config, error) {
	f, err := decode("<input>", data, format)
	if err != nil {
		return nil, err
	}
	c := Default()
	c.layers = append([]*layer{{name: "user", file: f}}, c.layers...)
	return c, nil
}

// Path returns the user configuration file, if any.
func (c *Config) Path() string {
	return c.path
}

// DefaultPath returns the user configuration file location:
// $XDG_CONFIG_HOME/acc/config.toml, falling back to ~/.config.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	base := filepath.Join(dir, "acc")
	for _, name := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(filepath.Join(base, name)); err == nil {
			return filepath.Join(base, name)
		}
	}
	return filepath.Join(base, "config.toml")
}

// Language resolves the settings for the file at path.
func (c *Config) Language(path string) Language {
	ext := Extension(path)
	lang := Language{
		Extension:   ext,
		IndentWidth: DefaultIndentWidth,
	}

	// Candidates in lookup order: per-layer extension table then fallback.
	var tables []*languageFile
	for _, l := range c.layers {
		if ext != "" {
			if t := l.file.File[ext]; t != nil {
				tables = append(tables, t)
			}
		}
		if t := l.file.fallback(); t != nil {
			tables = append(tables, t)
		}
	}

	if v := first(tables, func(t *languageFile) *int { return t.IndentWidth }); v != nil {
		lang.IndentWidth = *v
	}
	if v := first(tables, func(t *languageFile) *bool { return t.HardTab }); v != nil {
		lang.HardTab = *v
	}
	if v := first(tables, func(t *languageFile) *Compiler { return t.Compiler }); v != nil {
		lang.Compiler = &Compiler{
			Command:        append([]string(nil), v.Command...),
			OptimizeOption: append([]string(nil), v.OptimizeOption...),
			Type:           v.Type,
		}
	}
	lang.Formatter = firstSlice(tables, func(t *languageFile) []string { return t.Formatter })
	lang.LSP = firstSlice(tables, func(t *languageFile) []string { return t.LSP })
	lang.TestCommand = firstSlice(tables, func(t *languageFile) []string { return t.TestCommand })

	lang.Syntax = ext
	if v := first(tables, func(t *languageFile) *string { return t.Syntax }); v != nil {
		lang.Syntax = *v
	}

	lang.Snippets = c.snippets(ext)
	return lang
}

// snippets loads the snippet files of the user layer. Extension snippets
// override fallback snippets with the same prefix.
func (c *Config) snippets(ext string) map[string]string {
	out := make(map[string]string)
	for _, l := range c.layers {
		if l.name != "user" {
			continue
		}
		var paths []string
		if t := l.file.fallback(); t != nil {
			paths = append(paths, t.Snippets...)
		}
		if t := l.file.File[ext]; ext != "" && t != nil {
			paths = append(paths, t.Snippets...)
		}
		for _, p := range paths {
			set, err := loadSnippets(c.fsys, resolvePath(l.dir, p))
			if err != nil {
				continue
			}
			for k, v := range set {
				out[k] = v
			}
		}
	}
	return out
}

func first[T any](tables []*languageFile, get func(*languageFile) *T) *T {
	for _, t := range tables {
		if v := get(t); v != nil {
			return v
		}
	}
	return nil
}

func firstSlice(tables []*languageFile, get func(*languageFile) []string) []string {
	for _, t := range tables {
		if v := get(t); len(v) > 0 {
			return append([]string(nil), v...)
		}
	}
	return nil
}

// resolvePath expands a leading ~ and makes p relative to dir.
func resolvePath(dir, p string) string {
	if len(p) > 1 && p[0] == '~' && p[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}
