package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// mapFS is an in-memory FileSystem.
type mapFS map[string]string

func (m mapFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(s), nil
}

func TestBuiltinLayer(t *testing.T) {
	c := Default()

	cpp := c.Language("/tmp/a.cpp")
	require.Equal(t, "cpp", cpp.Extension)
	require.Equal(t, 4, cpp.IndentWidth)
	require.True(t, cpp.HasCompiler())
	require.Equal(t, CompilerGCC, cpp.Compiler.Type)
	require.Equal(t, []string{"clang-format"}, cpp.Formatter)
	require.Equal(t, "cpp", cpp.Syntax)

	rs := c.Language("main.rs")
	require.Equal(t, CompilerRustc, rs.Compiler.Type)
	require.Contains(t, rs.Compiler.Args(true), "-O")
	require.NotContains(t, rs.Compiler.Args(false), "-O")

	gofile := c.Language("x.go")
	require.True(t, gofile.HardTab)

	cc := c.Language("x.cc")
	require.Equal(t, "cpp", cc.Syntax)

	none := c.Language("README")
	require.Equal(t, "", none.Extension)
	require.Equal(t, 4, none.IndentWidth)
	require.False(t, none.HasCompiler())
	require.False(t, none.HasFormatter())
	require.False(t, none.HasLSP())
}

func TestLayerLookupOrder(t *testing.T) {
	c, err := Parse([]byte(`
[file_default]
indent_width = 8

[file.cpp]
formatter = ["my-format", "--style=file"]
test_command = ["./run.sh"]

[file.rs]
indent_width = 2
`), FormatTOML)
	require.NoError(t, err)

	cpp := c.Language("a.cpp")
	require.Equal(t, 8, cpp.IndentWidth, "user default beats built-in")
	require.Equal(t, []string{"my-format", "--style=file"}, cpp.Formatter, "user extension table wins")
	require.Equal(t, []string{"clangd"}, cpp.LSP, "unset fields fall through to built-in")
	require.Equal(t, []string{"./run.sh"}, cpp.TestCommand)
	require.Equal(t, CompilerGCC, cpp.Compiler.Type)

	rs := c.Language("a.rs")
	require.Equal(t, 2, rs.IndentWidth, "user extension beats user default")

	py := c.Language("a.py")
	require.Equal(t, 8, py.IndentWidth)
	require.Equal(t, []string{"python3", "$FILE_PATH"}, py.TestCommand)
}

func TestResolvedLanguageIsACopy(t *testing.T) {
	c := Default()
	a := c.Language("a.cpp")
	a.Compiler.Command[0] = "changed"
	a.Formatter[0] = "changed"

	b := c.Language("b.cpp")
	require.Equal(t, "g++", b.Compiler.Command[0])
	require.Equal(t, "clang-format", b.Formatter[0])
}

func TestDashedDefaultTable(t *testing.T) {
	c, err := Parse([]byte("[file-default]\nindent_width = 3\n"), FormatTOML)
	require.NoError(t, err)
	require.Equal(t, 3, c.Language("x.txt").IndentWidth)
}

func TestYAML(t *testing.T) {
	c, err := Parse([]byte(`
file_default:
  indent_width: 2
file:
  cpp:
    hard_tab: true
    compiler:
      command: [clang++, -o, $FILE_STEM, $FILE_PATH]
      type: clang
`), FormatYAML)
	require.NoError(t, err)

	cpp := c.Language("a.cpp")
	require.Equal(t, 2, cpp.IndentWidth)
	require.True(t, cpp.HardTab)
	require.Equal(t, CompilerClang, cpp.Compiler.Type)
	require.Equal(t, "clang++", cpp.Compiler.Command[0])
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("[file.cpp\nindent_width = 2"), FormatTOML)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	require.Positive(t, pe.Line)

	_, err = Parse([]byte("[file.cpp]\nindent_wdith = 2\n"), FormatTOML)
	require.True(t, errors.As(err, &pe))
	require.Contains(t, pe.Message, "indent_wdith")

	_, err = Parse([]byte("file: [1, 2"), FormatYAML)
	require.True(t, errors.As(err, &pe))
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"compiler type", "[file.x]\ncompiler = { command = [\"cc\"], type = \"msvc\" }\n", ErrUnknownCompilerType},
		{"compiler command", "[file.x]\ncompiler = { command = [], type = \"gcc\" }\n", ErrEmptyCommand},
		{"indent", "[file_default]\nindent_width = 0\n", ErrInvalidIndent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatTOML)
			require.ErrorIs(t, err, tt.want)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load("/nowhere/config.toml", WithFS(mapFS{}))
	require.NoError(t, err)
	require.Equal(t, "/nowhere/config.toml", c.Path())
	require.True(t, c.Language("a.cpp").HasCompiler())
}

func TestLoadReadsUserLayer(t *testing.T) {
	fsys := mapFS{
		"/cfg/config.toml": "[file.cpp]\nsnippets = [\"cpp.json\"]\n[file_default]\nsnippets = [\"/abs/all.json\"]\n",
		"/cfg/cpp.json":    `{"loop": {"prefix": "rep", "body": ["for (int i = 0; i < n; i++) {", "}"]}, "main": {"prefix": "main", "body": "int main() {}"}}`,
		"/abs/all.json":    `{"x": {"prefix": "rep", "body": ["generic"]}, "y": {"prefix": "todo", "body": ["// TODO"]}}`,
	}
	c, err := Load("/cfg/config.toml", WithFS(fsys))
	require.NoError(t, err)

	got := c.Language("a.cpp").Snippets
	require.Equal(t, "for (int i = 0; i < n; i++) {\n}\n", got["rep"], "extension snippets override fallback ones")
	require.Equal(t, "int main() {}\n", got["main"])
	require.Equal(t, "// TODO\n", got["todo"])

	require.Equal(t, map[string]string{"rep": "generic\n", "todo": "// TODO\n"}, c.Language("a.py").Snippets)
}

func TestBadSnippetFileSkipped(t *testing.T) {
	fsys := mapFS{
		"/c/config.toml": "[file_default]\nsnippets = [\"bad.json\", \"missing.json\"]\n",
		"/c/bad.json":    "{not json",
	}
	c, err := Load("/c/config.toml", WithFS(fsys))
	require.NoError(t, err)
	require.Empty(t, c.Language("a.c").Snippets)
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("file_default:\n  indent_width: 6\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 6, c.Language("a.txt").IndentWidth)
}

func TestFormatOf(t *testing.T) {
	require.Equal(t, FormatYAML, FormatOf("a/config.YML"))
	require.Equal(t, FormatYAML, FormatOf("config.yaml"))
	require.Equal(t, FormatTOML, FormatOf("config.toml"))
	require.Equal(t, FormatTOML, FormatOf("config"))
}
