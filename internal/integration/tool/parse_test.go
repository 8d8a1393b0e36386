package tool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/accepted/internal/config"
	"github.com/dshills/accepted/internal/engine"
)

func TestParseGCC(t *testing.T) {
	text := "int main() {\n  int x = \"é\" + y;\n}\n"
	output := `/src/a.cpp: In function 'int main()':
/src/a.cpp:2:18: error: 'y' was not declared in this scope
    2 |   int x = "é" + y;
      |                 ^
/src/a.cpp:2:7: warning: unused variable 'x' [-Wunused-variable]
/src/other.h:10:1: error: expected ';'
a.cpp:1:5: note: declared here
/src/a.cpp:3:1: fatal error: something broke
/src/a.cpp:1:0: error: whole line
`
	diags, shown := parseGCC(output, "/src/a.cpp", text)

	require.Equal(t, output, shown)
	require.Equal(t, []engine.Diagnostic{
		{Line: 1, StartCol: 16, EndCol: 17, Severity: engine.SeverityError, Message: "'y' was not declared in this scope"},
		{Line: 1, StartCol: 6, EndCol: 7, Severity: engine.SeverityWarning, Message: "unused variable 'x' [-Wunused-variable]"},
		{Line: 0, StartCol: 4, EndCol: 5, Severity: engine.SeverityInfo, Message: "declared here"},
		{Line: 2, StartCol: 0, EndCol: 1, Severity: engine.SeverityError, Message: "something broke"},
		{Line: 0, StartCol: 0, EndCol: 1, Severity: engine.SeverityError, Message: "whole line"},
	}, diags)
}

func TestParseGCCColumnPastLineEnd(t *testing.T) {
	diags, _ := parseGCC("a.c:1:40: error: eof\n", "/x/a.c", "ab")
	require.Len(t, diags, 1)
	require.Equal(t, 2, diags[0].StartCol)
}

func TestParseRustc(t *testing.T) {
	text := "fn main() {\n    let 😀x = y;\n}\n"
	output := `{"message":"cannot find value ` + "`y`" + ` in this scope","level":"error","spans":[{"file_name":"src/main.rs","line_start":2,"line_end":2,"column_start":14,"column_end":15,"is_primary":true}],"rendered":"error[E0425]: cannot find value\n"}
{"message":"unused variable","level":"warning","spans":[{"file_name":"main.rs","line_start":2,"line_end":2,"column_start":9,"column_end":11,"is_primary":false},{"file_name":"main.rs","line_start":2,"line_end":3,"column_start":9,"column_end":2,"is_primary":true}],"rendered":"warning: unused variable\n"}
{"message":"aborting due to 1 previous error","level":"error","spans":[],"rendered":"error: aborting\n"}
{"message":"elsewhere","level":"error","spans":[{"file_name":"lib.rs","line_start":1,"line_end":1,"column_start":1,"column_end":2,"is_primary":true}]}
ld: linker noise
`
	diags, shown := parseRustc(output, "/src/main.rs", text)

	require.Equal(t, []engine.Diagnostic{
		{Line: 1, StartCol: 13, EndCol: 14, Severity: engine.SeverityError, Message: "cannot find value `y` in this scope"},
		{Line: 1, StartCol: 8, EndCol: 9, Severity: engine.SeverityWarning, Message: "unused variable"},
	}, diags)
	require.Equal(t, "error[E0425]: cannot find value\nwarning: unused variable\nerror: aborting\nld: linker noise\n", shown)
}

func TestRuneColumn(t *testing.T) {
	line := "a😀e\u0301b"
	tests := []struct {
		runes int
		want  int
	}{
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{99, 4},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, runeColumn(line, tt.runes), "runes=%d", tt.runes)
	}
}

func TestSameFile(t *testing.T) {
	require.True(t, sameFile("/a/b.cpp", "/a/b.cpp"))
	require.True(t, sameFile("/a/./b.cpp", "/a/b.cpp"))
	require.False(t, sameFile("/c/b.cpp", "/a/b.cpp"))
	require.True(t, sameFile("b.cpp", "/a/b.cpp"))
	require.True(t, sameFile("src/b.cpp", "/a/b.cpp"))
	require.False(t, sameFile("c.cpp", "/a/b.cpp"))
	require.True(t, sameFile("anything", ""))
}

func TestParserFor(t *testing.T) {
	diags, shown := parserFor(config.CompilerNone)("a.c:1:1: error: x", "/a.c", "")
	require.Empty(t, diags)
	require.Equal(t, "a.c:1:1: error: x", shown)
}
