package tool

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dshills/accepted/internal/config"
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/lsp"
)

const fakeLSPEnv = "ACC_TOOL_FAKE_LSP"

func TestMain(m *testing.M) {
	if os.Getenv(fakeLSPEnv) == "1" {
		serveFakeLSP(os.Stdin, os.Stdout)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func sh(script string) []string {
	return []string{"/bin/sh", "-c", script}
}

func writeSource(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func newOrchestrator(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	o := New(opts...)
	t.Cleanup(func() { _ = o.Close() })
	return o
}

func next(t *testing.T, o *Orchestrator) Event {
	t.Helper()
	select {
	case ev, ok := <-o.Events():
		require.True(t, ok, "events closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func nextOf[T Event](t *testing.T, o *Orchestrator) T {
	t.Helper()
	ev := next(t, o)
	got, ok := ev.(T)
	require.True(t, ok, "got %T %+v", ev, ev)
	return got
}

func expectQuiet(t *testing.T, o *Orchestrator, d time.Duration) {
	t.Helper()
	select {
	case ev := <-o.Events():
		t.Fatalf("unexpected event %T %+v", ev, ev)
	case <-time.After(d):
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"upper", "tr a-z A-Z", "HELLO\nWORLD\n"},
		{"crlf", `printf 'a\r\nb\r\n'`, "a\nb\n"},
		{"empty", "cat >/dev/null", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(t)
			lang := config.Language{Extension: "txt", Formatter: sh(tt.script)}

			job, err := o.Format(Snapshot{Text: "hello\nworld\n", Revision: 7}, lang)
			require.NoError(t, err)
			require.Equal(t, KindFormat, job.Kind)
			require.Equal(t, uint64(7), job.Revision)

			started := nextOf[EventJobStarted](t, o)
			require.Equal(t, job.ID, started.Job.ID)

			done := nextOf[EventFormatted](t, o)
			require.Equal(t, job.ID, done.Job.ID)
			require.Equal(t, uint64(7), done.Job.Revision)
			require.Equal(t, StateSucceeded, done.Job.State)
			require.Equal(t, tt.want, done.Text)
		})
	}
}

func TestFormatErrors(t *testing.T) {
	tests := []struct {
		name      string
		formatter []string
		want      error
	}{
		{"non-zero exit", sh("echo 'syntax error' >&2; exit 2"), ErrFailed},
		{"invalid utf-8", sh(`printf '\377\376'`), ErrInvalidOutput},
		{"missing executable", []string{"/nonexistent/formatter"}, ErrSpawn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrchestrator(t)
			lang := config.Language{Extension: "txt", Formatter: tt.formatter}

			_, err := o.Format(Snapshot{Text: "x"}, lang)
			require.NoError(t, err)

			nextOf[EventJobStarted](t, o)
			ev := nextOf[EventError](t, o)
			require.ErrorIs(t, ev.Err, tt.want)
			require.Equal(t, StateFailed, ev.Job.State)

			var jerr *JobError
			require.True(t, errors.As(ev.Err, &jerr))
			require.Equal(t, KindFormat, jerr.Kind)
		})
	}
}

func TestFormatFailureKeepsStderr(t *testing.T) {
	o := newOrchestrator(t)
	lang := config.Language{Formatter: sh("echo 'line 3: bad' >&2; exit 1")}

	_, err := o.Format(Snapshot{Text: "x"}, lang)
	require.NoError(t, err)
	nextOf[EventJobStarted](t, o)

	ev := nextOf[EventError](t, o)
	require.Contains(t, ev.Err.Error(), "line 3: bad")
	require.Equal(t, 1, ev.Job.ExitCode)
	require.Equal(t, "line 3: bad\n", ev.Job.Stderr)
}

func TestNotConfigured(t *testing.T) {
	o := newOrchestrator(t)
	snap := Snapshot{Path: "/tmp/a.cpp", Text: "int main(){}"}

	_, err := o.Format(snap, config.Language{Extension: "cpp"})
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = o.Compile(snap, config.Language{Extension: "cpp"}, false)
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = o.Test(snap, config.Language{Extension: "cpp"}, false, "")
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = o.StartLSP(context.Background(), config.Language{Extension: "cpp"}, snap.Path, snap.Text)
	require.ErrorIs(t, err, ErrNotConfigured)

	withCompiler := config.Language{Compiler: &config.Compiler{Command: sh("true")}}
	_, err = o.Compile(Snapshot{Text: "x"}, withCompiler, false)
	require.ErrorIs(t, err, ErrNoPath)
	_, err = o.Test(Snapshot{Text: "x"}, withCompiler, false, "")
	require.ErrorIs(t, err, ErrNoPath)

	expectQuiet(t, o, 50*time.Millisecond)
}

func TestCompileDiagnostics(t *testing.T) {
	text := "int main() {\n  return x;\n}\n"
	path := writeSource(t, "a.cpp", text)
	o := newOrchestrator(t)
	lang := config.Language{
		Extension: "cpp",
		Compiler: &config.Compiler{
			Command: sh(`echo "${FILE_STEM}.cpp:2:10: error: 'x' was not declared" >&2; exit 1`),
			Type:    config.CompilerGCC,
		},
	}

	job, err := o.Compile(Snapshot{Path: path, Text: text, Revision: 3}, lang, false)
	require.NoError(t, err)
	require.Equal(t, KindCompile, job.Kind)

	nextOf[EventJobStarted](t, o)
	ev := nextOf[EventCompiled](t, o)
	require.False(t, ev.Success)
	require.Equal(t, StateFailed, ev.Job.State)
	require.Equal(t, 1, ev.Job.ExitCode)
	require.Equal(t, []engine.Diagnostic{{
		Line:     1,
		StartCol: 9,
		EndCol:   10,
		Severity: engine.SeverityError,
		Message:  "'x' was not declared",
	}}, ev.Diagnostics)
	require.Contains(t, ev.Output, "was not declared")
}

func TestCompileOptimizedArgs(t *testing.T) {
	path := writeSource(t, "a.c", "")
	o := newOrchestrator(t)
	lang := config.Language{
		Compiler: &config.Compiler{
			Command:        []string{"/bin/sh", "-c", `echo "$@"`, "sh", "-O0"},
			OptimizeOption: []string{"-O2"},
		},
	}

	job, err := o.Compile(Snapshot{Path: path}, lang, true)
	require.NoError(t, err)
	require.Equal(t, KindCompileOptimized, job.Kind)

	nextOf[EventJobStarted](t, o)
	ev := nextOf[EventCompiled](t, o)
	require.True(t, ev.Success)
	require.Equal(t, "-O0 -O2\n", ev.Output)
	require.Empty(t, ev.Diagnostics)
}

func TestToolsRunInFileDirectory(t *testing.T) {
	path := writeSource(t, "prog.c", "")
	o := newOrchestrator(t)
	lang := config.Language{
		Compiler: &config.Compiler{Command: sh(`pwd; echo "$FILE_STEM"`)},
	}

	_, err := o.Compile(Snapshot{Path: path}, lang, false)
	require.NoError(t, err)
	nextOf[EventJobStarted](t, o)

	ev := nextOf[EventCompiled](t, o)
	dir, err := filepath.EvalSymlinks(filepath.Dir(path))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(ev.Output), "\n")
	require.Len(t, lines, 2)
	got, err := filepath.EvalSymlinks(lines[0])
	require.NoError(t, err)
	require.Equal(t, dir, got)
	require.Equal(t, "prog", lines[1])
}

func TestTestRun(t *testing.T) {
	path := writeSource(t, "a.cpp", "int main(){}\n")
	o := newOrchestrator(t)
	lang := config.Language{
		Compiler: &config.Compiler{
			Command: sh(`echo "a.cpp:1:1: warning: unused" >&2`),
			Type:    config.CompilerGCC,
		},
		TestCommand: sh("tr a-z A-Z; echo oops >&2; exit 3"),
	}

	job, err := o.Test(Snapshot{Path: path, Text: "int main(){}\n"}, lang, false, "3\n1 2 3\n")
	require.NoError(t, err)
	require.Equal(t, KindTest, job.Kind)

	nextOf[EventJobStarted](t, o)
	ev := nextOf[EventTested](t, o)
	require.Equal(t, "3\n1 2 3\n", strings.ToLower(ev.Stdout))
	require.Equal(t, "oops\n", ev.Stderr)
	require.Equal(t, 3, ev.ExitCode)
	require.Positive(t, ev.Duration)
	require.Len(t, ev.Diagnostics, 1)
	require.Equal(t, engine.SeverityWarning, ev.Diagnostics[0].Severity)
	require.Equal(t, StateSucceeded, ev.Job.State)

	expectQuiet(t, o, 50*time.Millisecond)
}

func TestTestStopsOnCompileFailure(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	path := filepath.Join(dir, "a.cpp")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	o := newOrchestrator(t)
	lang := config.Language{
		Compiler:    &config.Compiler{Command: sh("exit 1")},
		TestCommand: sh("touch " + marker),
	}

	_, err := o.Test(Snapshot{Path: path}, lang, false, "")
	require.NoError(t, err)

	nextOf[EventJobStarted](t, o)
	ev := nextOf[EventCompiled](t, o)
	require.False(t, ev.Success)
	expectQuiet(t, o, 50*time.Millisecond)
	require.NoFileExists(t, marker)
}

func TestTestShebang(t *testing.T) {
	text := "#!/bin/sh\nread n\necho \"n=$n\"\n"
	path := writeSource(t, "sol.sh", text)
	o := newOrchestrator(t)

	_, err := o.Test(Snapshot{Path: path, Text: text}, config.Language{Extension: "sh"}, false, "42\n")
	require.NoError(t, err)

	nextOf[EventJobStarted](t, o)
	ev := nextOf[EventTested](t, o)
	require.Equal(t, "n=42\n", ev.Stdout)
	require.Equal(t, 0, ev.ExitCode)
}

func TestTestCommand(t *testing.T) {
	vars := fileVars{path: "/src/a.py", stem: "a", dir: "/src"}
	compiler := &config.Compiler{Command: []string{"g++"}}

	tests := []struct {
		name string
		lang config.Language
		text string
		want []string
	}{
		{
			name: "configured",
			lang: config.Language{TestCommand: []string{"python3", "${FILE_PATH}"}, Compiler: compiler},
			text: "#!/bin/sh\n",
			want: []string{"python3", "/src/a.py"},
		},
		{
			name: "shebang",
			lang: config.Language{Compiler: compiler},
			text: "#!/usr/bin/env python3\nprint(1)\n",
			want: []string{"/usr/bin/env", "python3", "/src/a.py"},
		},
		{
			name: "compiled binary",
			lang: config.Language{Compiler: compiler},
			text: "print(1)\n",
			want: []string{"/src/a"},
		},
		{
			name: "nothing",
			lang: config.Language{},
			text: "print(1)\n",
		},
		{
			name: "bare shebang",
			lang: config.Language{},
			text: "#!\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, testCommand(tt.lang, vars, tt.text))
		})
	}
}

func TestNewJobCancelsPrevious(t *testing.T) {
	path := writeSource(t, "a.c", "")
	o := newOrchestrator(t)
	slow := config.Language{Compiler: &config.Compiler{Command: sh("sleep 10")}}
	fast := config.Language{Compiler: &config.Compiler{Command: sh("echo fast")}}

	first, err := o.Compile(Snapshot{Path: path}, slow, false)
	require.NoError(t, err)
	require.Equal(t, first.ID, nextOf[EventJobStarted](t, o).Job.ID)

	second, err := o.Compile(Snapshot{Path: path}, fast, false)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, second.ID, nextOf[EventJobStarted](t, o).Job.ID)

	ev := nextOf[EventCompiled](t, o)
	require.Equal(t, second.ID, ev.Job.ID)
	require.Equal(t, "fast\n", ev.Output)

	expectQuiet(t, o, 200*time.Millisecond)
	_, running := o.Current()
	require.False(t, running)
}

func TestCancel(t *testing.T) {
	o := newOrchestrator(t)
	lang := config.Language{Formatter: sh("sleep 10")}

	require.False(t, o.Cancel())

	job, err := o.Format(Snapshot{Text: "x"}, lang)
	require.NoError(t, err)
	nextOf[EventJobStarted](t, o)

	cur, ok := o.Current()
	require.True(t, ok)
	require.Equal(t, job.ID, cur.ID)

	start := time.Now()
	require.True(t, o.Cancel())
	require.False(t, o.Cancel())
	expectQuiet(t, o, 200*time.Millisecond)
	require.Less(t, time.Since(start), 5*time.Second)

	_, ok = o.Current()
	require.False(t, ok)
}

func TestTimeout(t *testing.T) {
	o := newOrchestrator(t, WithPolicy(Policy{MaxRuntime: 100 * time.Millisecond}))
	lang := config.Language{Formatter: sh("sleep 10")}

	_, err := o.Format(Snapshot{Text: "x"}, lang)
	require.NoError(t, err)
	nextOf[EventJobStarted](t, o)

	ev := nextOf[EventError](t, o)
	require.ErrorIs(t, ev.Err, ErrTimeout)
	require.Equal(t, StateFailed, ev.Job.State)
}

func TestClose(t *testing.T) {
	o := New()
	lang := config.Language{Formatter: sh("sleep 10")}

	_, err := o.Format(Snapshot{Text: "x"}, lang)
	require.NoError(t, err)

	require.NoError(t, o.Close())
	for range o.Events() {
	}
	require.ErrorIs(t, o.Close(), ErrClosed)

	_, err = o.Format(Snapshot{Text: "x"}, lang)
	require.ErrorIs(t, err, ErrClosed)
}

func TestLanguageServerSession(t *testing.T) {
	t.Setenv(fakeLSPEnv, "1")
	text := "int x;\n"
	path := writeSource(t, "a.cpp", text)
	o := newOrchestrator(t)
	lang := config.Language{Extension: "cpp", LSP: []string{os.Args[0]}}

	ctx := context.Background()
	client, err := o.StartLSP(ctx, lang, path, text)
	require.NoError(t, err)
	require.NotNil(t, client)

	again, err := o.StartLSP(ctx, lang, path, text)
	require.NoError(t, err)
	require.Same(t, client, again)
	require.Same(t, client, o.LSP())

	started := nextOf[EventJobStarted](t, o)
	require.Equal(t, KindLSP, started.Job.Kind)

	var ready, diagnosed bool
	for !ready || !diagnosed {
		switch ev := next(t, o).(type) {
		case EventLSPState:
			require.Equal(t, lsp.StateReady, ev.State)
			ready = true
		case EventLSPDiagnostics:
			require.Len(t, ev.Diagnostics, 1)
			require.Equal(t, "fake diagnostic", ev.Diagnostics[0].Message)
			diagnosed = true
		default:
			t.Fatalf("unexpected event %T", ev)
		}
	}

	id, err := client.Complete(lsp.Position{Line: 0, Character: 4})
	require.NoError(t, err)
	res := nextOf[EventCompletion](t, o)
	require.Equal(t, id, res.Result.ID)
	require.NoError(t, res.Result.Err)
	require.Len(t, res.Result.Items, 1)
	require.Equal(t, "xor", res.Result.Items[0].Text())

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, o.StopLSP(ctx))
	require.Nil(t, o.LSP())
	require.Equal(t, lsp.StateTerminated, client.State())
	expectQuiet(t, o, 50*time.Millisecond)
}

func TestLanguageServerRestart(t *testing.T) {
	t.Setenv(fakeLSPEnv, "1")
	path := writeSource(t, "a.cpp", "")
	o := newOrchestrator(t)
	lang := config.Language{Extension: "cpp", LSP: []string{os.Args[0]}}
	ctx := context.Background()

	waitReady := func() {
		t.Helper()
		nextOf[EventJobStarted](t, o)
		for {
			if st, ok := next(t, o).(EventLSPState); ok {
				require.Equal(t, lsp.StateReady, st.State)
				return
			}
		}
	}

	first, err := o.StartLSP(ctx, lang, path, "")
	require.NoError(t, err)
	waitReady()

	second, err := o.RestartLSP(ctx, lang, path, "")
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.Same(t, second, o.LSP())
	waitReady()

	select {
	case <-first.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("old session still open")
	}
}

func TestLanguageServerSpawnError(t *testing.T) {
	o := newOrchestrator(t)
	lang := config.Language{Extension: "cpp", LSP: []string{"/nonexistent/clangd"}}

	_, err := o.StartLSP(context.Background(), lang, "/tmp/a.cpp", "")
	require.ErrorIs(t, err, ErrSpawn)

	var jerr *JobError
	require.True(t, errors.As(err, &jerr))
	require.Equal(t, KindLSP, jerr.Kind)
	require.Nil(t, o.LSP())
}

// serveFakeLSP answers just enough of the protocol for a session: the
// handshake, one diagnostics set per opened document, completion and
// shutdown.
func serveFakeLSP(r io.Reader, w io.Writer) {
	br := bufio.NewReader(r)
	send := func(v any) {
		body, _ := json.Marshal(v)
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n%s", len(body), body)
	}
	reply := func(id json.RawMessage, result any) {
		send(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
	}

	for {
		length := 0
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			if v, ok := strings.CutPrefix(line, "Content-Length:"); ok {
				length, _ = strconv.Atoi(strings.TrimSpace(v))
			}
		}
		body := make([]byte, length)
		if _, err := io.ReadFull(br, body); err != nil {
			return
		}

		var msg struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params struct {
				TextDocument struct {
					URI string `json:"uri"`
				} `json:"textDocument"`
			} `json:"params"`
		}
		if err := json.Unmarshal(body, &msg); err != nil {
			return
		}

		switch msg.Method {
		case "initialize":
			reply(msg.ID, map[string]any{
				"capabilities": map[string]any{"completionProvider": map[string]any{}},
				"serverInfo":   map[string]any{"name": "fake"},
			})
		case "textDocument/didOpen":
			diag := map[string]any{
				"range": map[string]any{
					"start": map[string]any{"line": 0, "character": 4},
					"end":   map[string]any{"line": 0, "character": 5},
				},
				"severity": 2,
				"message":  "fake diagnostic",
			}
			for _, uri := range []string{"file:///elsewhere/b.cpp", msg.Params.TextDocument.URI} {
				send(map[string]any{
					"jsonrpc": "2.0",
					"method":  "textDocument/publishDiagnostics",
					"params":  map[string]any{"uri": uri, "diagnostics": []any{diag}},
				})
			}
		case "textDocument/completion":
			reply(msg.ID, []any{map[string]any{"label": "xor"}})
		case "shutdown":
			reply(msg.ID, nil)
		case "exit":
			return
		}
	}
}
