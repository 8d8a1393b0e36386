package app

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dshills/accepted/internal/config"
	"github.com/dshills/accepted/internal/input/key"
	"github.com/dshills/accepted/internal/input/mode"
	"github.com/dshills/accepted/internal/integration/tool"
	"github.com/dshills/accepted/internal/lsp"
)

var errLSPNotRunning = errors.New("language server not running (Space l starts it)")

// handleKey feeds ev to the input machine and carries out its effects in
// order. An effect that fails stops the rest, so ":wq" does not quit when
// the write fails.
func (a *App) handleKey(ev key.Event) {
	a.status, a.statusKind = "", StatusInfo
	for _, e := range a.machine.HandleKey(ev) {
		if err := a.apply(e); err != nil {
			a.fail(err)
			return
		}
	}
}

func (a *App) apply(e mode.Effect) error {
	a.logger.Debug("effect %s", e)
	switch e.Kind {
	case mode.EffectQuit:
		if a.doc.Dirty() {
			return ErrUnsavedChanges
		}
		a.quitting = true
	case mode.EffectForceQuit:
		a.quitting = true
	case mode.EffectSave:
		return a.save()
	case mode.EffectSaveAs:
		return a.saveAs(e.Arg)
	case mode.EffectCopyAll:
		return a.copyAll()
	case mode.EffectFormat:
		_, err := a.orch.Format(a.snapshot(), a.lang)
		return err
	case mode.EffectCompile:
		return a.compile()
	case mode.EffectTest:
		return a.test(false)
	case mode.EffectTestOptimized:
		return a.test(true)
	case mode.EffectStartLSP:
		return a.startLSP(false)
	case mode.EffectRestartLSP:
		return a.startLSP(true)
	case mode.EffectCancelJob:
		a.pending = nil
		if a.orch.Cancel() {
			a.notify("job cancelled")
		} else {
			a.notify("no job running")
		}
	case mode.EffectRequestCompletion:
		return a.requestCompletion()
	case mode.EffectNotice:
		a.notify(e.Arg)
	}
	return nil
}

func (a *App) snapshot() tool.Snapshot {
	return tool.Snapshot{
		Path:     a.doc.Path(),
		Text:     a.doc.Text(),
		Revision: a.doc.Revision(),
	}
}

// save writes the document to its path.
func (a *App) save() error {
	path := a.doc.Path()
	if path == "" {
		return fmt.Errorf("%w (use :saveas <path>)", ErrNoFileName)
	}
	if err := writeSource(path, a.doc.Text()); err != nil {
		return err
	}
	a.doc.MarkSaved()
	a.notify(fmt.Sprintf("%q %dL written", filepath.Base(path), a.doc.LineCount()))
	a.logger.Info("saved %s", path)

	if client := a.orch.LSP(); client != nil && a.lspReady {
		a.syncLSP()
		if err := client.DidSave(); err != nil {
			a.logger.Debug("lsp didSave: %v", err)
		}
	}
	return nil
}

// saveAs writes the document to path and adopts it. A new extension
// switches the language settings and stops a running language server.
func (a *App) saveAs(path string) error {
	path = expandHome(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return &OperationError{Op: "save", Target: path, Err: err}
	}
	if err := writeSource(abs, a.doc.Text()); err != nil {
		return err
	}

	oldExt := config.Extension(a.doc.Path())
	a.doc.SetPath(abs)
	a.doc.MarkSaved()
	if config.Extension(abs) != oldExt {
		a.applyLanguage()
		if a.orch.LSP() != nil {
			ctx, cancel := context.WithTimeout(context.Background(), tool.DefaultShutdownTimeout)
			_ = a.orch.StopLSP(ctx)
			cancel()
			a.lspReady, a.lspState = false, "off"
		}
	}
	a.notify(fmt.Sprintf("%q %dL written", filepath.Base(abs), a.doc.LineCount()))
	a.logger.Info("saved as %s", abs)
	return nil
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, rest)
	}
	return path
}

func (a *App) copyAll() error {
	if err := a.clip.Write(a.doc.Text()); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	a.notify(fmt.Sprintf("copied %d lines", a.doc.LineCount()))
	return nil
}

// compile saves and compiles.
func (a *App) compile() error {
	if !a.lang.HasCompiler() {
		return fmt.Errorf("%w: compiler for %q", tool.ErrNotConfigured, a.lang.Extension)
	}
	if err := a.save(); err != nil {
		return err
	}
	_, err := a.orch.Compile(a.snapshot(), a.lang, false)
	return err
}

// test formats, saves, compiles and runs the program with the clipboard
// as input. With a formatter configured the rest waits for the format
// result.
func (a *App) test(optimized bool) error {
	if a.doc.Path() == "" {
		return fmt.Errorf("%w (use :saveas <path>)", ErrNoFileName)
	}
	if a.lang.HasFormatter() {
		job, err := a.orch.Format(a.snapshot(), a.lang)
		if err != nil {
			return err
		}
		a.pending = &pendingTest{job: job.ID, optimized: optimized}
		return nil
	}
	return a.runTest(optimized)
}

func (a *App) runTest(optimized bool) error {
	if err := a.save(); err != nil {
		return err
	}
	input, err := a.clip.Read()
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	_, err = a.orch.Test(a.snapshot(), a.lang, optimized, input)
	return err
}

// startLSP starts the language server. Unless restart is set, a running
// session is kept and the call only reports it.
func (a *App) startLSP(restart bool) error {
	if a.doc.Path() == "" {
		return fmt.Errorf("%w (use :saveas <path>)", ErrNoFileName)
	}
	running := a.orch.LSP()
	start := a.orch.StartLSP
	if restart {
		start = a.orch.RestartLSP
	}
	client, err := start(context.Background(), a.lang, a.doc.Path(), a.doc.Text())
	if err != nil {
		a.lspState = "failed"
		return err
	}
	if client == running {
		a.notify("language server already running")
		return nil
	}
	a.lspReady = false
	a.lspRev = a.doc.Revision()
	a.completion = nil
	return nil
}

// syncLSP sends the text to the language server when it has changed
// since the last sync.
func (a *App) syncLSP() {
	client := a.orch.LSP()
	if client == nil || !a.lspReady || a.lspRev == a.doc.Revision() {
		return
	}
	if err := client.DidChange(a.doc.Text()); err != nil {
		a.logger.Debug("lsp didChange: %v", err)
		return
	}
	a.lspRev = a.doc.Revision()
}

// requestCompletion asks the language server for completions. Without a
// server the language's snippets are offered on their own.
func (a *App) requestCompletion() error {
	client := a.orch.LSP()
	if client == nil || !a.lspReady {
		if len(a.lang.Snippets) == 0 {
			return errLSPNotRunning
		}
		if !a.machine.ShowCompletion(a.snippetItems()) {
			a.notify("no completions")
		}
		return nil
	}
	a.syncLSP()

	cur := a.doc.Cursor()
	id, err := client.Complete(lsp.PositionOf(a.doc.Line(cur.Line), cur))
	if err != nil {
		return fmt.Errorf("completion: %w", err)
	}
	a.completion = &completionRequest{id: id, at: cur, revision: a.doc.Revision()}
	return nil
}

func (a *App) snippetItems() []mode.CompletionItem {
	triggers := slices.Sorted(maps.Keys(a.lang.Snippets))
	items := make([]mode.CompletionItem, 0, len(triggers))
	for _, t := range triggers {
		items = append(items, mode.CompletionItem{Label: t, InsertText: a.lang.Snippets[t], Detail: "snippet"})
	}
	return items
}
