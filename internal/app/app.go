// Package app wires the editor together: one document, its modal input
// machine, its tool orchestrator and the screen.
//
// Everything that touches the document runs on the goroutine that calls
// Run. Tools, the language server and the config watcher report back
// through channels that Run selects on.
package app

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dshills/accepted/internal/clipboard"
	"github.com/dshills/accepted/internal/config"
	"github.com/dshills/accepted/internal/config/watcher"
	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/input/key"
	"github.com/dshills/accepted/internal/input/mode"
	"github.com/dshills/accepted/internal/integration/tool"
	"github.com/dshills/accepted/internal/syntax"
)

// App is the editor for one file.
type App struct {
	cfg  *config.Config
	lang config.Language

	doc     *engine.Document
	machine *mode.Machine
	orch    *tool.Orchestrator

	renderer    Renderer
	clip        clipboard.Provider
	highlighter syntax.Provider
	watcher     *watcher.Watcher
	logger      *Logger

	policy        tool.Policy
	prefixTimeout time.Duration

	status     string
	statusKind StatusKind
	output     *Output

	pending    *pendingTest
	completion *completionRequest

	lspState string
	lspReady bool
	lspRev   uint64

	running  atomic.Bool
	quitting bool
}

// pendingTest is a test run waiting for its format step.
type pendingTest struct {
	job       string
	optimized bool
}

// completionRequest is the completion the editor is waiting for. The
// answer is used only if the cursor and text are unchanged.
type completionRequest struct {
	id       int64
	at       engine.Point
	revision uint64
}

// Option configures an App.
type Option func(*App)

// WithRenderer sets the screen.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithClipboard sets the clipboard used for test input, copy-all and the
// + register.
func WithClipboard(c clipboard.Provider) Option {
	return func(a *App) {
		if c != nil {
			a.clip = c
		}
	}
}

// WithHighlighter sets the syntax span provider.
func WithHighlighter(p syntax.Provider) Option {
	return func(a *App) {
		if p != nil {
			a.highlighter = p
		}
	}
}

// WithConfigWatcher reloads the configuration when w reports a change.
// The caller keeps ownership of w.
func WithConfigWatcher(w *watcher.Watcher) Option {
	return func(a *App) {
		a.watcher = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithPolicy sets the limits for tool jobs.
func WithPolicy(p tool.Policy) Option {
	return func(a *App) {
		a.policy = p
	}
}

// WithPrefixTimeout sets how long the Space prefix waits for its key.
func WithPrefixTimeout(d time.Duration) Option {
	return func(a *App) {
		a.prefixTimeout = d
	}
}

// New opens the file at path with the language settings cfg resolves for
// it. A file that does not exist yet starts empty.
func New(cfg *config.Config, path string, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{
		cfg:         cfg,
		renderer:    nopRenderer{},
		clip:        clipboard.Default(),
		highlighter: syntax.None{},
		logger:      NullLogger,
		lspState:    "off",
	}
	for _, opt := range opts {
		opt(a)
	}

	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, &OperationError{Op: "open", Target: path, Err: err}
		}
		path = abs
	}
	text, err := readSource(path)
	if err != nil {
		return nil, err
	}

	a.lang = cfg.Language(path)
	a.doc = engine.New(
		engine.WithText(text),
		engine.WithPath(path),
		engine.WithIndent(a.lang.IndentWidth, a.lang.HardTab),
		engine.WithHighlighter(a.highlighter, a.lang.Syntax),
	)
	a.machine = mode.New(a.doc,
		mode.WithPrefixTimeout(a.prefixTimeout),
		mode.WithClipboard(a.clip),
	)
	a.orch = tool.New(
		tool.WithLogger(a.logger.WithComponent("tool")),
		tool.WithPolicy(a.policy),
	)

	a.logger.Info("opened %s (%s)", displayPath(path), a.lang.Extension)
	return a, nil
}

// Document returns the edited document.
func (a *App) Document() *engine.Document {
	return a.doc
}

// Language returns the resolved settings for the document's file type.
func (a *App) Language() config.Language {
	return a.lang
}

// Run processes keys and background results until the user quits, keys is
// closed or ctx ends. It renders after every event and shuts the tools
// down before returning.
func (a *App) Run(ctx context.Context, keys <-chan key.Event) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.shutdown()

	var (
		watchEvents <-chan watcher.Event
		watchErrs   <-chan error
	)
	if a.watcher != nil {
		watchEvents, watchErrs = a.watcher.Events(), a.watcher.Errors()
	}
	toolEvents := a.orch.Events()

	a.render()
	for {
		var expire <-chan time.Time
		if deadline, ok := a.machine.PrefixDeadline(); ok {
			expire = time.After(time.Until(deadline))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			a.handleKey(ev)

		case ev, ok := <-toolEvents:
			if !ok {
				toolEvents = nil
				continue
			}
			a.handleToolEvent(ev)

		case ev, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			a.logger.Debug("config %s: %s", ev.Op, ev.Path)
			a.reloadConfig()

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			a.logger.Warn("config watcher: %v", err)

		case now := <-expire:
			a.machine.ExpirePrefix(now)
		}

		if a.quitting {
			return nil
		}
		a.syncLSP()
		a.render()
	}
}

func (a *App) render() {
	a.renderer.Render(a.view())
}

// shutdown stops every tool and the language server.
func (a *App) shutdown() {
	if err := a.orch.Close(); err != nil {
		a.logger.Warn("shutdown: %v", err)
	}
	a.logger.Info("closed %s", displayPath(a.doc.Path()))
}

// reloadConfig rereads the configuration file. On error the old settings
// stay in effect.
func (a *App) reloadConfig() {
	cfg, err := config.Load(a.cfg.Path())
	if err != nil {
		a.fail(err)
		return
	}
	a.cfg = cfg
	a.applyLanguage()
	a.notify("configuration reloaded")
}

// applyLanguage resolves the settings for the document's current path.
func (a *App) applyLanguage() {
	a.lang = a.cfg.Language(a.doc.Path())
	a.doc.SetIndent(a.lang.IndentWidth, a.lang.HardTab)
	a.doc.SetHighlighter(a.highlighter, a.lang.Syntax)
}

func (a *App) notify(msg string) {
	a.status, a.statusKind = msg, StatusInfo
}

func (a *App) fail(err error) {
	a.status, a.statusKind = err.Error(), StatusError
	a.logger.Warn("%v", err)
}

func displayPath(path string) string {
	if path == "" {
		return "[No Name]"
	}
	return path
}

type nopRenderer struct{}

func (nopRenderer) Render(View) {}
