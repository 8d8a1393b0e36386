package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/accepted/internal/config"
	"github.com/dshills/accepted/internal/engine/buffer"
	"github.com/dshills/accepted/internal/integration/process"
	"github.com/dshills/accepted/internal/lsp"
)

// DefaultShutdownTimeout bounds the language server shutdown in Close.
const DefaultShutdownTimeout = 2 * time.Second

// Logger receives diagnostic messages. *app.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Policy limits foreground jobs.
type Policy struct {
	// MaxRuntime cancels a job that runs longer and reports ErrTimeout.
	// Zero means no limit.
	MaxRuntime time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithPolicy sets the job policy.
func WithPolicy(p Policy) Option {
	return func(o *Orchestrator) {
		o.policy = p
	}
}

// Orchestrator runs the external tools for one buffer: one foreground job
// (format, compile or test) at a time, and one language server session.
//
// Every method returns without waiting for a tool. Results are delivered
// in order on Events.
type Orchestrator struct {
	sup    *process.Supervisor
	logger Logger
	policy Policy

	out      chan Event
	wake     chan struct{}
	quit     chan struct{}
	pumpDone chan struct{}
	jobs     sync.WaitGroup
	lspStops sync.WaitGroup

	mu      sync.Mutex
	queue   []Event
	current *run
	session *session
	closed  bool
}

// run is a foreground job in flight.
type run struct {
	// info is the job as started; job is owned by the run's goroutine.
	info   Job
	job    Job
	ctx    context.Context
	cancel context.CancelFunc
	prev   *run
	done   chan struct{}
}

// session is a language server and its client.
type session struct {
	client *lsp.Client
	proc   *process.Process
	path   string
}

// New creates an orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sup:      process.NewSupervisor(),
		logger:   nopLogger{},
		out:      make(chan Event, 16),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	go o.pump()
	return o
}

// Events returns the ordered result channel. It is closed by Close.
func (o *Orchestrator) Events() <-chan Event {
	return o.out
}

// Current returns the foreground job, if one is running.
func (o *Orchestrator) Current() (Job, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return Job{}, false
	}
	return o.current.info, true
}

// Format pipes snap.Text through the language's formatter.
func (o *Orchestrator) Format(snap Snapshot, lang config.Language) (Job, error) {
	if !lang.HasFormatter() {
		return Job{}, fmt.Errorf("%w: formatter for %q", ErrNotConfigured, lang.Extension)
	}
	vars := newFileVars(snap.Path)
	argv := vars.expandAll(lang.Formatter)

	return o.start(KindFormat, snap.Revision, func(r *run) Event {
		res, err := o.exec(r, "format", argv, vars, snap.Text)
		if err != nil {
			return o.failure(r, err)
		}
		r.record(res)
		switch {
		case res.exitCode != 0:
			r.job.State = StateFailed
			return EventError{Job: r.job, Err: &JobError{
				Kind: KindFormat,
				Err:  fmt.Errorf("%w: exit status %d: %s", ErrFailed, res.exitCode, firstLine(res.stderr)),
			}}
		case !utf8.ValidString(res.stdout):
			r.job.State = StateFailed
			return EventError{Job: r.job, Err: &JobError{Kind: KindFormat, Err: ErrInvalidOutput}}
		}
		r.job.State = StateSucceeded
		return EventFormatted{Job: r.job, Text: buffer.NormalizeLineEndings(res.stdout)}
	})
}

// Compile runs the language's compiler on the saved file at snap.Path.
func (o *Orchestrator) Compile(snap Snapshot, lang config.Language, optimized bool) (Job, error) {
	if !lang.HasCompiler() {
		return Job{}, fmt.Errorf("%w: compiler for %q", ErrNotConfigured, lang.Extension)
	}
	if snap.Path == "" {
		return Job{}, ErrNoPath
	}
	kind := KindCompile
	if optimized {
		kind = KindCompileOptimized
	}
	c := compileStep{lang: lang, vars: newFileVars(snap.Path), optimized: optimized, snap: snap}

	return o.start(kind, snap.Revision, func(r *run) Event {
		ev, err := o.compile(r, c)
		if err != nil {
			return o.failure(r, err)
		}
		return ev
	})
}

// Test compiles the saved file when a compiler is configured, then runs
// the program with input on stdin. A failed compile ends the job with
// EventCompiled and the program is not run.
func (o *Orchestrator) Test(snap Snapshot, lang config.Language, optimized bool, input string) (Job, error) {
	if snap.Path == "" {
		return Job{}, ErrNoPath
	}
	vars := newFileVars(snap.Path)
	argv := testCommand(lang, vars, snap.Text)
	if len(argv) == 0 {
		return Job{}, fmt.Errorf("%w: test command for %q", ErrNotConfigured, lang.Extension)
	}
	c := compileStep{lang: lang, vars: vars, optimized: optimized, snap: snap}

	return o.start(KindTest, snap.Revision, func(r *run) Event {
		var compiled EventCompiled
		if lang.HasCompiler() {
			ev, err := o.compile(r, c)
			if err != nil {
				return o.failure(r, err)
			}
			compiled = ev
			if !compiled.Success {
				return compiled
			}
		}

		res, err := o.exec(r, "test", argv, vars, input)
		if err != nil {
			return o.failure(r, err)
		}
		r.record(res)
		r.job.State = StateSucceeded
		return EventTested{
			Job:         r.job,
			Stdout:      res.stdout,
			Stderr:      res.stderr,
			ExitCode:    res.exitCode,
			Duration:    res.duration,
			Diagnostics: compiled.Diagnostics,
		}
	})
}

// testCommand picks how to run the program: the configured test_command,
// else the file's shebang line, else the compiled binary.
func testCommand(lang config.Language, vars fileVars, text string) []string {
	if len(lang.TestCommand) > 0 {
		return vars.expandAll(lang.TestCommand)
	}
	if first, _, _ := strings.Cut(text, "\n"); strings.HasPrefix(first, "#!") {
		if fields := strings.Fields(strings.TrimPrefix(first, "#!")); len(fields) > 0 {
			return append(fields, vars.path)
		}
	}
	if lang.HasCompiler() {
		return []string{filepath.Join(vars.dir, vars.stem)}
	}
	return nil
}

type compileStep struct {
	lang      config.Language
	vars      fileVars
	optimized bool
	snap      Snapshot
}

func (o *Orchestrator) compile(r *run, c compileStep) (EventCompiled, error) {
	argv := c.vars.expandAll(c.lang.Compiler.Args(c.optimized))
	res, err := o.exec(r, "compile", argv, c.vars, "")
	if err != nil {
		return EventCompiled{}, err
	}
	r.record(res)

	diags, shown := parserFor(c.lang.Compiler.Type)(res.stdout+res.stderr, c.vars.path, c.snap.Text)
	ev := EventCompiled{
		Diagnostics: diags,
		Success:     res.exitCode == 0,
		Output:      shown,
	}
	r.job.State = StateSucceeded
	if !ev.Success {
		r.job.State = StateFailed
	}
	ev.Job = r.job
	return ev, nil
}

// Cancel stops the foreground job, if any. The job emits nothing more.
// It reports whether a job was running.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	r := o.current
	o.current = nil
	o.mu.Unlock()

	if r == nil {
		return false
	}
	r.cancel()
	o.logger.Debug("cancelled %s job %s", r.info.Kind, r.info.ID)
	return true
}

// start claims the foreground slot, cancelling the previous job. The new
// job does not spawn anything until the previous one has been reaped.
func (o *Orchestrator) start(kind Kind, rev uint64, body func(*run) Event) (Job, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return Job{}, ErrClosed
	}

	prev := o.current
	if prev != nil {
		prev.cancel()
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if o.policy.MaxRuntime > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), o.policy.MaxRuntime)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	r := &run{
		job: Job{
			ID:       uuid.NewString(),
			Kind:     kind,
			State:    StateStarting,
			Revision: rev,
			Started:  time.Now(),
			ExitCode: -1,
		},
		ctx:    ctx,
		cancel: cancel,
		prev:   prev,
		done:   make(chan struct{}),
	}
	r.info = r.job
	o.current = r
	o.pushLocked(EventJobStarted{Job: r.job})
	o.jobs.Add(1)
	o.mu.Unlock()

	o.logger.Debug("started %s job %s", kind, r.job.ID)
	go o.execute(r, body)
	return r.job, nil
}

func (o *Orchestrator) execute(r *run, body func(*run) Event) {
	defer o.jobs.Done()
	defer close(r.done)
	defer r.cancel()

	if r.prev != nil {
		<-r.prev.done
		r.prev = nil
	}

	var ev Event
	if r.ctx.Err() == nil {
		r.job.State = StateRunning
		ev = body(r)
	} else if errors.Is(r.ctx.Err(), context.DeadlineExceeded) {
		ev = o.failure(r, r.ctx.Err())
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != r {
		// Superseded or cancelled: no late events.
		return
	}
	o.current = nil
	if ev != nil {
		o.pushLocked(ev)
	}
}

// failure converts a run error to its terminal event. Cancellation has
// none.
func (o *Orchestrator) failure(r *run, err error) Event {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		err = ErrTimeout
		r.job.State = StateFailed
	case errors.Is(err, context.Canceled):
		r.job.State = StateCancelled
		return nil
	default:
		r.job.State = StateFailed
	}
	o.logger.Warn("%s job %s: %v", r.job.Kind, r.job.ID, err)
	return EventError{Job: r.job, Err: &JobError{Kind: r.job.Kind, Err: err}}
}

type result struct {
	stdout   string
	stderr   string
	exitCode int
	duration time.Duration
}

func (r *run) record(res result) {
	r.job.Stdout = res.stdout
	r.job.Stderr = res.stderr
	r.job.ExitCode = res.exitCode
}

// exec runs argv to completion in the file's directory, or stops it when
// the run's context ends.
func (o *Orchestrator) exec(r *run, name string, argv []string, vars fileVars, stdin string) (result, error) {
	if len(argv) == 0 {
		return result{}, ErrNotConfigured
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = vars.dir
	cmd.Env = vars.environ()
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	proc, err := o.sup.Start(name, cmd)
	if err != nil {
		return result{}, fmt.Errorf("%w: %s: %v", ErrSpawn, argv[0], err)
	}
	if err := proc.Wait(r.ctx); err != nil {
		return result{}, err
	}
	return result{
		stdout:   stdout.String(),
		stderr:   stderr.String(),
		exitCode: proc.ExitCode(),
		duration: proc.Runtime(),
	}, nil
}

// StartLSP starts the language server for lang and opens the buffer in
// it. While a session is initializing or ready the existing client is
// returned. The handshake runs in the background; EventLSPState reports
// the outcome.
func (o *Orchestrator) StartLSP(ctx context.Context, lang config.Language, path, text string) (*lsp.Client, error) {
	return o.startLSP(ctx, lang, path, text, false)
}

// RestartLSP is StartLSP that always replaces a running session. The old
// server is shut down in the background and emits nothing more.
func (o *Orchestrator) RestartLSP(ctx context.Context, lang config.Language, path, text string) (*lsp.Client, error) {
	return o.startLSP(ctx, lang, path, text, true)
}

func (o *Orchestrator) startLSP(ctx context.Context, lang config.Language, path, text string, restart bool) (*lsp.Client, error) {
	if !lang.HasLSP() {
		return nil, fmt.Errorf("%w: language server for %q", ErrNotConfigured, lang.Extension)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil, ErrClosed
	}
	if s := o.session; s != nil {
		switch s.client.State() {
		case lsp.StateUninitialized, lsp.StateInitializing, lsp.StateReady:
			if !restart {
				return s.client, nil
			}
		}
		o.session = nil
		o.lspStops.Add(1)
		go func() {
			defer o.lspStops.Done()
			ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
			defer cancel()
			_ = s.stop(ctx)
		}()
	}

	vars := newFileVars(path)
	argv := vars.expandAll(lang.LSP)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = vars.dir
	cmd.Env = vars.environ()
	cmd.Stderr = io.Discard

	proc, err := o.sup.Start("lsp", cmd)
	if err != nil {
		return nil, &JobError{Kind: KindLSP, Err: fmt.Errorf("%w: %s: %v", ErrSpawn, argv[0], err)}
	}

	s := &session{proc: proc, path: vars.path}
	s.client = lsp.NewClient(proc.Stdout, proc.Stdin, proc,
		lsp.WithLanguageID(lsp.LanguageID(lang.Extension)),
		lsp.WithRootPath(vars.dir),
		lsp.WithLogger(o.logger),
		lsp.WithDiagnosticsHandler(func(p string, diags []lsp.Diagnostic) {
			if sameFile(p, s.path) {
				o.pushSession(s, EventLSPDiagnostics{Diagnostics: diags})
			}
		}),
		lsp.WithCompletionHandler(func(res lsp.CompletionResult) {
			o.pushSession(s, EventCompletion{Result: res})
		}),
		lsp.WithFailureHandler(func(err error) {
			o.pushSession(s, EventLSPState{State: lsp.StateFailed, Err: err})
		}),
	)
	o.session = s
	o.pushLocked(EventJobStarted{Job: Job{
		ID:       proc.ID,
		Kind:     KindLSP,
		State:    StateRunning,
		Started:  proc.Started,
		ExitCode: -1,
	}})

	go func() {
		if err := s.client.Start(ctx); err != nil {
			// The failure handler has reported it.
			return
		}
		if err := s.client.DidOpen(s.path, text); err != nil {
			o.logger.Warn("lsp didOpen: %v", err)
		}
		o.pushSession(s, EventLSPState{State: lsp.StateReady})
	}()
	return s.client, nil
}

// LSP returns the current language server client, or nil.
func (o *Orchestrator) LSP() *lsp.Client {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	return o.session.client
}

// StopLSP shuts the language server down and waits for it to exit.
func (o *Orchestrator) StopLSP(ctx context.Context) error {
	o.mu.Lock()
	s := o.session
	o.session = nil
	o.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.stop(ctx)
}

func (s *session) stop(ctx context.Context) error {
	err := s.client.Shutdown(ctx)
	s.proc.Stop(process.DefaultGrace)
	return err
}

// Close cancels the foreground job, shuts the language server down and
// closes the event channel. Undelivered events are dropped.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	o.closed = true
	r := o.current
	o.current = nil
	s := o.session
	o.session = nil
	o.mu.Unlock()

	if r != nil {
		r.cancel()
	}
	o.jobs.Wait()

	var err error
	if s != nil {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		err = s.stop(ctx)
		cancel()
	}
	o.lspStops.Wait()
	o.sup.Shutdown(process.DefaultGrace)

	close(o.quit)
	<-o.pumpDone
	return err
}

// pushSession queues an event from s unless s has been replaced.
func (o *Orchestrator) pushSession(s *session, ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == s {
		o.pushLocked(ev)
	}
}

// pushLocked queues ev. The queue is unbounded so producers never block
// while holding o.mu.
func (o *Orchestrator) pushLocked(ev Event) {
	o.queue = append(o.queue, ev)
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// pump moves queued events to the output channel in order.
func (o *Orchestrator) pump() {
	defer close(o.pumpDone)
	defer close(o.out)
	for {
		select {
		case <-o.wake:
		case <-o.quit:
			return
		}
		for {
			o.mu.Lock()
			batch := o.queue
			o.queue = nil
			o.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, ev := range batch {
				select {
				case o.out <- ev:
				case <-o.quit:
					return
				}
			}
		}
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	line, _, _ := strings.Cut(s, "\n")
	return line
}
