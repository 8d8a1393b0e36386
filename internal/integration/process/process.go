package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// State represents the state of a process.
type State int

const (
	// StateCreated indicates the process has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process has exited normally or with an error.
	StateExited
	// StateKilled indicates the process was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// DefaultGrace is how long Stop waits after SIGTERM before SIGKILL.
const DefaultGrace = 500 * time.Millisecond

// Process is one child started by a Supervisor: a tool job or a language
// server. It runs as the leader of its own process group so that signals
// reach everything it spawns, such as the binary a test script runs.
type Process struct {
	ID   string
	Name string
	Cmd  *exec.Cmd

	// Pipes created by the Supervisor; nil for streams the command set.
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	Stderr io.ReadCloser

	Started time.Time

	done     chan struct{}
	state    atomic.Int32
	exitCode atomic.Int32

	mu       sync.RWMutex
	finished time.Time

	waitOnce sync.Once
}

// NewProcess wraps an unstarted command.
func NewProcess(id, name string, cmd *exec.Cmd) *Process {
	p := &Process{
		ID:   id,
		Name: name,
		Cmd:  cmd,
		done: make(chan struct{}),
	}
	p.state.Store(int32(StateCreated))
	p.exitCode.Store(-1)
	return p
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// ExitCode returns the process exit code.
// Returns -1 if the process has not exited or was killed by a signal.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// Done returns a channel that is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// IsRunning returns true if the process is currently running.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// HasExited returns true if the process has exited (normally or killed).
func (p *Process) HasExited() bool {
	state := p.State()
	return state == StateExited || state == StateKilled
}

// Signal sends a signal to the process group.
func (p *Process) Signal(sig syscall.Signal) error {
	if !p.IsRunning() || p.Cmd.Process == nil {
		return fmt.Errorf("signal %s: %w", p.Name, ErrProcessNotStarted)
	}
	return signalGroup(p.Cmd.Process.Pid, sig)
}

// Kill sends SIGKILL to the process group.
func (p *Process) Kill() error {
	return p.Signal(sigKill)
}

// Terminate sends SIGTERM to the process group.
func (p *Process) Terminate() error {
	return p.Signal(sigTerm)
}

// Stop terminates the process group, escalating to SIGKILL after grace,
// and returns once the process has been reaped.
func (p *Process) Stop(grace time.Duration) {
	if p.State() == StateCreated {
		return
	}
	if p.IsRunning() {
		_ = p.Terminate()
		select {
		case <-p.done:
		case <-time.After(grace):
			// The leader may be gone while the group lives on.
			_ = signalGroup(p.Cmd.Process.Pid, sigKill)
		}
	}
	<-p.done
	if p.Cmd.Process != nil {
		_ = signalGroup(p.Cmd.Process.Pid, sigKill)
	}
}

// Wait blocks until the process exits or ctx is done. When ctx ends first
// the process is stopped and ctx's error is returned.
func (p *Process) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.Stop(DefaultGrace)
		return ctx.Err()
	}
}

// start launches the command in a new process group.
func (p *Process) start() error {
	if p.State() != StateCreated {
		return ErrProcessAlreadyStarted
	}

	setGroup(p.Cmd)
	if p.Cmd.WaitDelay == 0 {
		p.Cmd.WaitDelay = time.Second
	}
	if err := p.Cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.Name, err)
	}

	p.Started = time.Now()
	p.state.Store(int32(StateRunning))

	go p.waitLoop()

	return nil
}

// waitLoop reaps the process and records how it ended.
func (p *Process) waitLoop() {
	p.waitOnce.Do(func() {
		err := p.Cmd.Wait()

		exitCode := 0
		state := StateExited

		var exitErr *exec.ExitError
		switch {
		case err == nil:
		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitCode()
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				state = StateKilled
			}
		default:
			exitCode = -1
		}

		p.mu.Lock()
		p.finished = time.Now()
		p.mu.Unlock()

		p.exitCode.Store(int32(exitCode))
		p.state.Store(int32(state))
		close(p.done)
	})
}

// Runtime returns how long the process ran, or has been running.
func (p *Process) Runtime() time.Duration {
	if p.Started.IsZero() {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.finished.IsZero() {
		return p.finished.Sub(p.Started)
	}
	return time.Since(p.Started)
}

// Close closes the pipes the Supervisor created and stops the process
// group. It lets a Process serve as the closer of a language server
// connection.
func (p *Process) Close() error {
	var errs []error
	for _, c := range []io.Closer{p.Stdin, p.Stdout, p.Stderr} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	p.Stop(DefaultGrace)
	return errors.Join(errs...)
}
