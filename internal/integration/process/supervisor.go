package process

import (
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Supervisor owns the child processes started for one editor buffer: tool
// jobs and the language server. Shutdown reaps all of them. It is safe for
// concurrent use.
type Supervisor struct {
	mu     sync.Mutex
	procs  map[string]*Process
	closed bool
	reaped sync.WaitGroup
}

// NewSupervisor returns an empty supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{procs: make(map[string]*Process)}
}

// Start runs cmd under a fresh uuid. Standard streams the command leaves
// nil are piped and exposed on the Process. After Shutdown it returns
// ErrSupervisorShutdown.
func (s *Supervisor) Start(name string, cmd *exec.Cmd) (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSupervisorShutdown
	}

	proc := NewProcess(uuid.NewString(), name, cmd)
	var pipes []io.Closer
	fail := func(err error) (*Process, error) {
		for _, p := range pipes {
			_ = p.Close()
		}
		return nil, err
	}

	if cmd.Stdin == nil {
		w, err := cmd.StdinPipe()
		if err != nil {
			return fail(err)
		}
		proc.Stdin, pipes = w, append(pipes, w)
	}
	if cmd.Stdout == nil {
		r, err := cmd.StdoutPipe()
		if err != nil {
			return fail(err)
		}
		proc.Stdout, pipes = r, append(pipes, r)
	}
	if cmd.Stderr == nil {
		r, err := cmd.StderrPipe()
		if err != nil {
			return fail(err)
		}
		proc.Stderr, pipes = r, append(pipes, r)
	}
	if err := proc.start(); err != nil {
		return fail(err)
	}

	s.procs[proc.ID] = proc
	s.reaped.Add(1)
	go func() {
		defer s.reaped.Done()
		<-proc.Done()
		s.mu.Lock()
		delete(s.procs, proc.ID)
		s.mu.Unlock()
	}()
	return proc, nil
}

// Len returns the number of live processes.
func (s *Supervisor) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// Stop terminates the process with the given id and waits for it.
func (s *Supervisor) Stop(id string, grace time.Duration) error {
	s.mu.Lock()
	proc := s.procs[id]
	s.mu.Unlock()
	if proc == nil {
		return ErrProcessNotFound
	}
	proc.Stop(grace)
	return nil
}

// Shutdown refuses new processes, stops the live ones (SIGTERM, then
// SIGKILL after grace) and blocks until every one is reaped.
func (s *Supervisor) Shutdown(grace time.Duration) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	live := make([]*Process, 0, len(s.procs))
	for _, p := range s.procs {
		live = append(live, p)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range live {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Stop(grace)
		}()
	}
	wg.Wait()
	s.reaped.Wait()
}

// IsShutdown reports whether Shutdown has been called.
func (s *Supervisor) IsShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
