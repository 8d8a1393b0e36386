package tool

import (
	"fmt"
	"time"
)

// Kind names what a job does.
type Kind uint8

const (
	KindFormat Kind = iota
	KindCompile
	KindCompileOptimized
	KindTest
	KindLSP
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindCompile:
		return "compile"
	case KindCompileOptimized:
		return "compile-optimized"
	case KindTest:
		return "test"
	case KindLSP:
		return "lsp-session"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// State is the lifecycle state of a job.
type State uint8

const (
	StateStarting State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", s)
	}
}

// Job describes one tool run. Events carry a copy taken when they were
// produced.
type Job struct {
	ID       string
	Kind     Kind
	State    State
	Revision uint64
	Started  time.Time

	// Filled in when the job ends.
	ExitCode int
	Stdout   string
	Stderr   string
}

// Snapshot is the buffer content a job works on.
type Snapshot struct {
	// Path is the file on disk. Compile and test read it from there, so
	// the buffer must have been saved first.
	Path     string
	Text     string
	Revision uint64
}
