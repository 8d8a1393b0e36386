package process

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewProcess(t *testing.T) {
	proc := NewProcess("test-id", "test-process", exec.Command("true"))

	require.Equal(t, "test-id", proc.ID)
	require.Equal(t, StateCreated, proc.State())
	require.Equal(t, -1, proc.ExitCode())
	require.False(t, proc.IsRunning())
	require.False(t, proc.HasExited())
	require.Zero(t, proc.Runtime())
}

func TestProcess_State_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateCreated, "created"},
		{StateRunning, "running"},
		{StateExited, "exited"},
		{StateKilled, "killed"},
		{State(42), "unknown(42)"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.state.String())
	}
}

func TestProcess_ExitCode(t *testing.T) {
	tests := []struct {
		script string
		want   int
	}{
		{"exit 0", 0},
		{"exit 3", 3},
		{"exit 127", 127},
	}
	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			cmd := exec.Command("/bin/sh", "-c", tt.script)
			cmd.Stdin = strings.NewReader("")
			cmd.Stdout = &bytes.Buffer{}
			cmd.Stderr = &bytes.Buffer{}
			proc := NewProcess("id", "sh", cmd)
			require.NoError(t, proc.start())
			<-proc.Done()
			require.Equal(t, StateExited, proc.State())
			require.Equal(t, tt.want, proc.ExitCode())
			require.True(t, proc.HasExited())
			require.Positive(t, proc.Runtime())
		})
	}
}

func TestProcess_StartTwice(t *testing.T) {
	cmd := exec.Command("true")
	cmd.Stdin = strings.NewReader("")
	proc := NewProcess("id", "true", cmd)
	require.NoError(t, proc.start())
	require.ErrorIs(t, proc.start(), ErrProcessAlreadyStarted)
	<-proc.Done()
}

func TestProcess_SignalBeforeStart(t *testing.T) {
	proc := NewProcess("id", "sleep", exec.Command("sleep", "10"))
	require.ErrorIs(t, proc.Kill(), ErrProcessNotStarted)
}

func TestProcess_Kill(t *testing.T) {
	cmd := exec.Command("sleep", "10")
	cmd.Stdin = strings.NewReader("")
	proc := NewProcess("id", "sleep", cmd)
	require.NoError(t, proc.start())

	require.NoError(t, proc.Kill())
	<-proc.Done()
	require.Equal(t, StateKilled, proc.State())
	require.Equal(t, -1, proc.ExitCode())
}

func TestProcess_StopKillsWholeGroup(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "child.pid")

	// The child ignores SIGTERM and outlives a TERM to the leader alone.
	script := "trap '' TERM; (trap '' TERM; echo $$ >/dev/null; sleep 30) & echo $! > " + pidFile + "; wait"
	cmd := exec.Command("/bin/sh", "-c", script)
	cmd.Stdin = strings.NewReader("")
	proc := NewProcess("id", "group", cmd)
	require.NoError(t, proc.start())

	var childPID int
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(pidFile)
		if err != nil || len(strings.TrimSpace(string(data))) == 0 {
			return false
		}
		childPID, err = strconv.Atoi(strings.TrimSpace(string(data)))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	proc.Stop(100 * time.Millisecond)
	require.True(t, proc.HasExited())

	require.Eventually(t, func() bool {
		return gone(childPID)
	}, 5*time.Second, 10*time.Millisecond, "grandchild survived")
}

func TestProcess_WaitContext(t *testing.T) {
	cmd := exec.Command("sleep", "10")
	cmd.Stdin = strings.NewReader("")
	proc := NewProcess("id", "sleep", cmd)
	require.NoError(t, proc.start())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, proc.Wait(ctx), context.DeadlineExceeded)
	require.True(t, proc.HasExited())

	cmd = exec.Command("true")
	cmd.Stdin = strings.NewReader("")
	proc = NewProcess("id2", "true", cmd)
	require.NoError(t, proc.start())
	require.NoError(t, proc.Wait(context.Background()))
}

func TestProcess_StopBeforeStart(t *testing.T) {
	proc := NewProcess("id", "x", exec.Command("true"))
	proc.Stop(time.Millisecond)
	require.Equal(t, StateCreated, proc.State())
}

// gone reports whether pid has exited. An unreaped zombie counts as gone.
func gone(pid int) bool {
	if errors.Is(syscall.Kill(pid, 0), syscall.ESRCH) {
		return true
	}
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}
	// The state follows the parenthesised command name.
	i := strings.LastIndexByte(string(stat), ')')
	return i >= 0 && i+2 < len(stat) && stat[i+2] == 'Z'
}
