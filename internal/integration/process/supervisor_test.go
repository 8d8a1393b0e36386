package process

import (
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSupervisorStart(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	cmd := exec.Command("echo", "hello")
	cmd.Stdin = strings.NewReader("")
	proc, err := s.Start("echo", cmd)
	require.NoError(t, err)
	require.Len(t, proc.ID, 36, "ids are uuids")
	require.NotNil(t, proc.Stdout)
	require.Nil(t, proc.Stdin, "stdin was provided")

	out, err := io.ReadAll(proc.Stdout)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(out))

	<-proc.Done()
	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSupervisorStartFailure(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	_, err := s.Start("missing", exec.Command("/definitely/not/here"))
	require.Error(t, err)
	require.Zero(t, s.Len())
}

func TestSupervisorPipes(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	proc, err := s.Start("cat", exec.Command("cat"))
	require.NoError(t, err)

	_, err = io.WriteString(proc.Stdin, "ping")
	require.NoError(t, err)
	require.NoError(t, proc.Stdin.Close())

	out, err := io.ReadAll(proc.Stdout)
	require.NoError(t, err)
	require.Equal(t, "ping", string(out))
	<-proc.Done()
	require.Equal(t, 0, proc.ExitCode())
}

func TestProcessCloseAsConnectionCloser(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	proc, err := s.Start("server", exec.Command("cat"))
	require.NoError(t, err)

	var c io.Closer = proc
	require.NoError(t, c.Close())
	require.True(t, proc.HasExited())
	require.NoError(t, proc.Close(), "closing twice is harmless")
}

func TestSupervisorStop(t *testing.T) {
	s := NewSupervisor()
	defer s.Shutdown(time.Second)

	cmd := exec.Command("sleep", "10")
	cmd.Stdin = strings.NewReader("")
	proc, err := s.Start("sleep", cmd)
	require.NoError(t, err)

	require.NoError(t, s.Stop(proc.ID, 100*time.Millisecond))
	require.True(t, proc.HasExited())
	require.ErrorIs(t, s.Stop("nope", 0), ErrProcessNotFound)
}

func TestSupervisorShutdown(t *testing.T) {
	s := NewSupervisor()

	for range 3 {
		cmd := exec.Command("/bin/sh", "-c", "trap '' TERM; sleep 10")
		cmd.Stdin = strings.NewReader("")
		_, err := s.Start("stubborn", cmd)
		require.NoError(t, err)
	}
	require.Equal(t, 3, s.Len())

	start := time.Now()
	s.Shutdown(100 * time.Millisecond)
	require.Less(t, time.Since(start), 5*time.Second, "SIGKILL follows the grace period")
	require.Zero(t, s.Len())
	require.True(t, s.IsShutdown())

	_, err := s.Start("late", exec.Command("true"))
	require.ErrorIs(t, err, ErrSupervisorShutdown)

	s.Shutdown(time.Second)
}
