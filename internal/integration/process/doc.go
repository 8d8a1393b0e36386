// Package process runs the external tools the editor drives: formatters,
// compilers, test programs and language servers.
//
// Every child is started as the leader of its own process group, so a
// compiler driver and the tools it spawns are terminated together.
//
// # Supervisor
//
// The Supervisor tracks the children of one buffer:
//
//	sup := process.NewSupervisor()
//	defer sup.Shutdown(time.Second)
//
//	cmd := exec.Command("g++", "-o", "a", "a.cpp")
//	proc, err := sup.Start("compile", cmd)
//	if err != nil {
//	    return err
//	}
//	if err := proc.Wait(ctx); err != nil {
//	    // ctx ended; the group has been stopped and reaped
//	}
//
// # Process
//
// Each Process wraps an exec.Cmd with a uuid, start time, exit code and a
// Done channel. Stop sends SIGTERM to the group, waits for a grace period
// and then sends SIGKILL, returning only after the child has been reaped.
//
// # Thread Safety
//
// Both Supervisor and Process are safe for concurrent use.
package process
