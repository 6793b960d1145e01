//go:build !windows

package app

import (
	"fmt"
	"io"
	"os"
	"syscall"
)

// shutdownSignals are the OS signals that stop a watch loop.
var shutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// stopDaemon sends SIGTERM to the PID recorded by a running watch daemon.
func stopDaemon(w io.Writer) error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no daemon running (could not read PID file: %v)", err)
	}

	if !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("no daemon running (PID %d is not active, cleaned up stale PID file)", pid)
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}

	// The daemon removes its own PID file on exit; this covers a slow exit.
	_ = os.Remove(pidFilePath())
	_, _ = fmt.Fprintf(w, "Stopped daemon (PID %d)\n", pid)
	return nil
}

// processExists reports whether pid is a live process.
func processExists(pid int) bool {
	// Signal 0 probes without delivering anything.
	return syscall.Kill(pid, 0) == nil
}
