//go:build windows

package app

import (
	"fmt"
	"io"
	"os"
)

// shutdownSignals are the OS signals that stop a watch loop.
var shutdownSignals = []os.Signal{os.Interrupt}

// stopDaemon terminates the PID recorded by a running watch daemon.
func stopDaemon(w io.Writer) error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no daemon running (could not read PID file: %v)", err)
	}

	if !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("no daemon running (PID %d is not active, cleaned up stale PID file)", pid)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process (PID %d): %w", pid, err)
	}

	// No graceful SIGTERM on Windows; Kill ends the process immediately.
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}

	_ = os.Remove(pidFilePath())
	_, _ = fmt.Fprintf(w, "Stopped daemon (PID %d)\n", pid)
	return nil
}

// processExists reports whether pid is a live process.
func processExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// FindProcess always succeeds on Windows; a nil signal fails for dead PIDs.
	return proc.Signal(os.Signal(nil)) == nil
}
