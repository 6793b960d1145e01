package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// Desktop shows messages as desktop notifications. On macOS it uses
// osascript, on Linux it tries notify-send. If neither is available, it falls
// back to writing to stderr.
type Desktop struct {
	goos     string
	fallback io.Writer
}

// NewDesktop returns a Desktop sink for the running OS.
func NewDesktop() *Desktop {
	return &Desktop{goos: runtime.GOOS, fallback: os.Stderr}
}

// Name implements Sink.
func (d *Desktop) Name() string { return "desktop" }

// Send implements Sink.
func (d *Desktop) Send(ctx context.Context, msg Message) error {
	title := msg.Title()
	body := msg.Render(PlainDialect)

	switch d.goos {
	case "darwin":
		return d.notifyMacOS(ctx, title, body)
	case "linux":
		return d.notifyLinux(ctx, title, body)
	default:
		return d.notifyFallback(title, body)
	}
}

// notifyMacOS sends a notification via osascript on macOS.
func (d *Desktop) notifyMacOS(ctx context.Context, title, body string) error {
	script := fmt.Sprintf(
		`display notification %q with title "duowatch" subtitle %q`,
		body, title,
	)
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		// Fall back to stderr if osascript fails.
		return d.notifyFallback(title, body)
	}
	return nil
}

// notifyLinux sends a notification via notify-send on Linux.
func (d *Desktop) notifyLinux(ctx context.Context, title, body string) error {
	if _, err := exec.LookPath("notify-send"); err != nil {
		return d.notifyFallback(title, body)
	}

	cmd := exec.CommandContext(ctx, "notify-send", "duowatch: "+title, body)
	if err := cmd.Run(); err != nil {
		return d.notifyFallback(title, body)
	}
	return nil
}

// notifyFallback prints the message when no desktop notification system is
// available.
func (d *Desktop) notifyFallback(title, body string) error {
	_, err := fmt.Fprintf(d.fallback, "[duowatch] %s: %s\n", title, body)
	return err
}
