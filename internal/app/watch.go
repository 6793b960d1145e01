package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/duowatch/internal/config"
	"github.com/blackwell-systems/duowatch/internal/output"
	"github.com/spf13/cobra"
)

const minWatchInterval = time.Minute

var (
	watchDaemon   bool
	watchInterval string
	watchStop     bool
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [reminder] [user-stats]",
	Short: "Repeat the reminder and stats run on an interval",
	Long: `Run the chosen actions once, then again every interval until interrupted.
Each cycle logs in only if needed and reuses the archive connection.

Examples:
  duowatch watch user-stats                  # run in foreground (ctrl-c to stop)
  duowatch watch reminder user-stats         # both, every 24h (default)
  duowatch watch user-stats --interval 6h    # every six hours
  duowatch watch user-stats --daemon         # write PID file, log to file
  duowatch watch --stop                      # stop the background daemon`,
	Args: cobra.ArbitraryArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "24h", "Time between runs as duration string (e.g. 6h, 90m)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon(cmd.OutOrStdout())
	}

	acts := parseActions(args)
	if !acts.any() {
		return fmt.Errorf("nothing to watch: pass %q and/or %q", tokenReminder, tokenUserStats)
	}

	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", watchInterval, err)
	}
	if interval < minWatchInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minWatchInterval, interval)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if watchDaemon {
		return runDaemon(cfg, acts, interval)
	}
	return runForeground(cmd, cfg, acts, interval)
}

// runForeground runs the loop with live terminal output.
func runForeground(cmd *cobra.Command, cfg *config.Config, acts actions, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	out := cmd.OutOrStdout()
	if watchQuiet {
		out = io.Discard
	}

	s, err := newSession(cfg, newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	_, _ = fmt.Fprintf(out, "duowatch watching... (%s every %s)\n", describeActions(acts), interval)

	err = loop(ctx, interval, func(ctx context.Context) {
		start := time.Now()
		if err := runActions(ctx, s, acts, "watch", nil); err != nil {
			_, _ = fmt.Fprintf(out, "[%s] %s %v\n", start.Format("15:04:05"), output.StyleError.Render("✗"), err)
			return
		}
		_, _ = fmt.Fprintf(out, "[%s] %s %s done\n", start.Format("15:04:05"), output.StyleSuccess.Render(checkMark()), describeActions(acts))
	})
	if errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(out, "\nStopped.")
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the loop. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(cfg *config.Config, acts actions, interval time.Duration) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	logger := newLogger(logFile)

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	s, err := newSession(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	logger.Info("daemon started", "pid", pid, "interval", interval, "actions", describeActions(acts))

	err = loop(ctx, interval, func(ctx context.Context) {
		if err := runActions(ctx, s, acts, "watch", nil); err != nil {
			logger.Error("cycle failed", "err", err)
			return
		}
		logger.Info("cycle done")
	})
	if errors.Is(err, context.Canceled) {
		logger.Info("daemon stopped")
		return nil
	}
	return err
}

// loop calls fn immediately and then once per interval until ctx is done.
// It returns ctx.Err().
func loop(ctx context.Context, interval time.Duration, fn func(context.Context)) error {
	fn(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn(ctx)
		}
	}
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// describeActions names the enabled actions in run order.
func describeActions(a actions) string {
	var names []string
	if a.Reminder {
		names = append(names, tokenReminder)
	}
	if a.UserStats {
		names = append(names, tokenUserStats)
	}
	return strings.Join(names, " + ")
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return "\xe2\x9c\x93"
}
