// Package app contains the Cobra command tree for duowatch.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/blackwell-systems/duowatch/internal/archive"
	"github.com/blackwell-systems/duowatch/internal/config"
	"github.com/blackwell-systems/duowatch/internal/output"
	"github.com/spf13/cobra"
)

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	archive.Version = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "duowatch [reminder] [user-stats]",
	Short: "Daily language-study reminders and friends' XP tracking",
	Long: `duowatch posts a daily study reminder to chat and keeps a running log of
your friends' Duolingo XP, reporting each one's gain since the last run.

Actions are picked by the words on the command line, in any order:
  duowatch reminder               # post the daily reminder
  duowatch user-stats             # fetch totals, update the store, post stats
  duowatch reminder user-stats    # both; the reminder goes first`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagNoColor {
			output.SetNoColor(true)
		} else {
			output.AutoColor()
		}
	},
	RunE: runDispatch,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file path (default: "+path.Join(config.DefaultConfigDir, config.DefaultConfigFile)+")")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}

// newLogger returns the diagnostic logger. Debug records are kept only
// with --verbose.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
