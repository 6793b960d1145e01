package app

import (
	"context"
	"fmt"
	"io"

	"github.com/blackwell-systems/duowatch/internal/config"
	"github.com/spf13/cobra"
)

const (
	tokenReminder  = "reminder"
	tokenUserStats = "user-stats"

	noMatchMessage = "Sorry there's no command that matches that"
)

// actions is the set of jobs requested on the command line.
type actions struct {
	Reminder  bool
	UserStats bool
}

func (a actions) any() bool { return a.Reminder || a.UserStats }

// parseActions looks for the known tokens anywhere in args. Unknown words
// are ignored and repeats count once.
func parseActions(args []string) actions {
	var a actions
	for _, arg := range args {
		switch arg {
		case tokenReminder:
			a.Reminder = true
		case tokenUserStats:
			a.UserStats = true
		}
	}
	return a
}

func runDispatch(cmd *cobra.Command, args []string) error {
	acts := parseActions(args)
	if !acts.any() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), noMatchMessage)
		return nil
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := newSession(cfg, newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return runActions(cmd.Context(), s, acts, tokenUserStats, cmd.OutOrStdout())
}

// runActions performs the requested jobs, reminder first. The first
// failure stops the rest.
func runActions(ctx context.Context, s *session, acts actions, command string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if acts.Reminder {
		if err := s.sendReminder(ctx); err != nil {
			return err
		}
		s.logger.Debug("reminder sent")
	}

	if acts.UserStats {
		stats, err := s.sendUserStats(ctx, command)
		if err != nil {
			return err
		}
		if w != nil {
			_, _ = fmt.Fprintf(w, "Updated %d users in %s\n", len(stats), s.cfg.StorePath())
		}
	}

	return nil
}
