package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/blackwell-systems/duowatch/internal/config"
	"github.com/blackwell-systems/duowatch/internal/output"
	"github.com/blackwell-systems/duowatch/internal/store"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the tracked users from the local stats store",
	Long: `Print every user in the stats store with their XP total, the change at
the last update and when they were last seen gaining points. Reads the
store only; nothing is fetched or posted.`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	stats, err := store.NewFile(cfg.StorePath()).Read()
	if errors.Is(err, store.ErrNotFound) {
		if flagJSON {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "{}")
			return nil
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No stats yet. Run 'duowatch user-stats' to create %s\n", cfg.StorePath())
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), stats)
	}

	renderStats(cmd.OutOrStdout(), stats, time.Now())
	return nil
}

// renderStats writes the store as a table, one row per user.
func renderStats(w io.Writer, stats store.Stats, now time.Time) {
	_, _ = fmt.Fprintln(w, output.Section("Tracked users"))
	_, _ = fmt.Fprintln(w)

	tbl := output.NewTable("User", "XP", "Change", "Streak", "Last active", "Updated").AlignRight(1)
	for _, name := range stats.Usernames() {
		rec := stats[name]
		var lastActive time.Time
		if rec.LastActive != nil {
			lastActive = rec.LastActive.Time
		}
		tbl.AddRow(
			output.StyleBold.Render(name),
			output.Points(rec.TotalPoints),
			output.PointsArrow(rec.PointDiff),
			output.Streak(rec.StreakDays),
			output.Ago(lastActive, now),
			output.Ago(rec.Updated.Time, now),
		)
	}
	tbl.Fprint(w)
	_, _ = fmt.Fprintf(w, "\n %s\n\n", output.StyleMuted.Render(fmt.Sprintf("%d users", len(stats))))
}
