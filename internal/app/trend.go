package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/duowatch/internal/archive"
	"github.com/blackwell-systems/duowatch/internal/config"
	"github.com/blackwell-systems/duowatch/internal/output"
	"github.com/spf13/cobra"
)

var (
	trendUser string
	trendRuns int
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show a user's XP over recent runs",
	Long: `Read the run archive and show how one user's XP total moved across the
most recent runs. Without --user, lists the most recent runs instead.

Examples:
  duowatch trend --user alice            # last 14 runs for alice
  duowatch trend --user alice --runs 30  # last 30 runs
  duowatch trend                         # recent runs`,
	Args: cobra.NoArgs,
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().StringVar(&trendUser, "user", "", "Username to chart")
	trendCmd.Flags().IntVar(&trendRuns, "runs", 14, "Number of most recent runs to include")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	if trendRuns <= 0 {
		return fmt.Errorf("--runs must be positive, got %d", trendRuns)
	}

	path := config.ArchivePath()
	if _, err := os.Stat(path); err != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No archive yet at %s. Run 'duowatch user-stats' with archive enabled.\n", path)
		return nil
	}

	db, err := archive.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() { _ = db.Close() }()

	w := cmd.OutOrStdout()
	if trendUser == "" {
		runs, err := db.LatestRuns(trendRuns)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		if flagJSON {
			return writeJSON(w, runs)
		}
		renderRuns(w, runs)
		return nil
	}

	rows, err := db.UserHistory(trendUser, trendRuns)
	if err != nil {
		return fmt.Errorf("loading history for %s: %w", trendUser, err)
	}
	if flagJSON {
		return writeJSON(w, rows)
	}
	renderTrend(w, trendUser, rows)
	return nil
}

// renderTrend charts rows (oldest first) as a table with a bar per run
// scaled to the largest total shown.
func renderTrend(w io.Writer, username string, rows []archive.PointRow) {
	_, _ = fmt.Fprintln(w, output.Section("XP trend: "+username))
	_, _ = fmt.Fprintln(w)

	if len(rows) == 0 {
		_, _ = fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No archived runs include this user."))
		return
	}

	top := 0
	for _, r := range rows {
		if r.TotalPoints > top {
			top = r.TotalPoints
		}
	}

	tbl := output.NewTable("Taken", "XP", "Since previous", "").AlignRight(1)
	for i, r := range rows {
		delta := 0
		if i > 0 {
			delta = r.TotalPoints - rows[i-1].TotalPoints
		}
		tbl.AddRow(
			r.TakenAt.Local().Format("2006-01-02 15:04"),
			output.Points(r.TotalPoints),
			output.PointsArrow(delta),
			output.Bar(r.TotalPoints, top, 20),
		)
	}
	tbl.Fprint(w)

	gain := rows[len(rows)-1].TotalPoints - rows[0].TotalPoints
	_, _ = fmt.Fprintf(w, "\n %s %s\n\n", output.StyleMuted.Render(fmt.Sprintf("over %d runs:", len(rows))), output.PointsArrow(gain))
}

// renderRuns lists archived runs, newest first.
func renderRuns(w io.Writer, runs []archive.Run) {
	_, _ = fmt.Fprintln(w, output.Section("Recent runs"))
	_, _ = fmt.Fprintln(w)

	if len(runs) == 0 {
		_, _ = fmt.Fprintf(w, " %s\n\n", output.StyleMuted.Render("No runs archived yet."))
		return
	}

	tbl := output.NewTable("Run", "Taken", "Command", "Version")
	for _, r := range runs {
		tbl.AddRow(
			shortID(r.ID),
			r.TakenAt.Local().Format("2006-01-02 15:04"),
			r.Command,
			r.Version,
		)
	}
	tbl.Fprint(w)
	_, _ = fmt.Fprintln(w)
}

// shortID trims a run ID to its first eight characters.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
