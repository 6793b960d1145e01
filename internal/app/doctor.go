package app

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/blackwell-systems/duowatch/internal/archive"
	"github.com/blackwell-systems/duowatch/internal/config"
	"github.com/blackwell-systems/duowatch/internal/output"
	"github.com/blackwell-systems/duowatch/internal/store"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the duowatch setup is healthy",
	Long: `Run a series of health checks against your duowatch configuration,
stats store and run archive. Prints a pass/fail line for each check
and a summary of how many checks passed. Nothing is sent or fetched.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	checks := []doctorCheck{
		checkCredentials(cfg),
		checkTrackedUsers(cfg.UsersToTrack),
		checkSinks(cfg),
		checkStore(cfg.StorePath()),
		checkArchive(cfg.Archive, config.ArchivePath()),
		checkWatchDaemon(pidFilePath()),
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	_, _ = fmt.Fprintln(w, output.Section("Doctor"))
	_, _ = fmt.Fprintln(w)

	for _, c := range checks {
		renderDoctorCheck(w, c)
	}

	_, _ = fmt.Fprintln(w)
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		_, _ = fmt.Fprintf(w, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		_, _ = fmt.Fprintf(w, " %s\n\n", output.StyleWarning.Render(summary))
	}

	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	var indicator string
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	} else {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleLabel.Render(output.StyleBold.Render(c.Name))
	detail := output.StyleMuted.Render(c.Message)
	_, _ = fmt.Fprintf(w, "  %s  %s %s\n", indicator, label, detail)
}

// checkCredentials verifies the account login is configured.
func checkCredentials(cfg *config.Config) doctorCheck {
	if err := cfg.Validate(); err != nil {
		return doctorCheck{
			Name:    "Account credentials",
			Passed:  false,
			Message: err.Error(),
		}
	}
	return doctorCheck{
		Name:    "Account credentials",
		Passed:  true,
		Message: "signing in as " + cfg.UserName,
	}
}

// checkTrackedUsers verifies at least one friend is listed in USERS_TO_TRACK.
func checkTrackedUsers(users []string) doctorCheck {
	if len(users) == 0 {
		return doctorCheck{
			Name:    "Tracked users",
			Passed:  false,
			Message: "USERS_TO_TRACK is empty",
		}
	}
	return doctorCheck{
		Name:    "Tracked users",
		Passed:  true,
		Message: fmt.Sprintf("%d: %s", len(users), strings.Join(users, ", ")),
	}
}

// checkSinks verifies at least one notification sink is configured and
// that the Slack webhook, when set, is an absolute http(s) URL.
func checkSinks(cfg *config.Config) doctorCheck {
	var names []string
	if cfg.SlackWebhook != "" {
		u, err := url.Parse(cfg.SlackWebhook)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return doctorCheck{
				Name:    "Notification sinks",
				Passed:  false,
				Message: "SLACK_WEB_HOOK_URL is not a valid http(s) URL",
			}
		}
		names = append(names, "slack")
	}
	if cfg.Discord.Enabled() {
		names = append(names, "discord")
	} else if cfg.Discord.Token != "" || cfg.Discord.ChannelID != "" {
		return doctorCheck{
			Name:    "Notification sinks",
			Passed:  false,
			Message: "discord needs both DISCORD_BOT_TOKEN and DISCORD_CHANNEL_ID",
		}
	}
	if cfg.Desktop {
		names = append(names, "desktop")
	}

	if len(names) == 0 {
		return doctorCheck{
			Name:    "Notification sinks",
			Passed:  false,
			Message: "none configured (set SLACK_WEB_HOOK_URL)",
		}
	}
	return doctorCheck{
		Name:    "Notification sinks",
		Passed:  true,
		Message: strings.Join(names, ", "),
	}
}

// checkStore verifies that the stats document exists and parses.
func checkStore(path string) doctorCheck {
	stats, err := store.NewFile(path).Read()
	if errors.Is(err, store.ErrNotFound) {
		return doctorCheck{
			Name:    "Stats store",
			Passed:  false,
			Message: fmt.Sprintf("not found at %s (run 'duowatch user-stats' to create)", path),
		}
	}
	if err != nil {
		return doctorCheck{
			Name:    "Stats store",
			Passed:  false,
			Message: fmt.Sprintf("parse error: %v", err),
		}
	}
	return doctorCheck{
		Name:    "Stats store",
		Passed:  true,
		Message: fmt.Sprintf("%d users in %s", len(stats), path),
	}
}

// checkArchive verifies that the run archive opens and reports its latest run.
func checkArchive(enabled bool, path string) doctorCheck {
	if !enabled {
		return doctorCheck{
			Name:    "Run archive",
			Passed:  true,
			Message: "disabled",
		}
	}
	if _, err := os.Stat(path); err != nil {
		return doctorCheck{
			Name:    "Run archive",
			Passed:  false,
			Message: fmt.Sprintf("not found at %s (created on the next user-stats run)", path),
		}
	}

	db, err := archive.Open(path)
	if err != nil {
		return doctorCheck{
			Name:    "Run archive",
			Passed:  false,
			Message: fmt.Sprintf("open error: %v", err),
		}
	}
	defer func() { _ = db.Close() }()

	runs, err := db.LatestRuns(1)
	if err != nil {
		return doctorCheck{
			Name:    "Run archive",
			Passed:  false,
			Message: fmt.Sprintf("query error: %v", err),
		}
	}
	if len(runs) == 0 {
		return doctorCheck{
			Name:    "Run archive",
			Passed:  true,
			Message: "empty",
		}
	}
	return doctorCheck{
		Name:    "Run archive",
		Passed:  true,
		Message: "last run " + runs[0].TakenAt.Local().Format("2006-01-02 15:04"),
	}
}

// checkWatchDaemon checks whether the watch daemon PID file exists and the process is running.
func checkWatchDaemon(pidPath string) doctorCheck {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: "not running (no PID file)",
		}
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: fmt.Sprintf("invalid PID in file: %q", pidStr),
		}
	}

	if !processExists(pid) {
		return doctorCheck{
			Name:    "Watch daemon",
			Passed:  false,
			Message: fmt.Sprintf("PID %d is not running (stale PID file)", pid),
		}
	}

	return doctorCheck{
		Name:    "Watch daemon",
		Passed:  true,
		Message: fmt.Sprintf("running (PID %d)", pid),
	}
}
