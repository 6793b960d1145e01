package notify

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/duowatch/internal/store"
	"github.com/dustin/go-humanize"
)

// Dialect renders the bits of markup that differ between chat services.
type Dialect struct {
	Bold func(s string) string
	Link func(text, url string) string
}

var (
	// SlackDialect is Slack mrkdwn.
	SlackDialect = Dialect{
		Bold: func(s string) string { return "*" + s + "*" },
		Link: func(text, url string) string { return fmt.Sprintf("<%s|%s>", url, text) },
	}

	// DiscordDialect is Discord markdown.
	DiscordDialect = Dialect{
		Bold: func(s string) string { return "**" + s + "**" },
		Link: func(text, url string) string { return fmt.Sprintf("[%s](<%s>)", text, url) },
	}

	// PlainDialect drops markup, for desktop notifications and terminals.
	PlainDialect = Dialect{
		Bold: func(s string) string { return s },
		Link: func(text, url string) string { return fmt.Sprintf("%s (%s)", text, url) },
	}
)

// Message is anything a sink can render in its own dialect.
type Message interface {
	Title() string
	Render(d Dialect) string
}

// Text is a preformatted message posted verbatim.
type Text string

// Title implements Message.
func (t Text) Title() string { return "duowatch" }

// Render implements Message.
func (t Text) Render(Dialect) string { return string(t) }

// Reminder is the daily nudge to go study.
type Reminder struct {
	Site string
	URL  string
}

// Title implements Message.
func (r Reminder) Title() string { return "Daily reminder" }

// Render implements Message.
func (r Reminder) Render(d Dialect) string {
	return "This is your daily reminder to do some foreign language study on " + d.Link(r.Site, r.URL)
}

// UserStats summarizes one user's record.
type UserStats struct {
	Username    string
	TotalPoints int
	PointDiff   int
	StreakDays  int
}

// UserStatsFrom builds the summary for one stored record.
func UserStatsFrom(username string, rec *store.UserStatRecord) UserStats {
	return UserStats{
		Username:    username,
		TotalPoints: rec.TotalPoints,
		PointDiff:   rec.PointDiff,
		StreakDays:  rec.StreakDays,
	}
}

// AllUserStats returns a summary for every record, ordered by username.
func AllUserStats(stats store.Stats) []Message {
	msgs := make([]Message, 0, len(stats))
	for _, name := range stats.Usernames() {
		msgs = append(msgs, UserStatsFrom(name, stats[name]))
	}
	return msgs
}

// Title implements Message.
func (u UserStats) Title() string { return u.Username + " stats" }

// Render implements Message.
func (u UserStats) Render(d Dialect) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Stats:\n", d.Bold(u.Username))
	fmt.Fprintf(&sb, "\tTotal XP: %s :star:\n", d.Bold(humanize.Comma(int64(u.TotalPoints))))
	fmt.Fprintf(&sb, "\tPoints since last day active: %s\n", d.Bold(fmt.Sprintf("%+dXP", u.PointDiff)))
	fmt.Fprintf(&sb, "\t%s\n\n\n", FormatStreak(d, u.StreakDays))
	return sb.String()
}

// FormatStreak is the streak line of a stats summary.
func FormatStreak(d Dialect, streakDays int) string {
	if streakDays > 0 {
		return "Your streak " + d.Bold(fmt.Sprintf("%d days", streakDays)) + " :tada:"
	}
	return "Sadly you have no streak going :sob::sob::sob:"
}
