package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

// Bar renders a proportional bar for value out of max.
// Example: "████████░░"
func Bar(value, max, width int) string {
	if width <= 0 {
		width = 20
	}
	if max <= 0 {
		return StyleMuted.Render(strings.Repeat("░", width))
	}
	filled := value * width / max
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return StylePoints.Render(strings.Repeat("█", filled)) +
		StyleMuted.Render(strings.Repeat("░", width-filled))
}

// PointsArrow returns a styled indicator for a points delta.
// Gains show an up arrow, losses a down arrow, and zero a dash.
func PointsArrow(delta int) string {
	switch {
	case delta > 0:
		return StyleSuccess.Render(fmt.Sprintf("▲ +%s", humanize.Comma(int64(delta))))
	case delta < 0:
		return StyleError.Render(fmt.Sprintf("▼ %s", humanize.Comma(int64(delta))))
	default:
		return StyleMuted.Render("─")
	}
}

// Points formats an XP total with thousands separators.
func Points(n int) string {
	return StylePoints.Render(humanize.Comma(int64(n)) + " XP")
}

// Ago renders how long ago t was, to the two largest units.
// A zero time renders as "never".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	if d < time.Minute {
		return "just now"
	}
	return durafmt.Parse(d.Truncate(time.Minute)).LimitFirstN(2).String() + " ago"
}

// Streak renders a streak length, or a dash when there is none.
func Streak(days int) string {
	if days <= 0 {
		return StyleMuted.Render("─")
	}
	return StyleSuccess.Render(fmt.Sprintf("%d days", days))
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}
