package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestDesktop_DoesNotPanic(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"reminder", Reminder{Site: "Duo Lingo", URL: "https://www.duolingo.com"}},
		{"stats", UserStats{Username: "alice", TotalPoints: 1200, PointDiff: 30, StreakDays: 2}},
		{"empty text", Text("")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Send may use osascript, notify-send or stderr depending on the
			// environment. We only verify it does not panic.
			_ = NewDesktop().Send(context.Background(), tc.msg)
		})
	}
}

func TestDesktop_FallbackWritesPlainText(t *testing.T) {
	var buf bytes.Buffer
	d := &Desktop{goos: "plan9", fallback: &buf}

	err := d.Send(context.Background(), Reminder{Site: "Duo Lingo", URL: "https://www.duolingo.com"})
	if err != nil {
		t.Fatalf("unexpected error from fallback: %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "[duowatch] Daily reminder:") {
		t.Errorf("missing title prefix in %q", got)
	}
	if !strings.Contains(got, "Duo Lingo (https://www.duolingo.com)") {
		t.Errorf("expected plain link in %q", got)
	}
	if strings.Contains(got, "<https://") {
		t.Errorf("fallback should not carry Slack markup: %q", got)
	}
}
