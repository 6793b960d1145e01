package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blackwell-systems/duowatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminder_Render(t *testing.T) {
	r := Reminder{Site: "Duo Lingo", URL: "https://www.duolingo.com"}

	assert.Equal(t,
		"This is your daily reminder to do some foreign language study on <https://www.duolingo.com|Duo Lingo>",
		r.Render(SlackDialect))
	assert.Contains(t, r.Render(DiscordDialect), "[Duo Lingo](<https://www.duolingo.com>)")
}

func TestUserStats_Render(t *testing.T) {
	u := UserStats{Username: "alice", TotalPoints: 1234567, PointDiff: 50, StreakDays: 0}

	want := "*alice* Stats:\n" +
		"\tTotal XP: *1,234,567* :star:\n" +
		"\tPoints since last day active: *+50XP*\n" +
		"\tSadly you have no streak going :sob::sob::sob:\n\n\n"
	assert.Equal(t, want, u.Render(SlackDialect))
}

func TestUserStats_RenderNegativeAndStreak(t *testing.T) {
	u := UserStats{Username: "bob", TotalPoints: 999, PointDiff: -5, StreakDays: 3}
	got := u.Render(DiscordDialect)

	assert.Contains(t, got, "**bob** Stats:")
	assert.Contains(t, got, "Total XP: **999**")
	assert.Contains(t, got, "**-5XP**")
	assert.Contains(t, got, "Your streak **3 days** :tada:")
}

func TestFormatStreak(t *testing.T) {
	assert.Equal(t, "Your streak *1 days* :tada:", FormatStreak(SlackDialect, 1))
	assert.Equal(t, "Sadly you have no streak going :sob::sob::sob:", FormatStreak(SlackDialect, 0))
	assert.Equal(t, "Sadly you have no streak going :sob::sob::sob:", FormatStreak(SlackDialect, -1))
}

func TestAllUserStats_SortedByUsername(t *testing.T) {
	stats := store.Stats{
		"zed":   {TotalPoints: 1},
		"alice": {TotalPoints: 2, PointDiff: 1},
	}
	msgs := AllUserStats(stats)
	require.Len(t, msgs, 2)
	assert.Equal(t, UserStats{Username: "alice", TotalPoints: 2, PointDiff: 1}, msgs[0])
	assert.Equal(t, "zed stats", msgs[1].Title())
}

func TestSlack_PostText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := NewSlack(srv.URL, time.Second, nil)
	require.NoError(t, s.Send(context.Background(), Text("hello")))
	assert.Equal(t, map[string]string{"text": "hello"}, got)
}

func TestSlack_ErrorStatusIsNotAnError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := NewSlack(srv.URL, time.Second, logger)

	require.NoError(t, s.PostText(context.Background(), "x"))
	require.NoError(t, s.Send(context.Background(), Text("y")))
	assert.Equal(t, int32(2), hits.Load())
	assert.Contains(t, logs.String(), "status=400")
}

func TestSlack_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.Error(t, NewSlack(url, time.Second, nil).PostText(context.Background(), "x"))
}

// recordingSink keeps what it was sent.
type recordingSink struct {
	name string
	mu   sync.Mutex
	got  []string
	err  error
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Send(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, msg.Render(PlainDialect))
	return nil
}

func TestMulti_FansOutInOrder(t *testing.T) {
	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	m := NewMulti(a, nil, b)

	assert.Equal(t, []string{"a", "b"}, m.Sinks())
	require.NoError(t, m.Send(context.Background(), Text("one"), Text("two")))

	assert.Equal(t, []string{"one", "two"}, a.got)
	assert.Equal(t, []string{"one", "two"}, b.got)
}

func TestMulti_ReportsSinkError(t *testing.T) {
	boom := errors.New("boom")
	ok := &recordingSink{name: "ok"}
	bad := &recordingSink{name: "bad", err: boom}

	err := NewMulti(ok, bad).Send(context.Background(), Text("x"))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad:")
	assert.Equal(t, []string{"x"}, ok.got)
}

func TestMulti_NoSinks(t *testing.T) {
	assert.ErrorIs(t, NewMulti().Send(context.Background(), Text("x")), ErrNoSinks)
}
