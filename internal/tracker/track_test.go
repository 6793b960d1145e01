package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/duowatch/internal/duolingo"
	"github.com/blackwell-systems/duowatch/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccount struct {
	friends   []duolingo.Friend
	total     int
	friendErr error
	asked     []string
}

func (f *fakeAccount) FriendsByUsernames(_ context.Context, usernames []string) ([]duolingo.Friend, error) {
	f.asked = usernames
	if f.friendErr != nil {
		return nil, f.friendErr
	}
	wanted := map[string]bool{}
	for _, u := range usernames {
		wanted[u] = true
	}
	var out []duolingo.Friend
	for _, fr := range f.friends {
		if wanted[fr.Username] {
			out = append(out, fr)
		}
	}
	return out, nil
}

func (f *fakeAccount) TotalPoints(context.Context) (int, error) {
	return f.total, nil
}

type fakeRecorder struct {
	runs  int
	users int
	err   error
}

func (r *fakeRecorder) RecordRun(_ string, _ time.Time, stats store.Stats) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.runs++
	r.users = len(stats)
	return "run-1", nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRun_EmptyStore(t *testing.T) {
	doc := store.NewFile(filepath.Join(t.TempDir(), ".duo_data", "db.json"))
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)

	tr := &Tracker{
		Account: &fakeAccount{friends: []duolingo.Friend{{Username: "alice", Points: 120}, {Username: "zoe", Points: 5}}},
		Store:   doc,
		Now:     fixedNow(now),
	}

	stats, err := tr.Run(context.Background(), []string{"alice"})
	require.NoError(t, err)

	require.Len(t, stats, 1)
	alice := stats["alice"]
	assert.Equal(t, 120, alice.TotalPoints)
	assert.Equal(t, 0, alice.PointDiff)
	assert.Equal(t, 120, alice.History[store.DayOf(now)].Points)

	// The document on disk matches what Run returned.
	onDisk, err := doc.Read()
	require.NoError(t, err)
	assert.Equal(t, 120, onDisk["alice"].TotalPoints)
}

func TestRun_ExistingHistoryAndSelf(t *testing.T) {
	doc := store.NewFile(filepath.Join(t.TempDir(), "db.json"))
	prev := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	require.NoError(t, doc.Write(store.Stats{
		"alice": {
			TotalPoints: 100,
			Updated:     store.NewTimestamp(prev),
			History: map[store.Day]store.HistoryEntry{
				store.DayOf(prev): {Points: 100, ExactTimeReported: store.NewTimestamp(prev)},
			},
		},
	}))

	rec := &fakeRecorder{}
	account := &fakeAccount{
		friends: []duolingo.Friend{{Username: "alice", Points: 150}},
		total:   900,
	}
	tr := &Tracker{
		Account:  account,
		Store:    doc,
		Recorder: rec,
		SelfName: "owner",
		Now:      fixedNow(prev.AddDate(0, 0, 1)),
	}

	stats, err := tr.Run(context.Background(), []string{"alice", "missing"})
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "missing"}, account.asked)
	assert.Equal(t, 50, stats["alice"].PointDiff)
	assert.Equal(t, 900, stats["owner"].TotalPoints)
	assert.Equal(t, 1, rec.runs)
	assert.Equal(t, 2, rec.users)
}

func TestRun_FetchErrorLeavesStoreUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	doc := store.NewFile(path)
	boom := errors.New("network down")

	tr := &Tracker{Account: &fakeAccount{friendErr: boom}, Store: doc}
	_, err := tr.Run(context.Background(), []string{"alice"})

	assert.ErrorIs(t, err, boom)
	_, readErr := doc.Read()
	assert.ErrorIs(t, readErr, store.ErrNotFound)
}

func TestRun_ArchiveFailureIsNotFatal(t *testing.T) {
	doc := store.NewFile(filepath.Join(t.TempDir(), "db.json"))
	tr := &Tracker{
		Account:  &fakeAccount{friends: []duolingo.Friend{{Username: "alice", Points: 1}}},
		Store:    doc,
		Recorder: &fakeRecorder{err: errors.New("disk full")},
	}

	stats, err := tr.Run(context.Background(), []string{"alice"})
	require.NoError(t, err)
	assert.Contains(t, stats, "alice")
}
