package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/blackwell-systems/duowatch/internal/duolingo"
	"github.com/blackwell-systems/duowatch/internal/store"
)

// Account is the slice of the platform client a track run needs.
type Account interface {
	FriendsByUsernames(ctx context.Context, usernames []string) ([]duolingo.Friend, error)
	TotalPoints(ctx context.Context) (int, error)
}

// Document is the whole-file stats store.
type Document interface {
	LoadOrInit() (store.Stats, error)
	Write(store.Stats) error
}

// Recorder receives a copy of every run's results. The SQLite archive
// implements it.
type Recorder interface {
	RecordRun(command string, at time.Time, stats store.Stats) (string, error)
}

// Tracker collects the day's point totals and folds them into the store.
type Tracker struct {
	Account  Account
	Store    Document
	Recorder Recorder // optional
	Logger   *slog.Logger

	// SelfName, when set, tracks the signed-in account's own total under
	// this username.
	SelfName string

	// Command labels archived runs. Defaults to "user-stats".
	Command string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run fetches the tracked friends' totals (and the account's own total when
// SelfName is set), updates every record, and writes the store once at the
// end. It returns the updated stats.
func (t *Tracker) Run(ctx context.Context, usernames []string) (store.Stats, error) {
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	friends, err := t.Account.FriendsByUsernames(ctx, usernames)
	if err != nil {
		return nil, fmt.Errorf("fetching friends: %w", err)
	}

	stats, err := t.Store.LoadOrInit()
	if err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}

	for _, f := range friends {
		Update(stats, f.Username, f.Points, now())
		logger.Debug("updated friend", "user", f.Username, "points", f.Points)
	}
	if len(friends) < len(usernames) {
		logger.Warn("some tracked users are not in the friends ranking",
			"tracked", len(usernames), "found", len(friends))
	}

	if t.SelfName != "" {
		points, err := t.Account.TotalPoints(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching account points: %w", err)
		}
		Update(stats, t.SelfName, points, now())
		logger.Debug("updated self", "user", t.SelfName, "points", points)
	}

	if err := t.Store.Write(stats); err != nil {
		return nil, fmt.Errorf("writing stats: %w", err)
	}

	if t.Recorder != nil {
		command := t.Command
		if command == "" {
			command = "user-stats"
		}
		id, err := t.Recorder.RecordRun(command, now(), stats)
		if err != nil {
			// The JSON document is the source of truth; a failed archive
			// write only costs trend data.
			logger.Warn("archiving run failed", "err", err)
		} else {
			logger.Debug("archived run", "run", id)
		}
	}

	return stats, nil
}
