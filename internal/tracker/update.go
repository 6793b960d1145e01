// Package tracker updates per-user point history from freshly fetched totals.
package tracker

import (
	"math"
	"time"

	"github.com/blackwell-systems/duowatch/internal/store"
)

// Update folds a fresh point total for username into stats. A first
// sighting creates the record; otherwise the delta, activity and streak
// fields are recomputed and today's history entry is written, replacing an
// earlier entry from the same day. Only the in-memory map is touched.
func Update(stats store.Stats, username string, points int, now time.Time) {
	today := store.DayOf(now)
	stamp := store.NewTimestamp(now)

	rec, ok := stats[username]
	if !ok || rec == nil {
		stats[username] = &store.UserStatRecord{
			TotalPoints: points,
			Updated:     stamp,
			History: map[store.Day]store.HistoryEntry{
				today: {Points: points, ExactTimeReported: stamp},
			},
		}
		return
	}
	if rec.History == nil {
		rec.History = make(map[store.Day]store.HistoryEntry)
	}

	rec.TotalPoints = points
	rec.PointDiff = ScoreDiff(rec, points)
	rec.LastActive = LastActive(rec)
	rec.Updated = stamp
	rec.StreakDays = StreakDays(rec, now)
	rec.History[today] = store.HistoryEntry{
		Points:            points,
		PointDiff:         ScoreDiff(rec, points),
		ExactTimeReported: stamp,
	}
}

// ScoreDiff returns current minus the points of the most recent history
// entry, or 0 when there is no history.
func ScoreDiff(rec *store.UserStatRecord, current int) int {
	if rec == nil {
		return 0
	}
	_, latest, ok := rec.Latest()
	if !ok {
		return 0
	}
	return current - latest.Points
}

// LastActive derives the last_active field from the record as it stands
// before Updated is overwritten. It returns the record's previous Updated
// time when the current delta is positive or any history day gained points,
// and nil otherwise.
//
// NOTE: the matching history day's own report time is not used; any positive
// day maps to the previous Updated value. Existing documents depend on this,
// so it is kept as is. A record with no Updated time (a hand-edited or
// truncated document) has no previous update to report, so the result is
// nil, which is what a null updated value would carry into last_active.
func LastActive(rec *store.UserStatRecord) *store.Timestamp {
	if rec.Updated.IsZero() {
		return nil
	}
	if rec.PointDiff > 0 || anyGain(rec) {
		ts := rec.Updated
		return &ts
	}
	return nil
}

func anyGain(rec *store.UserStatRecord) bool {
	for _, entry := range rec.History {
		if entry.PointDiff > 0 {
			return true
		}
	}
	return false
}

// StreakDays extends the streak by one when last_active lies exactly one
// whole day ahead of now and resets it to 0 otherwise. The day count is
// floored, so any last_active at or before now gives a negative or zero
// count and the streak resets.
//
// NOTE: last_active is never after now, so this always returns 0 in
// practice. Kept until the intended streak rule is settled.
func StreakDays(rec *store.UserStatRecord, now time.Time) int {
	if rec.LastActive == nil || rec.LastActive.IsZero() {
		return 0
	}
	if wholeDays(rec.LastActive.Sub(now)) == 1 {
		return rec.StreakDays + 1
	}
	return 0
}

// wholeDays floors d to a count of 24h days.
func wholeDays(d time.Duration) int {
	return int(math.Floor(d.Hours() / 24))
}
