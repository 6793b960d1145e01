// Package store persists per-user point history as a single JSON document.
package store

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DayLayout is the history key format in the persisted document.
const DayLayout = "01/02/06"

// TimestampLayout is the timestamp format in the persisted document.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Stats maps usernames to their records.
type Stats map[string]*UserStatRecord

// UserStatRecord is one tracked user's current totals and daily history.
type UserStatRecord struct {
	TotalPoints int                  `json:"total_points"`
	PointDiff   int                  `json:"point_diff"`
	StreakDays  int                  `json:"streak_days"`
	LastActive  *Timestamp           `json:"last_active"`
	Updated     Timestamp            `json:"updated"`
	History     map[Day]HistoryEntry `json:"history"`
}

// HistoryEntry is the snapshot recorded for one calendar day.
type HistoryEntry struct {
	Points            int       `json:"points"`
	PointDiff         int       `json:"point_diff"`
	ExactTimeReported Timestamp `json:"exact_time_reported"`
}

// Usernames returns the store's keys in sorted order.
func (s Stats) Usernames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Days returns the record's history keys in chronological order.
func (r *UserStatRecord) Days() []Day {
	days := make([]Day, 0, len(r.History))
	for d := range r.History {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Latest returns the chronologically last history entry.
func (r *UserStatRecord) Latest() (Day, HistoryEntry, bool) {
	days := r.Days()
	if len(days) == 0 {
		return Day{}, HistoryEntry{}, false
	}
	last := days[len(days)-1]
	return last, r.History[last], true
}

// Day is a calendar date with no time or zone component.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Dom: d}
}

// ParseDay parses a MM/DD/YY history key.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parsing history day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Before reports whether d falls on an earlier date than o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Dom < o.Dom
}

// Time returns midnight UTC on d.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, time.UTC)
}

// String formats d as a MM/DD/YY history key.
func (d Day) String() string {
	return d.Time().Format(DayLayout)
}

// MarshalText implements encoding.TextMarshaler so Day can key a JSON object.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Timestamp is a wall-clock instant serialized in the document's layout.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON writes the timestamp as a quoted TimestampLayout string.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ts.Format(TimestampLayout) + `"`), nil
}

// UnmarshalJSON accepts TimestampLayout or RFC 3339 strings. Empty and
// "None" decode to the zero Timestamp.
func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}
	s := strings.Trim(string(b), `"`)
	// Older documents wrote a missing last_active as the string "None".
	if s == "" || s == "None" {
		*ts = Timestamp{}
		return nil
	}
	t, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(TimestampLayout, s, time.Local); err == nil {
		return t, nil
	}
	// Whole-second timestamps drop the fractional part.
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
