package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRead_MissingFile(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "db.json"))

	stats, err := f.Read()
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	// Read must not create the file.
	_, statErr := os.Stat(f.Path())
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileWrite_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".duo_data", "db.json")
	f := NewFile(path)

	require.NoError(t, f.Write(Stats{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFileLoadOrInit_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.json")
	f := NewFile(path)

	stats, err := f.LoadOrInit()
	require.NoError(t, err)
	assert.Empty(t, stats)
	assert.NotNil(t, stats)

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestFileLoadOrInit_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("broken"), 0o644))

	_, err := NewFile(path).LoadOrInit()
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFile_RoundTrip(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "db.json"))
	now := time.Date(2024, 1, 2, 9, 30, 15, 123456000, time.Local)
	last := NewTimestamp(now.Add(-time.Hour))

	in := Stats{
		"alice": {
			TotalPoints: 150,
			PointDiff:   50,
			LastActive:  &last,
			Updated:     NewTimestamp(now),
			History: map[Day]HistoryEntry{
				{2024, time.January, 1}: {Points: 100, ExactTimeReported: NewTimestamp(now.AddDate(0, 0, -1))},
				{2024, time.January, 2}: {Points: 150, PointDiff: 50, ExactTimeReported: NewTimestamp(now)},
			},
		},
	}
	require.NoError(t, f.Write(in))

	out, err := f.Read()
	require.NoError(t, err)
	require.Contains(t, out, "alice")

	alice := out["alice"]
	assert.Equal(t, 150, alice.TotalPoints)
	assert.Equal(t, 50, alice.PointDiff)
	require.NotNil(t, alice.LastActive)
	assert.True(t, alice.LastActive.Equal(last.Time))
	assert.True(t, alice.Updated.Equal(now))
	assert.Len(t, alice.History, 2)
	assert.Equal(t, 100, alice.History[Day{2024, time.January, 1}].Points)
}

func TestFileRead_LegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	legacy := `{
		"bob": {
			"total_points": 2000,
			"point_diff": 0,
			"streak_days": 0,
			"last_active": "None",
			"updated": "2023-12-31 20:00:00.000001",
			"history": {
				"12/31/23": {"points": 2000, "point_diff": 0, "exact_time_reported": "2023-12-31 20:00:00"}
			}
		},
		"carol": {
			"total_points": 10,
			"point_diff": 0,
			"streak_days": 0,
			"last_active": null,
			"updated": "2024-01-01 08:00:00.000000"
		},
		"ghost": null
	}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	stats, err := NewFile(path).Read()
	require.NoError(t, err)

	assert.NotContains(t, stats, "ghost")
	assert.Nil(t, stats["bob"].LastActive)
	assert.Equal(t, 2023, stats["bob"].Updated.Year())
	assert.Contains(t, stats["bob"].History, Day{2023, time.December, 31})
	assert.Nil(t, stats["carol"].LastActive)
	assert.NotNil(t, stats["carol"].History)
}

func TestDay_TextRoundTrip(t *testing.T) {
	d := Day{2024, time.March, 5}
	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "03/05/24", string(b))

	var parsed Day
	require.NoError(t, parsed.UnmarshalText(b))
	assert.Equal(t, d, parsed)

	assert.Error(t, parsed.UnmarshalText([]byte("2024-03-05")))
}

func TestDay_Before(t *testing.T) {
	dec31 := Day{2023, time.December, 31}
	jan1 := Day{2024, time.January, 1}

	assert.True(t, dec31.Before(jan1))
	assert.False(t, jan1.Before(dec31))
	assert.False(t, jan1.Before(jan1))
	// Lexicographic order of the keys would get this wrong.
	assert.Greater(t, dec31.String(), jan1.String())
}

func TestRecord_LatestAcrossYearBoundary(t *testing.T) {
	rec := &UserStatRecord{History: map[Day]HistoryEntry{
		{2023, time.December, 31}: {Points: 10},
		{2024, time.January, 1}:   {Points: 20},
	}}

	day, entry, ok := rec.Latest()
	require.True(t, ok)
	assert.Equal(t, Day{2024, time.January, 1}, day)
	assert.Equal(t, 20, entry.Points)

	_, _, ok = (&UserStatRecord{}).Latest()
	assert.False(t, ok)
}

func TestStats_Usernames(t *testing.T) {
	s := Stats{"zed": {}, "amy": {}, "mo": {}}
	assert.Equal(t, []string{"amy", "mo", "zed"}, s.Usernames())
}

func TestTimestamp_JSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 6, 1, 12, 0, 0, 500000000, time.Local))
	b, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-01 12:00:00.500000"`, string(b))

	var rfc Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2024-06-01T12:00:00Z"`), &rfc))
	assert.Equal(t, 2024, rfc.Year())

	var bad Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}
