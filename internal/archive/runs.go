package archive

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/duowatch/internal/store"
	"github.com/google/uuid"
)

// Version is stamped on every run; main overrides it with the build version.
var Version = "dev"

// takenAtLayout is fixed-width UTC so that text order in SQLite is time order.
const takenAtLayout = "2006-01-02T15:04:05.000000000Z"

func formatTakenAt(t time.Time) string {
	return t.UTC().Format(takenAtLayout)
}

func parseTakenAt(s string) time.Time {
	t, err := time.Parse(takenAtLayout, s)
	if err != nil {
		// Rows written before the fixed-width layout.
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

// RecordRun inserts a run and one user_points row per record in stats, in a
// single transaction. It returns the new run's ID.
func (db *DB) RecordRun(command string, at time.Time, stats store.Stats) (string, error) {
	id := uuid.NewString()

	tx, err := db.conn.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO runs (id, taken_at, command, version) VALUES (?, ?, ?, ?)",
		id, formatTakenAt(at), command, Version,
	); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, name := range stats.Usernames() {
		rec := stats[name]
		if _, err := tx.Exec(
			`INSERT INTO user_points
			(run_id, username, total_points, point_diff, streak_days)
			VALUES (?, ?, ?, ?, ?)`,
			id, name, rec.TotalPoints, rec.PointDiff, rec.StreakDays,
		); err != nil {
			return "", fmt.Errorf("inserting points for %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetRun returns a run by ID, or nil if it does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow("SELECT id, taken_at, command, version FROM runs WHERE id = ?", id)
	return scanRun(row)
}

// LatestRuns returns up to n runs, newest first.
func (db *DB) LatestRuns(n int) ([]Run, error) {
	rows, err := db.conn.Query(
		"SELECT id, taken_at, command, version FROM runs ORDER BY taken_at DESC LIMIT ?",
		n,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var takenAt string
		if err := rows.Scan(&r.ID, &takenAt, &r.Command, &r.Version); err != nil {
			return nil, err
		}
		r.TakenAt = parseTakenAt(takenAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// UserHistory returns up to n recorded totals for username, oldest first.
func (db *DB) UserHistory(username string, n int) ([]PointRow, error) {
	rows, err := db.conn.Query(
		`SELECT run_id, taken_at, username, total_points, point_diff, streak_days FROM (
			SELECT p.run_id, r.taken_at, p.username, p.total_points, p.point_diff, p.streak_days
			FROM user_points p JOIN runs r ON r.id = p.run_id
			WHERE p.username = ?
			ORDER BY r.taken_at DESC
			LIMIT ?
		) ORDER BY taken_at ASC`,
		username, n,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []PointRow
	for rows.Next() {
		var p PointRow
		var takenAt string
		if err := rows.Scan(&p.RunID, &takenAt, &p.Username, &p.TotalPoints, &p.PointDiff, &p.StreakDays); err != nil {
			return nil, err
		}
		p.TakenAt = parseTakenAt(takenAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	var takenAt string
	err := row.Scan(&r.ID, &takenAt, &r.Command, &r.Version)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.TakenAt = parseTakenAt(takenAt)
	return &r, nil
}
