package archive

import "time"

// Run is one archived tracking run.
type Run struct {
	ID      string    `json:"id"`
	TakenAt time.Time `json:"taken_at"`
	Command string    `json:"command"`
	Version string    `json:"version"`
}

// PointRow is one user's totals as recorded by a run.
type PointRow struct {
	RunID       string    `json:"run_id"`
	TakenAt     time.Time `json:"taken_at"`
	Username    string    `json:"username"`
	TotalPoints int       `json:"total_points"`
	PointDiff   int       `json:"point_diff"`
	StreakDays  int       `json:"streak_days"`
}
