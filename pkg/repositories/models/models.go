package models

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Leaderboard struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Score is a user's best entry on a leaderboard.
type Score struct {
	LeaderboardID string `json:"leaderboard_id"`
	UserID        string `json:"user_id,omitempty"`
	UserName      string `json:"user_name"`
	Score         uint64 `json:"score"`
	Rank          int    `json:"rank,omitempty"`
	SubmissionID  string `json:"submission_id,omitempty"`
	Timestamp     int64  `json:"timestamp"`
}

// ScoreEvent is pushed to live leaderboard subscribers when a score is accepted.
type ScoreEvent struct {
	LeaderboardID string `json:"leaderboard_id"`
	Score         Score  `json:"score"`
}
