package firebase

import (
	"testing"

	"github.com/cbodonnell/gameservices/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
)

func testView() *LeaderboardView {
	return NewLeaderboardView([]LeaderboardScores{
		{
			Leaderboard: models.Leaderboard{ID: "score1", Name: "High Score"},
			Scores: []models.Score{
				{UserID: "uid-a", UserName: "alice", Score: 700, Rank: 1, Timestamp: 1},
				{UserID: "uid-b", UserName: "bob", Score: 500, Rank: 2, Timestamp: 2},
			},
		},
	}, 3)
}

func names(scores []models.Score) []string {
	var out []string
	for _, s := range scores {
		out = append(out, s.UserName)
	}
	return out
}

func TestLeaderboardView_Apply(t *testing.T) {
	tests := []struct {
		name        string
		events      []models.ScoreEvent
		wantChanged bool
		wantNames   []string
		wantTop     uint64
	}{
		{
			name:        "new player ranks in",
			events:      []models.ScoreEvent{{LeaderboardID: "score1", Score: models.Score{UserID: "uid-c", UserName: "carol", Score: 600, Timestamp: 3}}},
			wantChanged: true,
			wantNames:   []string{"alice", "carol", "bob"},
			wantTop:     700,
		},
		{
			name:        "better score replaces the old one",
			events:      []models.ScoreEvent{{LeaderboardID: "score1", Score: models.Score{UserID: "uid-b", UserName: "bob", Score: 900, Timestamp: 3}}},
			wantChanged: true,
			wantNames:   []string{"bob", "alice"},
			wantTop:     900,
		},
		{
			name:        "worse score is ignored",
			events:      []models.ScoreEvent{{LeaderboardID: "score1", Score: models.Score{UserID: "uid-a", UserName: "alice", Score: 100, Timestamp: 3}}},
			wantChanged: false,
			wantNames:   []string{"alice", "bob"},
			wantTop:     700,
		},
		{
			name:        "unknown leaderboard",
			events:      []models.ScoreEvent{{LeaderboardID: "distance", Score: models.Score{UserName: "carol", Score: 1}}},
			wantChanged: false,
			wantNames:   []string{"alice", "bob"},
			wantTop:     700,
		},
		{
			name: "full board drops the lowest",
			events: []models.ScoreEvent{
				{LeaderboardID: "score1", Score: models.Score{UserID: "uid-c", UserName: "carol", Score: 400, Timestamp: 3}},
				{LeaderboardID: "score1", Score: models.Score{UserID: "uid-d", UserName: "dave", Score: 800, Timestamp: 4}},
			},
			wantChanged: true,
			wantNames:   []string{"dave", "alice", "bob"},
			wantTop:     800,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := testView()
			_, before := view.Snapshot()

			changed := false
			for _, event := range tt.events {
				changed = view.Apply(event)
			}

			boards, after := view.Snapshot()
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantChanged, after != before)
			assert.Equal(t, after, view.Version())
			assert.Equal(t, tt.wantNames, names(boards[0].Scores))
			assert.Equal(t, tt.wantTop, boards[0].Scores[0].Score)
			for i, s := range boards[0].Scores {
				assert.Equal(t, i+1, s.Rank)
			}
		})
	}
}

func TestLeaderboardView_Snapshot_isCopy(t *testing.T) {
	view := testView()
	boards, _ := view.Snapshot()
	boards[0].Scores[0].Score = 1

	again, _ := view.Snapshot()
	assert.Equal(t, uint64(700), again[0].Scores[0].Score)
}

func TestLeaderboardView_Close(t *testing.T) {
	view := testView()
	calls := 0
	view.onClose = func() { calls++ }

	view.Close()
	view.Close()

	assert.Equal(t, 1, calls)
}
