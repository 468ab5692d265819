package firebase

import (
	"sort"
	"sync"

	"github.com/cbodonnell/gameservices/pkg/gameservices"
	"github.com/cbodonnell/gameservices/pkg/repositories/models"
)

// Host is the application surface the provider draws its UI on. Every
// method except RunOnUIThread is only called from inside a RunOnUIThread
// callback.
type Host interface {
	gameservices.Activity
	ShowSignIn(form SignInForm)
	ShowLeaderboards(view *LeaderboardView)
	DismissOverlay()
}

// SignInForm is the interactive sign-in the host presents.
type SignInForm struct {
	// OnSubmit starts a sign-in attempt. done is called on the UI thread with
	// nil once the player is signed in, or with the reason the attempt failed.
	OnSubmit func(email, password string, done func(err error))
	// OnCancel abandons the sign-in.
	OnCancel func()
}

// LeaderboardScores is one leaderboard and its ranked entries.
type LeaderboardScores struct {
	Leaderboard models.Leaderboard
	Scores      []models.Score
}

// LeaderboardView is the live model behind the leaderboard overlay. It is
// updated from the network and read by the host every frame.
type LeaderboardView struct {
	lock    sync.RWMutex
	boards  []LeaderboardScores
	limit   int
	version uint64

	closeOnce sync.Once
	onClose   func()
}

func NewLeaderboardView(boards []LeaderboardScores, limit int) *LeaderboardView {
	return &LeaderboardView{
		boards: boards,
		limit:  limit,
	}
}

// Snapshot returns a copy of the boards and a version that changes whenever
// they do.
func (v *LeaderboardView) Snapshot() ([]LeaderboardScores, uint64) {
	v.lock.RLock()
	defer v.lock.RUnlock()
	boards := make([]LeaderboardScores, len(v.boards))
	for i, b := range v.boards {
		boards[i] = LeaderboardScores{
			Leaderboard: b.Leaderboard,
			Scores:      append([]models.Score(nil), b.Scores...),
		}
	}
	return boards, v.version
}

// Version changes whenever the boards do.
func (v *LeaderboardView) Version() uint64 {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return v.version
}

// Apply merges a live score into its leaderboard and reports whether the
// visible ranking changed. A player keeps only their best score.
func (v *LeaderboardView) Apply(event models.ScoreEvent) bool {
	v.lock.Lock()
	defer v.lock.Unlock()

	board := -1
	for i := range v.boards {
		if v.boards[i].Leaderboard.ID == event.LeaderboardID {
			board = i
			break
		}
	}
	if board < 0 {
		return false
	}

	scores := v.boards[board].Scores
	incoming := event.Score
	replaced := false
	for i := range scores {
		if !samePlayer(scores[i], incoming) {
			continue
		}
		if scores[i].Score >= incoming.Score {
			return false
		}
		scores[i] = incoming
		replaced = true
		break
	}
	if !replaced {
		if v.limit > 0 && len(scores) >= v.limit && scores[len(scores)-1].Score >= incoming.Score {
			return false
		}
		scores = append(scores, incoming)
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Timestamp < scores[j].Timestamp
	})
	if v.limit > 0 && len(scores) > v.limit {
		scores = scores[:v.limit]
	}
	for i := range scores {
		scores[i].Rank = i + 1
	}

	v.boards[board].Scores = scores
	v.version++
	return true
}

func samePlayer(a, b models.Score) bool {
	if a.UserID != "" && b.UserID != "" {
		return a.UserID == b.UserID
	}
	return a.UserName == b.UserName
}

// Close stops live updates. The host calls it when the overlay goes away.
func (v *LeaderboardView) Close() {
	v.closeOnce.Do(func() {
		if v.onClose != nil {
			v.onClose()
		}
	})
}
