package scenes

import (
	"fmt"
	"image/color"

	"github.com/cbodonnell/gameservices/client/fonts"
	"github.com/cbodonnell/gameservices/client/input"
	"github.com/hajimehoshi/ebiten/v2"
)

// PlayScene is a press-to-stop run: the score climbs every tick until the
// player stops it, then the run is reported.
type PlayScene struct {
	BaseScene

	running bool
	score   uint64
	best    uint64
	last    uint64

	onRunFinished      func(score uint64)
	onShowLeaderboards func()
	status             func() string
}

type PlaySceneOptions struct {
	// OnRunFinished is called with the final score of every run.
	OnRunFinished func(score uint64)
	// OnShowLeaderboards is called when the player asks for the leaderboards.
	OnShowLeaderboards func()
	// Status is drawn at the top of the screen, e.g. the sign-in state.
	Status func() string
}

var _ Scene = &PlayScene{}

func NewPlayScene(opts PlaySceneOptions) *PlayScene {
	return &PlayScene{
		onRunFinished:      opts.OnRunFinished,
		onShowLeaderboards: opts.OnShowLeaderboards,
		status:             opts.Status,
	}
}

func (s *PlayScene) Update() error {
	if s.running {
		s.score++
	}

	if input.IsPositiveJustPressed() {
		if !s.running {
			s.running = true
			s.score = 0
			return nil
		}
		s.running = false
		s.last = s.score
		if s.score > s.best {
			s.best = s.score
		}
		if s.onRunFinished != nil {
			s.onRunFinished(s.score)
		}
		return nil
	}

	if !s.running && input.IsLeaderboardsJustPressed() && s.onShowLeaderboards != nil {
		s.onShowLeaderboards()
	}
	return nil
}

func (s *PlayScene) Draw(screen *ebiten.Image) {
	h := float64(screen.Bounds().Dy())
	if s.status != nil {
		drawCentered(screen, s.status(), fonts.TTFSmallFont, 30, disabledTextColor)
	}

	drawCentered(screen, fmt.Sprintf("%d", s.score), fonts.TTFLargeFont, h/2, color.White)
	if s.running {
		drawCentered(screen, "Press space to stop", fonts.TTFSmallFont, h/2+40, disabledTextColor)
		return
	}
	drawCentered(screen, "Press space to start, L for leaderboards", fonts.TTFSmallFont, h/2+40, disabledTextColor)
	drawCentered(screen, fmt.Sprintf("Last %d  Best %d", s.last, s.best), fonts.TTFNormalFont, h-40, textColor)
}
