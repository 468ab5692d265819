package scenes

import (
	"fmt"

	"github.com/cbodonnell/gameservices/client/fonts"
	"github.com/cbodonnell/gameservices/client/input"
	"github.com/cbodonnell/gameservices/pkg/gameservices/firebase"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
)

// LeaderboardScene renders a live firebase.LeaderboardView and rebuilds
// itself whenever the view changes.
type LeaderboardScene struct {
	BaseScene

	view     *firebase.LeaderboardView
	onClose  func()
	ui       *ebitenui.UI
	version  uint64
	rendered bool
}

var _ Scene = &LeaderboardScene{}

func NewLeaderboardScene(view *firebase.LeaderboardView, onClose func()) *LeaderboardScene {
	return &LeaderboardScene{
		view:    view,
		onClose: onClose,
	}
}

func (s *LeaderboardScene) Init() error {
	s.renderUI()
	return nil
}

func (s *LeaderboardScene) renderUI() {
	boards, version := s.view.Snapshot()
	s.version = version
	s.rendered = true

	rootContainer := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(panelColor)),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(30)),
		)),
	)

	for _, board := range boards {
		rootContainer.AddChild(widget.NewText(
			widget.TextOpts.Text(board.Leaderboard.Name, fonts.TTFNormalFont, textColor),
		))
		if len(board.Scores) == 0 {
			rootContainer.AddChild(widget.NewText(
				widget.TextOpts.Text("No scores yet", fonts.TTFSmallFont, disabledTextColor),
			))
			continue
		}
		for _, score := range board.Scores {
			rootContainer.AddChild(widget.NewText(
				widget.TextOpts.Text(fmt.Sprintf("%3d. %-20s %d", score.Rank, score.UserName, score.Score), fonts.TTFSmallFont, textColor),
			))
		}
	}

	rootContainer.AddChild(newButton("Close", func(args *widget.ButtonClickedEventArgs) {
		s.onClose()
	}))

	s.ui = &ebitenui.UI{
		Container: rootContainer,
	}
}

func (s *LeaderboardScene) Update() error {
	if input.IsNegativeJustPressed() {
		s.onClose()
		return nil
	}
	if !s.rendered || s.view.Version() != s.version {
		s.renderUI()
	}
	s.ui.Update()
	return nil
}

func (s *LeaderboardScene) Draw(screen *ebiten.Image) {
	s.ui.Draw(screen)
}
