package scenes

import (
	"image/color"

	"github.com/cbodonnell/gameservices/client/fonts"
	"github.com/hajimehoshi/ebiten/v2"
)

// MessageScene shows a headline with an optional hint below it.
type MessageScene struct {
	BaseScene

	msg  string
	hint string
}

var _ Scene = &MessageScene{}

func NewMessageScene(msg, hint string) *MessageScene {
	return &MessageScene{
		msg:  msg,
		hint: hint,
	}
}

func (s *MessageScene) Draw(screen *ebiten.Image) {
	y := float64(screen.Bounds().Dy()) / 2
	drawCentered(screen, s.msg, fonts.TTFLargeFont, y, color.White)
	if s.hint != "" {
		drawCentered(screen, s.hint, fonts.TTFSmallFont, y+40, disabledTextColor)
	}
}
