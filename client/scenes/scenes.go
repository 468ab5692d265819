package scenes

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
)

type Scene interface {
	// Game flow methods
	Init() error
	Destroy() error
	Update() error
	Draw(screen *ebiten.Image)
}

// BaseScene is a no-op Scene to embed.
type BaseScene struct{}

func (s *BaseScene) Init() error               { return nil }
func (s *BaseScene) Destroy() error            { return nil }
func (s *BaseScene) Update() error             { return nil }
func (s *BaseScene) Draw(screen *ebiten.Image) {}

// drawCentered draws t horizontally centered with its baseline at y.
func drawCentered(screen *ebiten.Image, t string, f font.Face, y float64, clr color.Color) {
	t = strings.ToUpper(t)
	bounds, _ := font.BoundString(f, t)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(screen.Bounds().Dx())/2-float64(bounds.Max.X>>6)/2, y)
	op.ColorScale.ScaleWithColor(clr)
	text.DrawWithOptions(screen, t, f, op)
}

var (
	buttonColor       = color.NRGBA{R: 170, G: 170, B: 180, A: 255}
	buttonHoverColor  = color.NRGBA{R: 135, G: 135, B: 150, A: 255}
	buttonPressColor  = color.NRGBA{R: 100, G: 100, B: 120, A: 255}
	inputColor        = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	textColor         = color.NRGBA{254, 255, 255, 255}
	disabledTextColor = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	errorTextColor    = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	panelColor        = color.NRGBA{R: 20, G: 20, B: 30, A: 230}
)
