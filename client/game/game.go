package game

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/cbodonnell/gameservices/client/input"
	"github.com/cbodonnell/gameservices/client/scenes"
	"github.com/cbodonnell/gameservices/client/ui"
	"github.com/cbodonnell/gameservices/pkg/gameservices"
	"github.com/cbodonnell/gameservices/pkg/gameservices/firebase"
	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
// It is also the firebase.Host the game services draw their UI on.
type Game struct {
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	// session is the game services sign-in session.
	session *gameservices.Session
	// servicesReady is false when the session failed to initialize.
	servicesReady bool
	// leaderboardID is where finished runs are reported.
	leaderboardID string
	// dispatcher runs work posted by the game services on the frame loop.
	dispatcher *ui.Dispatcher
	// mode is the current game mode.
	mode GameMode
	// scene is the current scene.
	scene scenes.Scene
	// overlay is drawn over the scene and takes input while set.
	overlay scenes.Scene
	// leaderboardView backs the leaderboard overlay while it is shown.
	leaderboardView *firebase.LeaderboardView
}

var (
	_ ebiten.Game   = &Game{}
	_ firebase.Host = &Game{}
)

const (
	DefaultLeaderboardID = "score1"
)

type GameMode int

const (
	GameModePlay GameMode = iota
	GameModeServicesError
)

func (m GameMode) String() string {
	switch m {
	case GameModePlay:
		return "Play"
	case GameModeServicesError:
		return "Services Error"
	}
	return "Unknown"
}

type NewGameOptions struct {
	Debug bool
	// Session is initialized with the game as its platform activity.
	Session       *gameservices.Session
	LeaderboardID string
}

func NewGame(opts NewGameOptions) (*Game, error) {
	g := &Game{
		debug:         opts.Debug,
		session:       opts.Session,
		leaderboardID: opts.LeaderboardID,
		dispatcher:    ui.NewDispatcher(),
	}
	if g.leaderboardID == "" {
		g.leaderboardID = DefaultLeaderboardID
	}

	if err := g.session.Initialize(gameservices.PlatformConfiguration{Activity: g}); err != nil {
		log.Error("Failed to initialize game services: %v", err)
		if err := g.loadServicesError(); err != nil {
			return nil, fmt.Errorf("failed to load services error scene: %v", err)
		}
		return g, nil
	}
	g.servicesReady = true

	if err := g.loadPlay(); err != nil {
		return nil, fmt.Errorf("failed to load play scene: %v", err)
	}

	return g, nil
}

func (g *Game) SetScene(scene scenes.Scene) error {
	if g.scene != nil {
		if err := g.scene.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy previous scene: %v", err)
		}
	}

	g.scene = scene
	if err := g.scene.Init(); err != nil {
		return fmt.Errorf("failed to initialize scene: %v", err)
	}

	return nil
}

func (g *Game) loadPlay() error {
	play := scenes.NewPlayScene(scenes.PlaySceneOptions{
		OnRunFinished: func(score uint64) {
			if !g.servicesReady {
				return
			}
			g.session.SaveStat(g.leaderboardID, score)
		},
		OnShowLeaderboards: func() {
			if !g.servicesReady {
				return
			}
			g.session.ShowLeaderboards()
		},
		Status: g.status,
	})
	if err := g.SetScene(play); err != nil {
		return fmt.Errorf("failed to set play scene: %v", err)
	}
	g.mode = GameModePlay
	return nil
}

func (g *Game) loadServicesError() error {
	servicesError := scenes.NewMessageScene("Game Services Unavailable", "Press space to play offline")
	if err := g.SetScene(servicesError); err != nil {
		return fmt.Errorf("failed to set services error scene: %v", err)
	}
	g.mode = GameModeServicesError
	return nil
}

func (g *Game) status() string {
	if !g.servicesReady {
		return "Offline"
	}
	switch state := g.session.State(); state {
	case gameservices.AuthStateAuthed:
		return "Signed in"
	case gameservices.AuthStateAuthUIFailed:
		return "Not signed in, scores are not saved"
	default:
		return fmt.Sprintf("Signing in (%s)", state)
	}
}

// RunOnUIThread implements gameservices.Activity. fn runs at the start of the
// next frame.
func (g *Game) RunOnUIThread(fn func()) {
	g.dispatcher.Post(fn)
}

// ShowSignIn implements firebase.Host.
func (g *Game) ShowSignIn(form firebase.SignInForm) {
	submit := form.OnSubmit
	form.OnSubmit = func(email, password string, done func(err error)) {
		submit(email, password, func(err error) {
			done(actionable(err))
		})
	}
	g.setOverlay(scenes.NewSignInScene(form))
}

// actionable turns auth server rejections into messages for the player.
func actionable(err error) error {
	var authErr *firebase.AuthError
	if firebase.IsRejected(err) && errors.As(err, &authErr) {
		return &ui.ActionableError{Message: authErr.Message}
	}
	return err
}

// ShowLeaderboards implements firebase.Host.
func (g *Game) ShowLeaderboards(view *firebase.LeaderboardView) {
	g.setOverlay(scenes.NewLeaderboardScene(view, g.DismissOverlay))
	g.leaderboardView = view
}

// DismissOverlay implements firebase.Host.
func (g *Game) DismissOverlay() {
	g.setOverlay(nil)
}

func (g *Game) setOverlay(overlay scenes.Scene) {
	if g.overlay != nil {
		if err := g.overlay.Destroy(); err != nil {
			log.Error("Failed to destroy overlay: %v", err)
		}
	}
	if g.leaderboardView != nil {
		g.leaderboardView.Close()
		g.leaderboardView = nil
	}

	g.overlay = overlay
	if g.overlay == nil {
		return
	}
	if err := g.overlay.Init(); err != nil {
		log.Error("Failed to initialize overlay: %v", err)
		g.overlay = nil
	}
}

func (g *Game) Update() error {
	g.dispatcher.Drain()

	if g.servicesReady {
		g.session.Update()
	}

	if g.overlay != nil {
		if err := g.overlay.Update(); err != nil {
			return fmt.Errorf("failed to update overlay: %v", err)
		}
		return nil
	}

	// Handle input
	if err := g.handleInput(); err != nil {
		return fmt.Errorf("failed to handle input: %v", err)
	}

	// Update the current scene
	if err := g.scene.Update(); err != nil {
		return fmt.Errorf("failed to update scene: %v", err)
	}

	return nil
}

func (g *Game) handleInput() error {
	switch g.mode {
	case GameModeServicesError:
		if input.IsPositiveJustPressed() {
			if err := g.loadPlay(); err != nil {
				return fmt.Errorf("failed to load play scene: %v", err)
			}
		}
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.overlay != nil {
		b := screen.Bounds()
		vector.DrawFilledRect(screen, 0, 0, float32(b.Dx()), float32(b.Dy()), color.NRGBA{A: 160}, false)
		g.overlay.Draw(screen)
	}
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n   TPS: %0.1f", ebiten.ActualTPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n   Mode: %s", g.mode))

	if !g.servicesReady {
		return
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n   Auth: %s", g.session.State()))
}

const (
	DefaultScreenWidth  = 640
	DefaultScreenHeight = 480
)

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return DefaultScreenWidth, DefaultScreenHeight
}
