package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/gameservices/pkg/gameservices"
	"github.com/cbodonnell/gameservices/pkg/leaderboards"
	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/cbodonnell/gameservices/pkg/repositories/models"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultScoresLimit    = 10

	// tokenLeeway refreshes ID tokens slightly before they expire.
	tokenLeeway = time.Minute
)

var (
	ErrUnsupportedActivity = errors.New("activity does not implement firebase.Host")
	ErrNotSignedIn         = errors.New("not signed in")
)

type Options struct {
	// AuthURL is the auth server root, e.g. http://localhost:8080.
	AuthURL string
	// APIURL is the leaderboard API root, e.g. http://localhost:9090.
	APIURL string
	// Credentials defaults to an in-memory store.
	Credentials CredentialStore
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Logger defaults to the default logger with the "Firebase" category.
	Logger log.Interface
	// RequestTimeout bounds each sign-in and leaderboard request.
	RequestTimeout time.Duration
	// ScoresLimit is how many entries each leaderboard shows.
	ScoresLimit int
}

// Factory creates Providers that sign in against the auth server and report
// to the leaderboard API.
type Factory struct {
	opts Options

	lock      sync.Mutex
	providers []*Provider
}

var _ gameservices.ProviderFactory = &Factory{}

func NewFactory(opts Options) *Factory {
	if opts.Credentials == nil {
		opts.Credentials = NewMemoryCredentialStore()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.Default().WithCategory("Firebase")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.ScoresLimit <= 0 {
		opts.ScoresLimit = DefaultScoresLimit
	}
	return &Factory{
		opts: opts,
	}
}

// Create binds a Provider to the platform's Host and starts a silent sign-in
// with any stored credentials.
func (f *Factory) Create(platform gameservices.PlatformConfiguration, listener gameservices.AuthListener) (gameservices.Provider, error) {
	host, ok := platform.Activity.(Host)
	if !ok {
		return nil, ErrUnsupportedActivity
	}
	if f.opts.AuthURL == "" || f.opts.APIURL == "" {
		return nil, fmt.Errorf("auth and api URLs are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Provider{
		host:        host,
		listener:    listener,
		auth:        NewAuthClient(f.opts.AuthURL, f.opts.HTTPClient),
		credentials: f.opts.Credentials,
		logger:      f.opts.Logger,
		timeout:     f.opts.RequestTimeout,
		scoresLimit: f.opts.ScoresLimit,
		ctx:         ctx,
		cancel:      cancel,
		leaderboards: leaderboards.NewClient(leaderboards.NewClientOptions{
			BaseURL:    f.opts.APIURL,
			HTTPClient: f.opts.HTTPClient,
		}),
	}

	f.lock.Lock()
	f.providers = append(f.providers, p)
	f.lock.Unlock()

	p.goAsync(p.autoSignIn)
	return p, nil
}

// Close stops every Provider the factory created and waits for their
// background work.
func (f *Factory) Close() {
	f.lock.Lock()
	providers := f.providers
	f.providers = nil
	f.lock.Unlock()

	for _, p := range providers {
		p.Close()
	}
}

// Provider implements gameservices.Provider. Network work runs on
// background goroutines and UI work is handed to the Host.
type Provider struct {
	host         Host
	listener     gameservices.AuthListener
	auth         *AuthClient
	leaderboards *leaderboards.Client
	credentials  CredentialStore
	logger       log.Interface
	timeout      time.Duration
	scoresLimit  int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	lock      sync.Mutex
	closed    bool
	current   *Credentials
	signingIn bool
	// signInCtx is canceled when the player backs out of the sign-in form.
	signInCtx  context.Context
	stopSignIn context.CancelFunc

	leaderboardUI *LeaderboardView
}

var _ gameservices.Provider = &Provider{}

// goAsync runs fn on a goroutine that Close waits for. It does nothing once
// the provider is closed.
func (p *Provider) goAsync(fn func()) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn()
	}()
}

// Close cancels in-flight requests and waits for background work to finish.
func (p *Provider) Close() {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()

	p.cancel()
	p.wg.Wait()
}

func (p *Provider) statusFor(ctx context.Context, err error) gameservices.AuthStatus {
	switch {
	case err == nil:
		return gameservices.AuthStatusValid
	case p.ctx.Err() != nil:
		return gameservices.AuthStatusErrorCanceled
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return gameservices.AuthStatusErrorTimeout
	case IsUnauthorized(err):
		return gameservices.AuthStatusErrorNotAuthorized
	default:
		return gameservices.AuthStatusErrorNetworkOperationFailed
	}
}

func (p *Provider) autoSignIn() {
	p.listener.OnAuthActionStarted(gameservices.AuthOperationSignIn)

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	stored, err := p.credentials.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			p.logger.Debug("no stored credentials")
			p.listener.OnAuthActionFinished(gameservices.AuthOperationSignIn, gameservices.AuthStatusErrorNotAuthorized)
			return
		}
		p.logger.Error("failed to load credentials: %v", err)
		p.listener.OnAuthActionFinished(gameservices.AuthOperationSignIn, gameservices.AuthStatusErrorInternal)
		return
	}

	refreshed, err := p.auth.Refresh(ctx, stored.RefreshToken)
	if err != nil {
		status := p.statusFor(ctx, err)
		if status == gameservices.AuthStatusErrorNotAuthorized {
			p.logger.Info("stored credentials were rejected, clearing them")
			if err := p.credentials.Clear(ctx); err != nil {
				p.logger.Error("failed to clear credentials: %v", err)
			}
		} else {
			p.logger.Warn("failed to refresh stored credentials: %v", err)
		}
		p.listener.OnAuthActionFinished(gameservices.AuthOperationSignIn, status)
		return
	}
	refreshed.Email = stored.Email

	p.signedIn(ctx, refreshed)
	p.listener.OnAuthActionFinished(gameservices.AuthOperationSignIn, gameservices.AuthStatusValid)
}

func (p *Provider) signedIn(ctx context.Context, credentials *Credentials) {
	p.lock.Lock()
	p.current = credentials
	p.lock.Unlock()

	p.saveCredentials(ctx, credentials)
}

func (p *Provider) saveCredentials(ctx context.Context, credentials *Credentials) {
	if err := p.credentials.Save(ctx, credentials); err != nil {
		p.logger.Error("failed to save credentials: %v", err)
	}
	p.logger.Info("signed in as %s", credentials.UserID)
}

// StartAuthorizationUI shows the sign-in form. A second call while the form
// is up is ignored.
func (p *Provider) StartAuthorizationUI() {
	p.lock.Lock()
	if p.signingIn {
		p.lock.Unlock()
		p.logger.Warn("sign-in is already in progress")
		return
	}
	p.signingIn = true
	p.signInCtx, p.stopSignIn = context.WithCancel(p.ctx)
	p.lock.Unlock()

	p.listener.OnAuthActionStarted(gameservices.AuthOperationSignIn)

	form := SignInForm{
		OnSubmit: p.submitSignIn,
		OnCancel: p.cancelSignIn,
	}
	p.host.RunOnUIThread(func() {
		p.host.ShowSignIn(form)
	})
}

func (p *Provider) submitSignIn(email, password string, done func(err error)) {
	p.lock.Lock()
	signInCtx := p.signInCtx
	signingIn := p.signingIn
	p.lock.Unlock()
	if !signingIn {
		p.logger.Debug("ignoring sign-in submitted after the form closed")
		return
	}

	p.goAsync(func() {
		ctx, cancel := context.WithTimeout(signInCtx, p.timeout)
		defer cancel()

		credentials, err := p.auth.Login(ctx, email, password)
		if err != nil {
			p.logger.Debug("sign-in attempt failed: %v", err)
			if signInCtx.Err() != nil {
				// Closed or canceled by the player; either way the form is gone.
				p.finishSignIn(gameservices.AuthStatusErrorCanceled)
				return
			}
			// The form stays up so the player can try again.
			p.host.RunOnUIThread(func() {
				done(err)
			})
			return
		}

		// A cancel that raced the reply wins: the player already saw the form close.
		p.lock.Lock()
		if !p.endSignInLocked() {
			p.lock.Unlock()
			p.logger.Info("discarding sign-in that completed after it was canceled")
			return
		}
		p.current = credentials
		p.lock.Unlock()

		// ctx went with the sign-in attempt.
		saveCtx, cancelSave := context.WithTimeout(p.ctx, p.timeout)
		defer cancelSave()
		p.saveCredentials(saveCtx, credentials)
		p.host.RunOnUIThread(func() {
			done(nil)
			p.host.DismissOverlay()
		})
		p.listener.OnAuthActionFinished(gameservices.AuthOperationSignIn, gameservices.AuthStatusValid)
	})
}

func (p *Provider) cancelSignIn() {
	p.lock.Lock()
	ok := p.endSignInLocked()
	p.lock.Unlock()
	if !ok {
		return
	}

	p.host.RunOnUIThread(p.host.DismissOverlay)
	p.listener.OnAuthActionFinished(gameservices.AuthOperationSignIn, gameservices.AuthStatusErrorCanceled)
}

func (p *Provider) finishSignIn(status gameservices.AuthStatus) {
	p.lock.Lock()
	ok := p.endSignInLocked()
	p.lock.Unlock()

	if ok {
		p.listener.OnAuthActionFinished(gameservices.AuthOperationSignIn, status)
	}
}

// endSignInLocked closes the sign-in attempt and cancels its requests. It
// reports false if the attempt was already over. p.lock must be held.
func (p *Provider) endSignInLocked() bool {
	if !p.signingIn {
		return false
	}
	p.signingIn = false
	p.stopSignIn()
	p.signInCtx, p.stopSignIn = nil, nil
	return true
}

// idToken returns a valid ID token, refreshing it when it is about to expire.
func (p *Provider) idToken(ctx context.Context, force bool) (string, error) {
	p.lock.Lock()
	current := p.current
	p.lock.Unlock()

	if current == nil {
		return "", ErrNotSignedIn
	}
	if !force && !current.Expired(time.Now(), tokenLeeway) {
		return current.IDToken, nil
	}

	refreshed, err := p.auth.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	refreshed.Email = current.Email
	p.signedIn(ctx, refreshed)
	return refreshed.IDToken, nil
}

// SubmitScore reports score in the background. A rejected token is refreshed
// once and the same submission retried.
func (p *Provider) SubmitScore(leaderboardID string, score uint64) {
	submission := leaderboards.NewSubmission(score)
	p.goAsync(func() {
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
		defer cancel()

		token, err := p.idToken(ctx, false)
		if err != nil {
			p.logger.Error("failed to submit score to %s: %v", leaderboardID, err)
			return
		}

		_, err = p.leaderboards.SubmitScore(ctx, token, leaderboardID, submission)
		if leaderboards.IsUnauthorized(err) {
			token, err = p.idToken(ctx, true)
			if err == nil {
				_, err = p.leaderboards.SubmitScore(ctx, token, leaderboardID, submission)
			}
		}
		if err != nil {
			p.logger.Error("failed to submit score %d to %s: %v", score, leaderboardID, err)
			return
		}
		p.logger.Debug("submitted score %d to %s", score, leaderboardID)
	})
}

// ShowAllLeaderboardsUI loads every leaderboard, hands the view to the host
// and keeps it live until the host closes it.
func (p *Provider) ShowAllLeaderboardsUI() {
	p.goAsync(func() {
		view, err := p.loadLeaderboards()
		if err != nil {
			p.logger.Error("failed to load leaderboards: %v", err)
			return
		}

		watchCtx, stopWatching := context.WithCancel(p.ctx)
		view.onClose = stopWatching

		p.lock.Lock()
		previous := p.leaderboardUI
		p.leaderboardUI = view
		p.lock.Unlock()
		if previous != nil {
			previous.Close()
		}

		boards, _ := view.Snapshot()
		for _, board := range boards {
			leaderboardID := board.Leaderboard.ID
			p.goAsync(func() {
				err := p.leaderboards.Watch(watchCtx, leaderboardID, func(event models.ScoreEvent) {
					view.Apply(event)
				})
				if err != nil {
					p.logger.Warn("stopped watching %s: %v", leaderboardID, err)
				}
			})
		}

		p.host.RunOnUIThread(func() {
			p.host.ShowLeaderboards(view)
		})
	})
}

func (p *Provider) loadLeaderboards() (*LeaderboardView, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	list, err := p.leaderboards.ListLeaderboards(ctx)
	if err != nil {
		return nil, err
	}

	boards := make([]LeaderboardScores, 0, len(list))
	for _, leaderboard := range list {
		scores, err := p.leaderboards.ListScores(ctx, leaderboard.ID, p.scoresLimit)
		if err != nil {
			return nil, err
		}
		boards = append(boards, LeaderboardScores{
			Leaderboard: leaderboard,
			Scores:      scores,
		})
	}
	return NewLeaderboardView(boards, p.scoresLimit), nil
}
