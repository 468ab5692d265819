package gameservices

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cbodonnell/gameservices/pkg/log"
)

// ErrAlreadyInitialized is returned by Initialize once a provider was created
// or is being created.
var ErrAlreadyInitialized = errors.New("session already initialized")

var _ AuthListener = &Session{}

// Session tracks the sign-in flow against a Provider and gates the calls that
// need a signed-in player.
//
// Providers deliver auth callbacks on their own goroutines while the host
// polls Update from its frame loop, so all state is guarded by mu. Provider
// methods are never called with mu held.
type Session struct {
	// factory builds the provider on Initialize.
	factory ProviderFactory
	// logger is the sink for session diagnostics.
	logger log.Interface
	// onStateChange is called after every transition, outside the lock.
	onStateChange func(from, to AuthState)

	mu          sync.Mutex
	state       AuthState
	provider    Provider
	initialized bool
	// initErr is what every later Initialize returns after a failed one.
	initErr error
}

type NewSessionOptions struct {
	// Factory constructs the provider. Required.
	Factory ProviderFactory
	// Logger defaults to the package-level logger tagged "GPG".
	Logger log.Interface
	// OnStateChange is an optional observer of state transitions.
	OnStateChange func(from, to AuthState)
}

func NewSession(opts NewSessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithCategory("GPG")
	}
	return &Session{
		factory:       opts.Factory,
		logger:        logger,
		onStateChange: opts.OnStateChange,
		state:         AuthStateStart,
	}
}

// Initialize creates the provider bound to platform with the session as its
// auth listener. A failure is fatal to the session: later calls return the
// same error without retrying and the session must not be used afterwards.
func (s *Session) Initialize(platform PlatformConfiguration) error {
	s.mu.Lock()
	if s.initialized {
		err := s.initErr
		s.mu.Unlock()
		if err != nil {
			return err
		}
		return ErrAlreadyInitialized
	}
	s.initialized = true
	s.state = AuthStateStart
	s.mu.Unlock()

	provider, err := NewBuilder(s.factory).
		SetAuthListener(s).
		SetLogger(s.logger).
		Create(platform)
	if err != nil {
		s.logger.Error("failed to create game services: %v", err)
		err = fmt.Errorf("failed to initialize session: %w", err)
		s.mu.Lock()
		s.initErr = err
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.provider = provider
	s.mu.Unlock()

	s.logger.Info("created game services")
	return nil
}

// OnAuthActionStarted implements AuthListener.
func (s *Session) OnAuthActionStarted(op AuthOperation) {
	s.logger.Info("%s started", op)
	s.apply(authEventStarted)
}

// OnAuthActionFinished implements AuthListener.
func (s *Session) OnAuthActionFinished(op AuthOperation, status AuthStatus) {
	s.logger.Info("%s finished with a result of %s", op, status)
	if status.IsSuccess() {
		s.apply(authEventFinishedValid)
		return
	}
	s.apply(authEventFinishedInvalid)
}

func (s *Session) apply(e authEvent) {
	s.mu.Lock()
	from := s.state
	to, ok := next(from, e)
	s.state = to
	s.mu.Unlock()

	if !ok {
		if from.IsTerminal() {
			s.logger.Debug("ignoring %s in terminal state %s", e, from)
		} else {
			s.logger.Warn("ignoring unexpected %s in state %s", e, from)
		}
		return
	}
	s.notify(from, to)
}

func (s *Session) notify(from, to AuthState) {
	if from == to {
		return
	}
	s.logger.Debug("auth state %s -> %s", from, to)
	if s.onStateChange != nil {
		s.onStateChange(from, to)
	}
}

// Update is polled once per frame by the host. Only a failed silent sign-in
// needs action: the sign-in UI is launched exactly once.
// It panics if the session was not initialized.
func (s *Session) Update() {
	s.mu.Lock()
	provider := s.mustProvider()
	from := s.state
	switch from {
	case AuthStateStart, AuthStateAutoAuthStarted:
		// Waiting on the silent sign-in.
	case AuthStateAutoAuthFailed:
		s.state = AuthStateAuthUILaunched
	case AuthStateAuthUILaunched, AuthStateAuthUIStarted:
		// Waiting on the player.
	case AuthStateAuthUIFailed:
		// Both paths failed. No further attempts are made.
	case AuthStateAuthed:
		// Signed in.
	}
	to := s.state
	s.mu.Unlock()

	if from == AuthStateAutoAuthFailed {
		s.logger.Info("launching sign-in UI")
		s.notify(from, to)
		provider.StartAuthorizationUI()
	}
}

// mustProvider must be called with mu held.
func (s *Session) mustProvider() Provider {
	if s.provider == nil {
		s.mu.Unlock()
		panic("gameservices: session used before a successful Initialize")
	}
	return s.provider
}

// State returns the current auth state.
func (s *Session) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsReady reports whether the player is signed in. When not, a warning is
// logged, since callers use it to gate provider calls.
func (s *Session) IsReady() bool {
	_, ok := s.readyProvider()
	return ok
}

func (s *Session) readyProvider() (Provider, bool) {
	s.mu.Lock()
	state, provider := s.state, s.provider
	s.mu.Unlock()

	if state != AuthStateAuthed || provider == nil {
		s.logger.Warn("player not signed in (state %s), can't interact with game services", state)
		return nil, false
	}
	return provider, true
}

// SaveStat submits score to the leaderboard statID. It does nothing unless the
// session is ready.
func (s *Session) SaveStat(statID string, score uint64) {
	provider, ok := s.readyProvider()
	if !ok {
		return
	}
	provider.SubmitScore(statID, score)
	s.logger.Info("submitted score %d for id %s", score, statID)
}

// ShowLeaderboards opens the leaderboards UI. It does nothing unless the
// session is ready.
func (s *Session) ShowLeaderboards() {
	provider, ok := s.readyProvider()
	if !ok {
		return
	}
	provider.ShowAllLeaderboardsUI()
}
