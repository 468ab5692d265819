package gameservices

import (
	"errors"
	"io"
	"sync"
	"testing"

	mocks "github.com/cbodonnell/gameservices/mocks/github.com/cbodonnell/gameservices/pkg/gameservices"
	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testActivity struct{}

func (testActivity) RunOnUIThread(fn func()) { fn() }

var testPlatform = PlatformConfiguration{Activity: testActivity{}}

func testLogger() log.Interface {
	return log.New(io.Discard, "", 0, log.LogLevelTrace)
}

// newTestSession returns an initialized session backed by provider.
func newTestSession(t *testing.T, provider Provider) *Session {
	t.Helper()
	s := NewSession(NewSessionOptions{
		Factory: ProviderFactoryFunc(func(PlatformConfiguration, AuthListener) (Provider, error) {
			return provider, nil
		}),
		Logger: testLogger(),
	})
	require.NoError(t, s.Initialize(testPlatform))
	return s
}

func TestSession_callbacks(t *testing.T) {
	started := func(s *Session) { s.OnAuthActionStarted(AuthOperationSignIn) }
	valid := func(s *Session) { s.OnAuthActionFinished(AuthOperationSignIn, AuthStatusValid) }
	invalid := func(s *Session) { s.OnAuthActionFinished(AuthOperationSignIn, AuthStatusErrorNotAuthorized) }

	tests := []struct {
		name  string
		from  AuthState
		event func(s *Session)
		want  AuthState
	}{
		{name: "start begins silent sign-in", from: AuthStateStart, event: started, want: AuthStateAutoAuthStarted},
		{name: "silent sign-in succeeds", from: AuthStateAutoAuthStarted, event: valid, want: AuthStateAuthed},
		{name: "silent sign-in fails", from: AuthStateAutoAuthStarted, event: invalid, want: AuthStateAutoAuthFailed},
		{name: "launched UI starts", from: AuthStateAuthUILaunched, event: started, want: AuthStateAuthUIStarted},
		{name: "UI sign-in succeeds", from: AuthStateAuthUIStarted, event: valid, want: AuthStateAuthed},
		{name: "UI sign-in fails", from: AuthStateAuthUIStarted, event: invalid, want: AuthStateAuthUIFailed},
		{name: "UI started stays interactive", from: AuthStateAuthUIStarted, event: started, want: AuthStateAuthUIStarted},
		{name: "finish before start is ignored", from: AuthStateStart, event: valid, want: AuthStateStart},
		{name: "finish while UI launched is ignored", from: AuthStateAuthUILaunched, event: invalid, want: AuthStateAuthUILaunched},
		{name: "UI failed ignores start", from: AuthStateAuthUIFailed, event: started, want: AuthStateAuthUIFailed},
		{name: "UI failed ignores valid", from: AuthStateAuthUIFailed, event: valid, want: AuthStateAuthUIFailed},
		{name: "authed ignores start", from: AuthStateAuthed, event: started, want: AuthStateAuthed},
		{name: "authed ignores failure", from: AuthStateAuthed, event: invalid, want: AuthStateAuthed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, mocks.NewProvider(t))
			s.state = tt.from

			tt.event(s)

			assert.Equal(t, tt.want, s.State())
		})
	}
}

func TestSession_IsReady(t *testing.T) {
	states := []AuthState{
		AuthStateStart,
		AuthStateAutoAuthStarted,
		AuthStateAutoAuthFailed,
		AuthStateAuthUILaunched,
		AuthStateAuthUIStarted,
		AuthStateAuthUIFailed,
		AuthStateAuthed,
	}
	for _, state := range states {
		t.Run(state.String(), func(t *testing.T) {
			s := newTestSession(t, mocks.NewProvider(t))
			s.state = state
			assert.Equal(t, state == AuthStateAuthed, s.IsReady())
		})
	}
}

func TestSession_Update(t *testing.T) {
	t.Run("launches sign-in UI once after silent sign-in fails", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("StartAuthorizationUI").Return().Once()
		s := newTestSession(t, provider)
		s.state = AuthStateAutoAuthFailed

		s.Update()
		assert.Equal(t, AuthStateAuthUILaunched, s.State())

		s.Update()
		assert.Equal(t, AuthStateAuthUILaunched, s.State())
		provider.AssertNumberOfCalls(t, "StartAuthorizationUI", 1)
	})

	t.Run("other states are no-ops", func(t *testing.T) {
		for _, state := range []AuthState{
			AuthStateStart,
			AuthStateAutoAuthStarted,
			AuthStateAuthUILaunched,
			AuthStateAuthUIStarted,
			AuthStateAuthUIFailed,
			AuthStateAuthed,
		} {
			s := newTestSession(t, mocks.NewProvider(t))
			s.state = state
			s.Update()
			assert.Equal(t, state, s.State())
		}
	})

	t.Run("panics without a provider", func(t *testing.T) {
		s := NewSession(NewSessionOptions{Logger: testLogger()})
		assert.Panics(t, s.Update)
	})

	t.Run("start callback fired from inside the launch is interactive", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		s := newTestSession(t, provider)
		provider.On("StartAuthorizationUI").Run(func(mock.Arguments) {
			s.OnAuthActionStarted(AuthOperationSignIn)
		}).Return().Once()
		s.state = AuthStateAutoAuthFailed

		s.Update()

		assert.Equal(t, AuthStateAuthUIStarted, s.State())
	})
}

func TestSession_Initialize(t *testing.T) {
	factoryErr := errors.New("no network")

	tests := []struct {
		name     string
		factory  ProviderFactory
		platform PlatformConfiguration
		wantErr  error
	}{
		{
			name:     "missing activity",
			factory:  ProviderFactoryFunc(func(PlatformConfiguration, AuthListener) (Provider, error) { return &mocks.Provider{}, nil }),
			platform: PlatformConfiguration{},
			wantErr:  ErrInvalidPlatform,
		},
		{
			name:     "missing factory",
			platform: testPlatform,
			wantErr:  ErrProviderCreation,
		},
		{
			name:     "factory error",
			factory:  ProviderFactoryFunc(func(PlatformConfiguration, AuthListener) (Provider, error) { return nil, factoryErr }),
			platform: testPlatform,
			wantErr:  factoryErr,
		},
		{
			name:     "factory returns nothing",
			factory:  ProviderFactoryFunc(func(PlatformConfiguration, AuthListener) (Provider, error) { return nil, nil }),
			platform: testPlatform,
			wantErr:  ErrProviderCreation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(NewSessionOptions{Factory: tt.factory, Logger: testLogger()})

			err := s.Initialize(tt.platform)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrProviderCreation)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, s.IsReady())
			assert.Panics(t, s.Update)
		})
	}

	t.Run("failure is not retried", func(t *testing.T) {
		calls := 0
		s := NewSession(NewSessionOptions{
			Factory: ProviderFactoryFunc(func(PlatformConfiguration, AuthListener) (Provider, error) {
				calls++
				return nil, factoryErr
			}),
			Logger: testLogger(),
		})

		first := s.Initialize(testPlatform)
		require.ErrorIs(t, first, factoryErr)

		second := s.Initialize(testPlatform)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)
		assert.False(t, s.IsReady())
	})

	t.Run("registers the session as listener", func(t *testing.T) {
		var got AuthListener
		s := NewSession(NewSessionOptions{
			Factory: ProviderFactoryFunc(func(_ PlatformConfiguration, listener AuthListener) (Provider, error) {
				got = listener
				return mocks.NewProvider(t), nil
			}),
			Logger: testLogger(),
		})

		require.NoError(t, s.Initialize(testPlatform))
		assert.Same(t, s, got)
		assert.ErrorIs(t, s.Initialize(testPlatform), ErrAlreadyInitialized)
	})
}

func TestSession_gatedCalls(t *testing.T) {
	notReady := []AuthState{
		AuthStateStart,
		AuthStateAutoAuthStarted,
		AuthStateAutoAuthFailed,
		AuthStateAuthUILaunched,
		AuthStateAuthUIStarted,
		AuthStateAuthUIFailed,
	}
	for _, state := range notReady {
		t.Run("not ready delegates nothing from "+state.String(), func(t *testing.T) {
			provider := mocks.NewProvider(t)
			s := newTestSession(t, provider)
			s.state = state

			s.SaveStat("score1", 500)
			s.ShowLeaderboards()

			assert.Equal(t, state, s.State())
			provider.AssertNotCalled(t, "SubmitScore", "score1", uint64(500))
			provider.AssertNotCalled(t, "ShowAllLeaderboardsUI")
		})
	}

	t.Run("ready delegates", func(t *testing.T) {
		provider := mocks.NewProvider(t)
		provider.On("SubmitScore", "score1", uint64(500)).Return().Once()
		provider.On("ShowAllLeaderboardsUI").Return().Once()
		s := newTestSession(t, provider)
		s.state = AuthStateAuthed

		s.SaveStat("score1", 500)
		s.ShowLeaderboards()
	})
}

func TestSession_fallbackToInteractiveSignIn(t *testing.T) {
	provider := mocks.NewProvider(t)
	provider.On("StartAuthorizationUI").Return().Once()
	provider.On("SubmitScore", "score1", uint64(500)).Return().Once()

	var transitions []AuthState
	s := NewSession(NewSessionOptions{
		Factory: ProviderFactoryFunc(func(PlatformConfiguration, AuthListener) (Provider, error) {
			return provider, nil
		}),
		Logger: testLogger(),
		OnStateChange: func(_, to AuthState) {
			transitions = append(transitions, to)
		},
	})
	require.NoError(t, s.Initialize(testPlatform))

	s.OnAuthActionStarted(AuthOperationSignIn)
	s.OnAuthActionFinished(AuthOperationSignIn, AuthStatusErrorNotAuthorized)
	assert.Equal(t, AuthStateAutoAuthFailed, s.State())
	assert.False(t, s.IsReady())

	s.Update()
	assert.Equal(t, AuthStateAuthUILaunched, s.State())
	provider.AssertNumberOfCalls(t, "StartAuthorizationUI", 1)

	s.OnAuthActionStarted(AuthOperationSignIn)
	s.OnAuthActionFinished(AuthOperationSignIn, AuthStatusValid)
	assert.Equal(t, AuthStateAuthed, s.State())
	assert.True(t, s.IsReady())

	s.SaveStat("score1", 500)

	assert.Equal(t, []AuthState{
		AuthStateAutoAuthStarted,
		AuthStateAutoAuthFailed,
		AuthStateAuthUILaunched,
		AuthStateAuthUIStarted,
		AuthStateAuthed,
	}, transitions)
}

func TestSession_concurrentCallbacks(t *testing.T) {
	provider := mocks.NewProvider(t)
	provider.On("StartAuthorizationUI").Return().Maybe()
	s := newTestSession(t, provider)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.OnAuthActionStarted(AuthOperationSignIn)
			s.OnAuthActionFinished(AuthOperationSignIn, AuthStatusErrorTimeout)
		}()
		go func() {
			defer wg.Done()
			s.Update()
			s.IsReady()
		}()
	}
	wg.Wait()

	assert.NotEqual(t, AuthStateAuthed, s.State())
}
