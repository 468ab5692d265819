package gameservices

// AuthListener receives the provider's auth lifecycle callbacks. Providers may
// call it zero or more times from any goroutine for as long as they live.
type AuthListener interface {
	OnAuthActionStarted(op AuthOperation)
	OnAuthActionFinished(op AuthOperation, status AuthStatus)
}

// Provider is a constructed game services backend. Every call returns
// immediately; the work happens asynchronously.
type Provider interface {
	// StartAuthorizationUI asks the player to sign in interactively.
	StartAuthorizationUI()
	// SubmitScore records score on the leaderboard identified by leaderboardID.
	SubmitScore(leaderboardID string, score uint64)
	// ShowAllLeaderboardsUI presents the leaderboards to the player.
	ShowAllLeaderboardsUI()
}

// Activity is the host application handle a provider is bound to.
type Activity interface {
	// RunOnUIThread schedules fn to run on the host's frame loop.
	RunOnUIThread(fn func())
}

// PlatformConfiguration carries the host handles a provider needs to be created.
type PlatformConfiguration struct {
	Activity Activity
}

// Valid reports whether the configuration can be used to create a provider.
func (c PlatformConfiguration) Valid() bool {
	return c.Activity != nil
}

// ProviderFactory constructs a Provider bound to a platform and wired to listener.
type ProviderFactory interface {
	Create(platform PlatformConfiguration, listener AuthListener) (Provider, error)
}

// ProviderFactoryFunc adapts a function to ProviderFactory.
type ProviderFactoryFunc func(platform PlatformConfiguration, listener AuthListener) (Provider, error)

func (f ProviderFactoryFunc) Create(platform PlatformConfiguration, listener AuthListener) (Provider, error) {
	return f(platform, listener)
}
