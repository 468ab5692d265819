package gameservices

import (
	"errors"
	"fmt"

	"github.com/cbodonnell/gameservices/pkg/log"
)

var (
	// ErrProviderCreation is returned when a provider could not be constructed.
	ErrProviderCreation = errors.New("failed to create game services provider")
	// ErrInvalidPlatform is returned when the platform configuration has no activity.
	ErrInvalidPlatform = errors.New("platform configuration has no activity")
)

// Builder collects the pieces needed to construct a Provider.
type Builder struct {
	factory  ProviderFactory
	listener AuthListener
	logger   log.Interface
}

func NewBuilder(factory ProviderFactory) *Builder {
	return &Builder{
		factory: factory,
		logger:  log.Default(),
	}
}

// SetAuthListener registers the listener the provider reports auth actions to.
func (b *Builder) SetAuthListener(listener AuthListener) *Builder {
	b.listener = listener
	return b
}

func (b *Builder) SetLogger(logger log.Interface) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Create builds the provider for platform. Every failure wraps ErrProviderCreation.
func (b *Builder) Create(platform PlatformConfiguration) (Provider, error) {
	if b.factory == nil {
		return nil, fmt.Errorf("%w: no provider factory", ErrProviderCreation)
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrProviderCreation, ErrInvalidPlatform)
	}

	listener := b.listener
	if listener == nil {
		listener = nopListener{}
	}

	provider, err := b.factory.Create(platform, listener)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderCreation, err)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: factory returned no provider", ErrProviderCreation)
	}

	b.logger.Debug("created game services provider %T", provider)
	return provider, nil
}

type nopListener struct{}

func (nopListener) OnAuthActionStarted(AuthOperation)              {}
func (nopListener) OnAuthActionFinished(AuthOperation, AuthStatus) {}
