package container

import "sync"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider mirrors Laravel's Illuminate\Support\ServiceProvider.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other bindings inside Boot().
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    if err := app.Types().Register("Mailer", mail.NewSMTP); err != nil {
//	        return err
//	    }
//	    return app.Singleton("Mailer")
//	}
type ServiceProvider interface {
	// Register registers types and binds services into the container.
	// Do NOT resolve other bindings here - use Boot() for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	// Safe to resolve and use any binding here.
	Boot(app *Container) error

	// Provides returns the names this provider binds.
	// Used for deferred (lazy) provider loading.
	Provides() []string

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() names is first created.
	//
	//	// Laravel: protected $defer = true;
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	mu         sync.Mutex
	app        *Container
	eager      []ServiceProvider
	loaded     []ServiceProvider // deferred providers registered on demand
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// A provider registered after Boot() is booted immediately.
//
//	// Laravel: $app->register(new AppServiceProvider($app))
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true
	booted := r.booted
	r.mu.Unlock()

	if provider.IsDeferred() {
		load := r.loader(provider)
		for _, name := range provider.Provides() {
			r.app.deferTo(name, load)
		}
		return nil
	}

	if err := provider.Register(r.app); err != nil {
		return err
	}
	r.mu.Lock()
	r.eager = append(r.eager, provider)
	r.mu.Unlock()

	if booted {
		return provider.Boot(r.app)
	}
	return nil
}

// loader returns the function that registers a deferred provider on first
// use. All names the provider serves share it, so it runs once. A failed
// Register is not retried: later calls return the same error.
func (r *ProviderRegistry) loader(provider ServiceProvider) func() error {
	var (
		mu   sync.Mutex
		done bool
		err  error
	)
	return func() error {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return err
		}
		done = true
		if err = provider.Register(r.app); err != nil {
			return err
		}

		r.mu.Lock()
		r.loaded = append(r.loaded, provider)
		booted := r.booted
		r.mu.Unlock()

		if booted {
			return provider.Boot(r.app)
		}
		return nil
	}
}

// Boot calls Boot() on all registered providers and stops at the first
// error. Calling it again is a no-op.
//
//	// Laravel: $app->boot()
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append(append([]ServiceProvider(nil), r.eager...), r.loaded...)
	r.mu.Unlock()

	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			return err
		}
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
