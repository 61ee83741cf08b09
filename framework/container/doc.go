// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// Given the name of a type, the container produces a fully-constructed
// instance by recursively resolving the parameters of its constructor. Global
// bindings, singletons and contextual (per-dependant) overrides decide what
// each parameter receives.
//
// Go keeps no constructor metadata by name, so types are declared in a
// [Registry] first:
//
//	c := container.New()
//	types := c.Types()
//	types.Struct("Bar", Bar{})                              // no constructor
//	types.Register("Baz", func(bar *Bar) *Baz { return &Baz{Bar: bar} })
//	types.Interface("Storage", (*Storage)(nil))             // abstract
//	types.Register("S3", NewS3, container.Params("bucket"))
//
// # Resolving
//
//	// Laravel: $app->make(Baz::class)
//	v, err := c.Create("Baz")                 // a new Baz with a new Bar
//
//	// Generic (preferred - no type assertion required)
//	baz, err := container.Resolve[*Baz](c, "Baz")
//
// Constructor parameters are classified as objects (a registered type),
// primitives (scalars, strings, slices, maps, funcs, any) or unknown (an
// unregistered struct or interface). Objects are created recursively,
// primitives need a contextual binding or a [Default], and unknown types
// fail with [ErrUnknownType].
//
// Every Create without a singleton returns a new instance. Instances of a
// zero-size type (struct{}) are the exception: Go may place all of them at
// the same address, so they cannot have distinct pointer identity.
//
// # Bindings
//
//	// Laravel: $app->bind(Storage::class, S3::class)
//	c.Bind("Storage", "S3")
//
//	// Factory - called with the container on every Create
//	c.Bind("Clock", func(c *container.Container) any { return realClock{} })
//
//	// Singleton - created once, reused
//	c.Singleton("Cache")
//	c.Singleton("Mailer", func(c *container.Container) (any, error) { return mail.Dial() })
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)->needs(Storage::class)->give(Local::class)
//	c.When("PhotoController").Needs("Storage").Give("Local")
//
//	// Primitive parameters are addressed with a "$" prefix
//	c.When("S3").Needs("$bucket").Give("uploads")
//
//	// Check for an override
//	c.HasContextual("S3", "$bucket")   // true
//
// # Shared instance
//
//	container.SetInstance(c)
//	c, err := container.GetInstance()     // ErrNotInitialized before SetInstance
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    if err := app.Types().Register("Mailer", mail.NewSMTP); err != nil {
//	        return err
//	    }
//	    return app.Singleton("Mailer")
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
package container
