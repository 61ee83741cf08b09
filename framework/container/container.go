package container

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a value from the container. Creators, bound
// implementations and contextual factories all share this shape.
type Factory func(c *Container) (any, error)

// Extender wraps an already-resolved instance with decorator logic.
type Extender func(instance any, c *Container) any

// Observer is notified about resolution activity. framework/metrics
// provides a Prometheus implementation.
type Observer interface {
	// CreatorBuilt is called when a name gets its creator cached.
	CreatorBuilt(name string)

	// Resolved is called after every Create, nested ones included.
	Resolved(name string, elapsed time.Duration, err error)
}

// selfName is the name the container resolves itself under, so
// constructors may take a *Container parameter.
const selfName = "container"

var (
	containerPtrType = reflect.TypeOf((*Container)(nil))
	errorType        = reflect.TypeOf((*error)(nil)).Elem()
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container. It mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Create: build any registered type by walking its constructor
//   - Bind / Singleton / Instance / Alias
//   - Contextual binding (when A needs B, give it C)
//   - Tags, Extend, resolved event callbacks
//
// A *Container handed to a factory or constructor shares all state with the
// container it came from; it additionally remembers the resolution path so a
// type that depends on itself fails with ErrCircularDependency instead of
// recursing forever.
type Container struct {
	*state
	trail *trail
}

type state struct {
	mu sync.RWMutex

	types *Registry

	// name → creator; at most one per name, never invalidated by Create
	creators map[string]Factory

	// name → loader run before the first creator lookup (deferred providers)
	deferred map[string]func() error

	contextual *BindingStore

	// alias → name (canonical key)
	aliases map[string]string

	// name → extender funcs
	extenders map[string][]Extender

	// tag → []name
	tags map[string][]string

	afterResolving []func(string, any)
	observers      []Observer

	log zerolog.Logger
}

// Option configures a Container.
type Option func(*state)

// WithRegistry makes the container resolve names against r instead of a
// private registry.
func WithRegistry(r *Registry) Option {
	return func(s *state) {
		s.types = r
	}
}

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(s *state) {
		s.log = l
	}
}

// WithObserver adds an Observer.
func WithObserver(o Observer) Option {
	return func(s *state) {
		s.observers = append(s.observers, o)
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	s := &state{
		creators:   make(map[string]Factory),
		deferred:   make(map[string]func() error),
		contextual: newBindingStore(),
		aliases:    make(map[string]string),
		extenders:  make(map[string][]Extender),
		tags:       make(map[string][]string),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.types == nil {
		s.types = NewRegistry()
	}

	// Bind the container to itself, like Laravel's $app->instance('container', $app)
	_ = s.types.add(&typeEntry{name: selfName, typ: containerPtrType, abstract: true})
	s.creators[selfName] = func(c *Container) (any, error) { return c, nil }

	return &Container{state: s}
}

// Types returns the registry the container resolves names against.
func (c *Container) Types() *Registry { return c.types }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers the creator for name. A factory implementation is called
// with the container on every Create; a string implementation delegates to
// Create of that name. Bind replaces any creator name already had.
//
//	// Laravel: $app->bind(Storage::class, S3::class)
//	c.Bind("Storage", "S3")
//	c.Bind("Clock", func(c *container.Container) any { return time.Now })
func (c *Container) Bind(name string, implementation any) error {
	key := c.canonical(name)

	var build Factory
	if f, ok := asFactory(implementation); ok {
		build = f
	} else if concrete, ok := implementation.(string); ok && concrete != "" {
		build = func(v *Container) (any, error) { return v.Create(concrete) }
	} else {
		return fmt.Errorf("%w: [%s] bound to %T", ErrInvalidBinding, name, implementation)
	}

	c.setCreator(key, c.decorate(key, build))
	return nil
}

// Singleton registers a creator that builds name at most once and returns
// that instance for the lifetime of the container. Without a creator the
// constructor of name is walked on first use.
//
//	// Laravel: $app->singleton(Cache::class)
//	c.Singleton("Cache")
//	c.Singleton("Cache", func(c *container.Container) (any, error) { return cache.NewRedis() })
func (c *Container) Singleton(name string, creator ...any) error {
	key := c.canonical(name)

	var build Factory
	if len(creator) > 0 && creator[0] != nil {
		f, ok := asFactory(creator[0])
		if !ok {
			return fmt.Errorf("%w: singleton [%s] creator is %T", ErrInvalidBinding, name, creator[0])
		}
		build = c.decorate(key, f)
	}

	cell := &lazyCell{}
	c.setCreator(key, func(v *Container) (any, error) {
		return cell.get(func() (any, error) {
			b := build
			if b == nil {
				// calling Create here would resolve this very creator again
				var err error
				if b, err = v.makeCreator(key); err != nil {
					return nil, err
				}
			}
			inst, err := b(v)
			if err != nil {
				return nil, err
			}
			v.logger().Debug().Str("type", key).Msg("container: singleton built")
			return inst, nil
		})
	})
	return nil
}

// Instance registers a pre-built value as a singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", cfg)
func (c *Container) Instance(name string, instance any) {
	c.setCreator(c.canonical(name), func(*Container) (any, error) { return instance, nil })
}

// When starts a contextual binding chain.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When("PhotoController").Needs("Filesystem").Give("S3")
func (c *Container) When(dependant string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: dependant}
}

// HasContextual reports whether dependant has a contextual override for key.
// Aliases are followed the same way When and Needs follow them.
//
//	c.HasContextual("PhotoController", "Filesystem")
//	c.HasContextual("S3", "$bucket")
func (c *Container) HasContextual(dependant, key string) bool {
	if !isPrimitiveKey(key) {
		key = c.canonical(key)
	}
	return c.contextual.has(c.canonical(dependant), key)
}

// Alias registers an alternative name for name.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("Cache", "cache")
func (c *Container) Alias(name, alias string) error {
	if name == alias {
		return fmt.Errorf("%w: [%s] is aliased to itself", ErrInvalidBinding, name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = c.canonicalLocked(name)
	return nil
}

// Extend decorates instances of name produced from now on. A singleton is
// decorated once, when it is built.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("Logger", func(instance any, c *container.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
func (c *Container) Extend(name string, fn Extender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonicalLocked(name)
	c.extenders[key] = append(c.extenders[key], fn)
}

// Tag associates multiple names under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(names []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], names...)
}

// Tagged creates every name registered under tag, in tagging order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	names := slices.Clone(c.tags[tag])
	c.mu.RUnlock()

	result := make([]any, 0, len(names))
	for _, name := range names {
		inst, err := c.Create(name)
		if err != nil {
			return nil, err
		}
		result = append(result, inst)
	}
	return result, nil
}

// AfterResolving registers a callback fired after every successful Create.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(name string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// SetLogger replaces the logger used for resolution diagnostics.
func (c *Container) SetLogger(l zerolog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = l
}

func (c *Container) logger() *zerolog.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l := c.log
	return &l
}

// Observe adds an Observer after construction.
func (c *Container) Observe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// deferTo runs load before name's first creator lookup. Loading is expected
// to bind name; if it does not, the constructor of name is walked.
func (c *Container) deferTo(name string, load func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonicalLocked(name)
	delete(c.creators, key)
	c.deferred[key] = load
}

func (c *Container) setCreator(key string, f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.deferred, key)
	c.creators[key] = f
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has reports whether Create can attempt name: it has a creator, a deferred
// provider or a registered type.
func (c *Container) Has(name string) bool {
	key := c.canonical(name)
	c.mu.RLock()
	_, hasCreator := c.creators[key]
	_, isDeferred := c.deferred[key]
	c.mu.RUnlock()
	return hasCreator || isDeferred || c.types.Has(key)
}

// Bindings returns the sorted names that currently have a creator or a
// deferred provider (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := slices.Collect(maps.Keys(c.creators))
	for k := range c.deferred {
		if _, already := c.creators[k]; !already {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canonicalLocked(name)
}

func (c *Container) canonicalLocked(name string) string {
	if target, ok := c.aliases[name]; ok {
		return target
	}
	return name
}

func (c *Container) applyExtenders(key string, instance any) any {
	c.mu.RLock()
	exts := slices.Clone(c.extenders[key])
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}
	return instance
}

func (c *Container) fireAfterResolving(name string, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.afterResolving)
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(name, instance)
	}
}

func (c *Container) notifyCreatorBuilt(name string) {
	c.mu.RLock()
	obs := slices.Clone(c.observers)
	c.mu.RUnlock()
	for _, o := range obs {
		o.CreatorBuilt(name)
	}
}

func (c *Container) notifyResolved(name string, elapsed time.Duration, err error) {
	c.mu.RLock()
	obs := slices.Clone(c.observers)
	c.mu.RUnlock()
	for _, o := range obs {
		o.Resolved(name, elapsed, err)
	}
}

// ── Factories ─────────────────────────────────────────────────────────────────

// asFactory normalises the callable forms accepted by Bind, Singleton and
// Give: Factory, func(*Container) T, func(*Container) (T, error), func() T
// and func() (T, error).
func asFactory(v any) (Factory, bool) {
	switch f := v.(type) {
	case nil:
		return nil, false
	case Factory:
		return f, f != nil
	case func(*Container) (any, error):
		return f, f != nil
	case func(*Container) any:
		if f == nil {
			return nil, false
		}
		return func(c *Container) (any, error) { return f(c), nil }, true
	}

	fn := reflect.ValueOf(v)
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, false
	}
	fnType := fn.Type()
	if fnType.IsVariadic() || fnType.NumIn() > 1 || (fnType.NumIn() == 1 && fnType.In(0) != containerPtrType) {
		return nil, false
	}
	switch {
	case fnType.NumOut() == 1:
	case fnType.NumOut() == 2 && fnType.Out(1) == errorType:
	default:
		return nil, false
	}

	return func(c *Container) (any, error) {
		var in []reflect.Value
		if fnType.NumIn() == 1 {
			in = []reflect.Value{reflect.ValueOf(c)}
		}
		results := fn.Call(in)
		if len(results) == 2 && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return results[0].Interface(), nil
	}, true
}

func isFactory(v any) bool {
	_, ok := asFactory(v)
	return ok
}
