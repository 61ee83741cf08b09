package container

import (
	"strings"
	"sync"
)

// primitivePrefix marks a contextual key as a primitive parameter name
// rather than a type name: Needs("$bucket").
const primitivePrefix = "$"

func isPrimitiveKey(key string) bool { return strings.HasPrefix(key, primitivePrefix) }

// ── Binding store ─────────────────────────────────────────────────────────────

type valueKind int

const (
	literalValue valueKind = iota
	concreteValue
	factoryValue
)

// contextualValue is one override: a literal, a type name to create, or a
// factory to call.
type contextualValue struct {
	kind     valueKind
	literal  any
	concrete string
	factory  Factory
}

// BindingStore holds contextual overrides keyed by (dependant, key). The last
// write for a pair wins.
type BindingStore struct {
	mu sync.RWMutex

	// contextual: entries[dependant][key] = value
	entries map[string]map[string]contextualValue
}

func newBindingStore() *BindingStore {
	return &BindingStore{entries: make(map[string]map[string]contextualValue)}
}

func (s *BindingStore) set(dependant, key string, v contextualValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[dependant]; !ok {
		s.entries[dependant] = make(map[string]contextualValue)
	}
	s.entries[dependant][key] = v
}

func (s *BindingStore) lookup(dependant, key string) (contextualValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.entries[dependant]; ok {
		v, ok := m[key]
		return v, ok
	}
	return contextualValue{}, false
}

// has reports whether an override exists for (dependant, key).
func (s *BindingStore) has(dependant, key string) bool {
	_, ok := s.lookup(dependant, key)
	return ok
}

// ── Builder ───────────────────────────────────────────────────────────────────

// ContextualBuilder implements the fluent contextual binding API.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(S3::class)
//	c.When("PhotoController").Needs("Filesystem").Give("S3")
type ContextualBuilder struct {
	container *Container
	concrete  string
}

// Needs names the dependency being overridden: a type name, or "$" + the
// name of a primitive parameter.
func (b *ContextualBuilder) Needs(key string) *ContextualValue {
	return &ContextualValue{container: b.container, concrete: b.concrete, needs: key}
}

// ContextualValue receives the value of a contextual binding.
type ContextualValue struct {
	container *Container
	concrete  string
	needs     string
}

// Give commits the binding. A factory is called with the container each
// time the dependant is built. A string given for a type key names the
// concrete type to create. Anything else is used as is.
//
//	c.When("Report").Needs("$items").Give(func(c *container.Container) (any, error) {
//	    return loadItems(c)
//	})
func (v *ContextualValue) Give(value any) {
	switch {
	case isFactory(value):
		f, _ := asFactory(value)
		v.commit(contextualValue{kind: factoryValue, factory: f})
	case !isPrimitiveKey(v.needs) && isString(value):
		v.commit(contextualValue{kind: concreteValue, concrete: value.(string)})
	default:
		v.commit(contextualValue{kind: literalValue, literal: value})
	}
}

// GiveValue is Give for values that must never be interpreted: a func is
// passed through as data and a string is never treated as a type name.
//
//	c.When("Router").Needs("$notFound").GiveValue(http.NotFound)
func (v *ContextualValue) GiveValue(value any) {
	v.commit(contextualValue{kind: literalValue, literal: value})
}

func (v *ContextualValue) commit(cv contextualValue) {
	c := v.container
	key := v.needs
	if !isPrimitiveKey(key) {
		key = c.canonical(key)
	}
	if cv.kind == concreteValue {
		cv.concrete = c.canonical(cv.concrete)
	}
	c.contextual.set(c.canonical(v.concrete), key, cv)
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}
