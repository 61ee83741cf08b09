package container

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
)

// ── Parameter descriptors ─────────────────────────────────────────────────────

// ParamKind classifies a constructor parameter.
type ParamKind int

const (
	// PrimitiveParam is a parameter with no object type: scalars, strings,
	// slices, maps, funcs, channels and the empty interface.
	PrimitiveParam ParamKind = iota

	// ObjectParam is a parameter whose type is registered under a name.
	ObjectParam

	// UnknownParam is an object-like parameter (struct, pointer to struct or
	// non-empty interface) whose type was never registered.
	UnknownParam
)

// String returns the human-readable name of the kind.
func (k ParamKind) String() string {
	switch k {
	case PrimitiveParam:
		return "primitive"
	case ObjectParam:
		return "object"
	case UnknownParam:
		return "unknown"
	default:
		return "invalid"
	}
}

// Param describes one positional constructor parameter.
type Param struct {
	Index int
	Name  string
	Kind  ParamKind

	// TypeName is the registered name for ObjectParam and the Go type string
	// for UnknownParam. Empty for PrimitiveParam.
	TypeName string
	Type     reflect.Type

	HasDefault bool
	Default    any
}

// Key returns the contextual binding key that targets this parameter:
// the type name for objects, "$" + name for primitives.
func (p Param) Key() string {
	if p.Kind == PrimitiveParam {
		return primitivePrefix + p.Name
	}
	return p.TypeName
}

// Descriptor is the introspected constructor shape of a registered type.
type Descriptor struct {
	Name     string
	Type     reflect.Type
	Abstract bool
	Params   []Param
}

// ── Registration ──────────────────────────────────────────────────────────────

// typeEntry is the raw registration; descriptors are derived from it lazily.
type typeEntry struct {
	name       string
	typ        reflect.Type
	ctor       reflect.Value // invalid for Struct and Interface registrations
	abstract   bool
	paramNames []string
	defaults   map[string]any
}

func (e *typeEntry) paramName(i int) string {
	if i < len(e.paramNames) {
		return e.paramNames[i]
	}
	return "arg" + strconv.Itoa(i)
}

// TypeOption configures a registration.
type TypeOption func(*typeEntry)

// Params names the constructor parameters positionally. Go keeps no parameter
// names at runtime, so primitive parameters are addressed as "$" + name; an
// unnamed parameter i is "argi".
//
//	types.Register("Mailer", NewMailer, container.Params("host", "port"))
//	c.When("Mailer").Needs("$port").Give(587)
func Params(names ...string) TypeOption {
	return func(e *typeEntry) {
		e.paramNames = names
	}
}

// Default declares the value used for a primitive parameter when no
// contextual binding supplies one.
func Default(param string, value any) TypeOption {
	return func(e *typeEntry) {
		if e.defaults == nil {
			e.defaults = make(map[string]any)
		}
		e.defaults[param] = value
	}
}

// Registry is the runtime type table the container resolves names against.
// It maps names to constructors, and Go types back to names so constructor
// parameters can be classified.
type Registry struct {
	mu sync.RWMutex

	// name → registration
	entries map[string]*typeEntry

	// produced Go type → name (first registration wins)
	names map[reflect.Type]string

	// name → introspected constructor, filled on first Describe
	descriptors map[string]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries:     make(map[string]*typeEntry),
		names:       make(map[reflect.Type]string),
		descriptors: make(map[string]*Descriptor),
	}
}

// Register records a constructor under name. The constructor must have the
// signature func(deps...) T or func(deps...) (T, error). An empty name
// defaults to TypeKey of T.
//
//	types.Register("Baz", func(bar *Bar) *Baz { return &Baz{Bar: bar} })
func (r *Registry) Register(name string, ctor any, opts ...TypeOption) error {
	val := reflect.ValueOf(ctor)
	if !val.IsValid() || val.Kind() != reflect.Func || val.IsNil() {
		return fmt.Errorf("%w: %T is not a function", ErrInvalidConstructor, ctor)
	}

	typ := val.Type()
	if typ.IsVariadic() {
		return fmt.Errorf("%w: variadic constructor %s", ErrInvalidConstructor, typ)
	}
	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return fmt.Errorf("%w: %s must return (T) or (T, error)", ErrInvalidConstructor, typ)
	}
	if typ.NumOut() == 2 && typ.Out(1) != errorType {
		return fmt.Errorf("%w: second return value of %s must be error", ErrInvalidConstructor, typ)
	}

	if name == "" {
		name = typeKeyOf(typ.Out(0))
	}
	e := &typeEntry{name: name, typ: typ.Out(0), ctor: val}
	for _, opt := range opts {
		opt(e)
	}

	if e.paramNames != nil && len(e.paramNames) != typ.NumIn() {
		return fmt.Errorf("%w: [%s] names %d parameters, constructor takes %d",
			ErrInvalidConstructor, name, len(e.paramNames), typ.NumIn())
	}
	for param := range e.defaults {
		if !e.hasParam(param, typ.NumIn()) {
			return fmt.Errorf("%w: [%s] has no parameter %q", ErrInvalidConstructor, name, param)
		}
	}

	return r.add(e)
}

// Struct records a type with no constructor. Each instance is a fresh zero
// value, returned as a pointer. Pointers to a zero-size struct may all be
// equal, so give the struct a field when instances need distinct identity.
//
//	types.Struct("Foo", Foo{})
func (r *Registry) Struct(name string, sample any) error {
	t := reflect.TypeOf(sample)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T is not a struct", ErrInvalidConstructor, sample)
	}
	if name == "" {
		name = typeKeyOf(t)
	}
	return r.add(&typeEntry{name: name, typ: reflect.PointerTo(t)})
}

// Interface declares an abstract type. Abstract types are only resolvable
// through a binding.
//
//	types.Interface("Storage", (*Storage)(nil))
func (r *Registry) Interface(name string, ptr any) error {
	t := reflect.TypeOf(ptr)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Interface {
		return fmt.Errorf("%w: %T is not a pointer to an interface", ErrInvalidConstructor, ptr)
	}
	if name == "" {
		name = typeKeyOf(t.Elem())
	}
	return r.add(&typeEntry{name: name, typ: t.Elem(), abstract: true})
}

func (r *Registry) add(e *typeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[e.name]; exists {
		return fmt.Errorf("%w: [%s]", ErrDuplicateType, e.name)
	}
	r.entries[e.name] = e

	if _, indexed := r.names[e.typ]; !indexed {
		r.names[e.typ] = e.name
		r.forgetDescriptorsUsing(e.typ)
	}
	return nil
}

// forgetDescriptorsUsing drops cached descriptors with a parameter of type
// t, so they are re-introspected now that t has a name. A parameter's kind
// then never depends on registration order (must hold mu.Lock).
func (r *Registry) forgetDescriptorsUsing(t reflect.Type) {
	for name, d := range r.descriptors {
		for _, p := range d.Params {
			if p.Type == t {
				delete(r.descriptors, name)
				break
			}
		}
	}
}

func (e *typeEntry) hasParam(name string, n int) bool {
	for i := 0; i < n; i++ {
		if e.paramName(i) == name {
			return true
		}
	}
	return false
}

// ── Introspection ─────────────────────────────────────────────────────────────

// Describe returns the constructor descriptor for name, introspecting it on
// first use.
func (r *Registry) Describe(name string) (*Descriptor, error) {
	r.mu.RLock()
	d, cached := r.descriptors[name]
	e, known := r.entries[name]
	r.mu.RUnlock()

	if cached {
		return d, nil
	}
	if !known {
		return nil, &UnknownTypeError{Name: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if d, cached := r.descriptors[name]; cached {
		return d, nil
	}
	d = r.describe(e)
	r.descriptors[name] = d
	return d, nil
}

// describe builds a descriptor (must hold mu).
func (r *Registry) describe(e *typeEntry) *Descriptor {
	d := &Descriptor{Name: e.name, Type: e.typ, Abstract: e.abstract}
	if !e.ctor.IsValid() {
		return d
	}

	fnType := e.ctor.Type()
	d.Params = make([]Param, fnType.NumIn())
	for i := 0; i < fnType.NumIn(); i++ {
		pt := fnType.In(i)
		p := Param{Index: i, Name: e.paramName(i), Type: pt}
		p.Kind, p.TypeName = r.classify(pt)
		if v, ok := e.defaults[p.Name]; ok {
			p.HasDefault, p.Default = true, v
		}
		d.Params[i] = p
	}
	return d
}

// classify tags a parameter type (must hold mu).
func (r *Registry) classify(t reflect.Type) (ParamKind, string) {
	if name, ok := r.names[t]; ok {
		return ObjectParam, name
	}
	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return PrimitiveParam, ""
		}
		return UnknownParam, t.String()
	case reflect.Struct:
		return UnknownParam, t.String()
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return UnknownParam, t.String()
		}
	}
	return PrimitiveParam, ""
}

// Lookup returns the name registered for the Go type t.
func (r *Registry) Lookup(t reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[t]
	return name, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Instantiate builds a new instance of the described type from positional
// arguments.
func (r *Registry) Instantiate(d *Descriptor, args []reflect.Value) (any, error) {
	if d.Abstract {
		return nil, fmt.Errorf("%w: [%s] is abstract", ErrNotInstantiable, d.Name)
	}

	r.mu.RLock()
	e, ok := r.entries[d.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownTypeError{Name: d.Name}
	}

	if !e.ctor.IsValid() {
		return reflect.New(e.typ.Elem()).Interface(), nil
	}

	results := e.ctor.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, &ConstructorError{Name: d.Name, Err: results[1].Interface().(error)}
	}
	return results[0].Interface(), nil
}

// ── Type keys ─────────────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// name when registering without an explicit one.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
func TypeKey(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	return typeKeyOf(t)
}

func typeKeyOf(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
