package container

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// ── Resolution ────────────────────────────────────────────────────────────────

// Create builds an instance of name. The creator for name is made on the
// first call and cached; every later call reuses that decision but still
// resolves the constructor's dependencies afresh, unless name is a
// singleton.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Create("UserRepository")
func (c *Container) Create(name string) (any, error) {
	key := c.canonical(name)
	if key == selfName {
		return c, nil
	}

	parent := c.trail
	if !parent.active() {
		parent = nil
	}
	if parent.contains(key) {
		return nil, parent.circularError(key)
	}

	next := &trail{name: key, parent: parent}
	if parent == nil {
		next.res = &resolution{}
		defer next.res.closed.Store(true)
	} else {
		next.res = parent.res
	}

	start := time.Now()
	inst, err := c.create(&Container{state: c.state, trail: next}, key)
	elapsed := time.Since(start)

	c.notifyResolved(key, elapsed, err)
	if parent == nil {
		if err != nil {
			c.logger().Debug().Err(err).Str("type", key).Msg("container: resolution failed")
		} else {
			c.logger().Debug().Str("type", key).Dur("elapsed", elapsed).Msg("container: resolved")
		}
	}
	return inst, err
}

func (c *Container) create(scoped *Container, key string) (any, error) {
	f, err := c.creatorFor(key)
	if err != nil {
		return nil, err
	}
	inst, err := f(scoped)
	if err != nil {
		return nil, err
	}
	c.fireAfterResolving(key, inst)
	return inst, nil
}

// creatorFor returns the cached creator for key, building it on a miss.
func (c *Container) creatorFor(key string) (Factory, error) {
	c.mu.RLock()
	f, ok := c.creators[key]
	load := c.deferred[key]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}

	if load != nil {
		if err := load(); err != nil {
			return nil, err
		}
		c.mu.Lock()
		delete(c.deferred, key)
		f, ok = c.creators[key]
		c.mu.Unlock()
		if ok {
			return f, nil
		}
	}

	f, err := c.makeCreator(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	existing, raced := c.creators[key]
	if !raced {
		c.creators[key] = f
	}
	c.mu.Unlock()
	if raced {
		return existing, nil
	}

	c.logger().Debug().Str("type", key).Msg("container: creator built")
	c.notifyCreatorBuilt(key)
	return f, nil
}

// makeCreator returns the constructor-walking creator for name.
func (c *Container) makeCreator(name string) (Factory, error) {
	d, err := c.types.Describe(name)
	if err != nil {
		return nil, err
	}
	if d.Abstract {
		return nil, fmt.Errorf("%w: [%s] has no binding", ErrNotInstantiable, name)
	}

	return c.decorate(name, func(v *Container) (any, error) {
		// descriptors are cached by the registry; asking again picks up
		// parameter types registered after this creator was made
		d, err := v.types.Describe(name)
		if err != nil {
			return nil, err
		}
		args, err := v.resolveArgs(d)
		if err != nil {
			return nil, err
		}
		return v.types.Instantiate(d, args)
	}), nil
}

func (c *Container) decorate(name string, build Factory) Factory {
	return func(v *Container) (any, error) {
		inst, err := build(v)
		if err != nil {
			return nil, err
		}
		return v.applyExtenders(name, inst), nil
	}
}

// ── Parameters ────────────────────────────────────────────────────────────────

// resolveArgs resolves every constructor parameter in declaration order,
// stopping at the first failure.
func (c *Container) resolveArgs(d *Descriptor) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(d.Params))
	for i, p := range d.Params {
		val, err := c.resolveParam(d.Name, p)
		if err != nil {
			return nil, err
		}
		arg, err := coerce(d.Name, p, val)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	return args, nil
}

func (c *Container) resolveParam(dependant string, p Param) (any, error) {
	switch p.Kind {
	case ObjectParam:
		return c.resolveObject(dependant, p)
	case PrimitiveParam:
		return c.resolvePrimitive(dependant, p)
	default:
		// a declared type that does not exist is never retried as a primitive
		return nil, &UnknownTypeError{Name: p.TypeName, Dependant: dependant}
	}
}

func (c *Container) resolveObject(dependant string, p Param) (any, error) {
	key := c.canonical(p.TypeName)
	if v, ok := c.contextual.lookup(dependant, key); ok {
		switch v.kind {
		case factoryValue:
			return v.factory(c)
		case concreteValue:
			return c.Create(v.concrete)
		default:
			return v.literal, nil
		}
	}
	return c.Create(key)
}

func (c *Container) resolvePrimitive(dependant string, p Param) (any, error) {
	key := p.Key()
	if v, ok := c.contextual.lookup(dependant, key); ok {
		if v.kind == factoryValue {
			return v.factory(c)
		}
		return v.literal, nil
	}
	if p.HasDefault {
		return p.Default, nil
	}
	return nil, &UnresolvableParameterError{Param: key, Dependant: dependant}
}

// coerce fits a resolved value to its parameter type. Besides plain
// assignment it converts between numeric kinds and between string kinds, so
// Give(5) satisfies an int64 parameter. A numeric conversion that would
// overflow, drop a sign or drop a fraction is an ArgumentTypeError.
func coerce(dependant string, p Param, val any) (reflect.Value, error) {
	if val == nil {
		switch p.Type.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return reflect.Zero(p.Type), nil
		}
		return reflect.Value{}, &ArgumentTypeError{Dependant: dependant, Param: p.Name, Want: p.Type.String(), Got: "nil"}
	}

	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(p.Type) {
		return rv, nil
	}
	if sameFamily(rv.Kind(), p.Type.Kind()) && rv.Type().ConvertibleTo(p.Type) {
		if isNumeric(rv.Kind()) && !fitsNumeric(rv, p.Type) {
			return reflect.Value{}, &ArgumentTypeError{
				Dependant: dependant,
				Param:     p.Name,
				Want:      p.Type.String(),
				Got:       fmt.Sprintf("%s(%v)", rv.Type(), rv.Interface()),
			}
		}
		return rv.Convert(p.Type), nil
	}
	return reflect.Value{}, &ArgumentTypeError{
		Dependant: dependant,
		Param:     p.Name,
		Want:      p.Type.String(),
		Got:       rv.Type().String(),
	}
}

// fitsNumeric reports whether the numeric value v converts to t without
// changing its value.
func fitsNumeric(v reflect.Value, t reflect.Type) bool {
	dst := reflect.Zero(t)
	switch {
	case isSigned(v.Kind()):
		n := v.Int()
		switch {
		case isSigned(t.Kind()):
			return !dst.OverflowInt(n)
		case isUnsigned(t.Kind()):
			return n >= 0 && !dst.OverflowUint(uint64(n))
		}
		return true
	case isUnsigned(v.Kind()):
		n := v.Uint()
		switch {
		case isSigned(t.Kind()):
			return n <= math.MaxInt64 && !dst.OverflowInt(int64(n))
		case isUnsigned(t.Kind()):
			return !dst.OverflowUint(n)
		}
		return true
	}

	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return !isSigned(t.Kind()) && !isUnsigned(t.Kind())
	}
	switch {
	case isSigned(t.Kind()):
		return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !dst.OverflowInt(int64(f))
	case isUnsigned(t.Kind()):
		return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !dst.OverflowUint(uint64(f))
	}
	return !dst.OverflowFloat(f)
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func sameFamily(a, b reflect.Kind) bool {
	return (isNumeric(a) && isNumeric(b)) || (a == reflect.String && b == reflect.String)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Create and type-asserts the result.
//
//	// Instead of: v, err := c.Create("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	instance, err := c.Create(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, name, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on failure. Meant for bootstrap
// code where a missing service is a programming error.
func MustResolve[T any](c *Container, name string) T {
	typed, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return typed
}
