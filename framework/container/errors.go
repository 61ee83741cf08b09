package container

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned when a type name (or a declared parameter
	// type) is not known to the registry.
	ErrUnknownType = errors.New("container: unknown type")

	// ErrUnresolvableParameter is returned when a primitive constructor
	// parameter has neither a contextual binding nor a default.
	ErrUnresolvableParameter = errors.New("container: unresolvable parameter")

	// ErrNotInitialized is returned by GetInstance before SetInstance.
	ErrNotInitialized = errors.New("container: instance not set")

	// ErrNotInstantiable is returned when an abstract (interface) type is
	// created without a binding.
	ErrNotInstantiable = errors.New("container: type is not instantiable")

	// ErrDuplicateType is returned when a name is registered twice.
	ErrDuplicateType = errors.New("container: duplicate type")

	// ErrInvalidConstructor is returned when a registered constructor has an
	// unsupported signature.
	ErrInvalidConstructor = errors.New("container: invalid constructor")

	// ErrInvalidBinding is returned when Bind or Singleton receive an
	// implementation that is neither a type name nor a factory.
	ErrInvalidBinding = errors.New("container: invalid binding")

	// ErrArgumentType is returned when a resolved value cannot be passed to
	// the constructor parameter it was resolved for.
	ErrArgumentType = errors.New("container: argument type mismatch")

	// ErrCircularDependency is returned when a type is requested again while
	// it is still being built on the same resolution path.
	ErrCircularDependency = errors.New("container: circular dependency")
)

// UnknownTypeError names a type that does not exist in the registry. When
// the type was a declared constructor parameter, Dependant names the type
// being built.
type UnknownTypeError struct {
	Name      string
	Dependant string
}

func (e *UnknownTypeError) Error() string {
	if e.Dependant == "" {
		return fmt.Sprintf("container: unknown type [%s]", e.Name)
	}
	return fmt.Sprintf("container: unknown type [%s] required by [%s]", e.Name, e.Dependant)
}

func (e *UnknownTypeError) Is(target error) bool { return target == ErrUnknownType }

// UnresolvableParameterError reports a primitive parameter with no binding.
// Param carries the "$" marker, matching the key a contextual binding for it
// would use.
type UnresolvableParameterError struct {
	Param     string
	Dependant string
}

func (e *UnresolvableParameterError) Error() string {
	return fmt.Sprintf("container: could not resolve parameter %s for dependant %s", e.Param, e.Dependant)
}

func (e *UnresolvableParameterError) Is(target error) bool { return target == ErrUnresolvableParameter }

// ArgumentTypeError reports a resolved value whose type does not fit the
// parameter.
type ArgumentTypeError struct {
	Dependant string
	Param     string
	Want      string
	Got       string
}

func (e *ArgumentTypeError) Error() string {
	return fmt.Sprintf("container: parameter %s of [%s] wants %s, got %s", e.Param, e.Dependant, e.Want, e.Got)
}

func (e *ArgumentTypeError) Is(target error) bool { return target == ErrArgumentType }

// ConstructorError wraps an error returned by a registered constructor.
type ConstructorError struct {
	Name string
	Err  error
}

func (e *ConstructorError) Error() string {
	return fmt.Sprintf("container: constructing [%s]: %v", e.Name, e.Err)
}

func (e *ConstructorError) Unwrap() error { return e.Err }
