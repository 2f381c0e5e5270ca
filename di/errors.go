package di

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidBinding is returned when a binding has an empty key or a nil
	// provider.
	ErrInvalidBinding = errors.New("di: invalid binding")

	// ErrInvalidScope is returned by ParseScope for unknown scope names.
	ErrInvalidScope = errors.New("di: invalid scope")

	// ErrContainerStarted is returned when Register or Start is called on a
	// container that has already started. Bindings are immutable after Start.
	ErrContainerStarted = errors.New("di: container already started")

	// ErrContainerClosed is returned by every operation except Shutdown once
	// the container has been shut down.
	ErrContainerClosed = errors.New("di: container closed")

	// ErrProviderPanic is returned (wrapped in a ConstructionError) when a
	// provider or lifecycle hook panics.
	ErrProviderPanic = errors.New("di: panic during provider call")

	// ErrNilInstance is returned (wrapped in a ConstructionError) when a
	// provider returns a nil instance without an error.
	ErrNilInstance = errors.New("di: provider returned nil instance")
)

// DuplicateBindingError is returned when a binding is registered for an ID
// that is already bound. The first binding stays active.
type DuplicateBindingError struct{ ID ID }

// Error implements the error interface.
func (e DuplicateBindingError) Error() string {
	// Example: di: duplicate binding "discountPolicy@rate"
	return "di: duplicate binding " + strconv.Quote(e.ID.String())
}

// UnknownCapabilityError is returned when a lookup names an ID with no
// binding.
type UnknownCapabilityError struct{ ID ID }

// Error implements the error interface.
func (e UnknownCapabilityError) Error() string {
	return "di: unknown capability " + strconv.Quote(e.ID.String())
}

// UnresolvedDependencyError is returned when a binding declares a required
// dependency that nothing provides.
type UnresolvedDependencyError struct {
	// Missing is the dependency with no binding.
	Missing ID

	// Dependent is the binding that declared it.
	Dependent ID
}

// Error implements the error interface.
func (e UnresolvedDependencyError) Error() string {
	// Example: di: "orderService" depends on unregistered capability "discountPolicy"
	return "di: " + strconv.Quote(e.Dependent.String()) +
		" depends on unregistered capability " + strconv.Quote(e.Missing.String())
}

// CyclicDependencyError is returned when the dependency graph contains a
// cycle.
type CyclicDependencyError struct {
	// Path runs from the first repeated binding back to itself,
	// e.g. [a b a].
	Path []ID
}

// Error implements the error interface.
func (e CyclicDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = id.String()
	}
	// Example: di: dependency cycle a -> b -> a
	return "di: dependency cycle " + strings.Join(parts, " -> ")
}

// Participants returns the distinct bindings on the cycle, in path order.
func (e CyclicDependencyError) Participants() []ID {
	if len(e.Path) < 2 {
		return append([]ID(nil), e.Path...)
	}
	return append([]ID(nil), e.Path[:len(e.Path)-1]...)
}

// ContainerNotStartedError is returned when a singleton is looked up before
// Container.Start, or when a transient lookup needs a singleton that has not
// been built yet.
type ContainerNotStartedError struct{ ID ID }

// Error implements the error interface.
func (e ContainerNotStartedError) Error() string {
	return "di: container not started (resolving " + strconv.Quote(e.ID.String()) + ")"
}

// ConstructionError wraps a failure raised by a provider or a lifecycle
// hook. The underlying error is available through errors.Unwrap.
type ConstructionError struct {
	ID    ID
	Phase Phase
	Err   error
}

// Error implements the error interface.
func (e ConstructionError) Error() string {
	// Example: di: "memberRepository" post-construct: connection refused
	return "di: " + strconv.Quote(e.ID.String()) + " " + string(e.Phase) + ": " + e.Err.Error()
}

// Unwrap returns the provider or hook error.
func (e ConstructionError) Unwrap() error { return e.Err }

// MissingDependencyError is returned when a provider asks its Deps for a
// dependency that was not resolved, either because it was never declared or
// because it is an optional dependency that is not bound.
type MissingDependencyError struct{ ID ID }

// Error implements the error interface.
func (e MissingDependencyError) Error() string {
	// Example: di: dependency "tracer" missing
	return "di: dependency " + strconv.Quote(e.ID.String()) + " missing"
}

// WrongTypeDependencyError is returned when a resolved value exists but is
// not of the requested type.
type WrongTypeDependencyError struct {
	// ID is the binding requested.
	ID ID

	// GotType is the %T rendering of the stored value.
	GotType string
}

// Error implements the error interface.
func (e WrongTypeDependencyError) Error() string {
	// Example: di: dependency "db" has wrong type (*core.Logger)
	return "di: dependency " + strconv.Quote(e.ID.String()) + " has wrong type (" + e.GotType + ")"
}
