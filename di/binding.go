package di

import "github.com/pkg/errors"

// Provider constructs an instance from its resolved dependencies.
//
// Providers are plain functions: every dependency they need arrives already
// built in deps, so an instance is never observable half-wired.
type Provider func(deps Deps) (any, error)

// Hook is a lifecycle callback supplied at registration time. It receives the
// instance the provider built.
type Hook func(instance any) error

// Binding maps an ID to exactly one provider.
type Binding struct {
	ID       ID
	Provider Provider
	Scope    Scope

	// Deps lists the declared dependencies in the order they are resolved.
	Deps []Dep

	// PostConstruct runs after the instance's PostConstructor hook, if any.
	PostConstruct Hook

	// PreDestroy runs after the instance's PreDestroyer hook, if any.
	// Transient instances are owned by the caller and never see it.
	PreDestroy Hook
}

func (b Binding) validate() error {
	if b.ID.Key == "" {
		return errors.Wrap(ErrInvalidBinding, "empty key")
	}
	if b.Provider == nil {
		return errors.Wrapf(ErrInvalidBinding, "%q: nil provider", b.ID.String())
	}
	if b.Scope != Singleton && b.Scope != Transient {
		return errors.Wrapf(ErrInvalidScope, "%q: %d", b.ID.String(), int(b.Scope))
	}
	for _, d := range b.Deps {
		if d.ID.Key == "" {
			return errors.Wrapf(ErrInvalidBinding, "%q: dependency with empty key", b.ID.String())
		}
	}
	return nil
}

// Option configures a Binding during registration.
type Option func(*Binding)

// Qualified sets the qualifier that disambiguates several bindings of the
// same key.
func Qualified(qualifier string) Option {
	return func(b *Binding) {
		b.ID.Qualifier = qualifier
	}
}

// WithScope sets the Scope of the binding. The default is Singleton.
func WithScope(s Scope) Option {
	return func(b *Binding) {
		b.Scope = s
	}
}

// DependsOn declares required dependencies.
func DependsOn(refs ...Ref) Option {
	return func(b *Binding) {
		for _, r := range refs {
			b.Deps = append(b.Deps, Dep{ID: r.ID()})
		}
	}
}

// OptionalDependsOn declares dependencies that are injected when bound and
// skipped otherwise.
func OptionalDependsOn(refs ...Ref) Option {
	return func(b *Binding) {
		for _, r := range refs {
			b.Deps = append(b.Deps, Dep{ID: r.ID(), Optional: true})
		}
	}
}

// OnPostConstruct adds a registration-time post-construct callback.
func OnPostConstruct(h Hook) Option {
	return func(b *Binding) {
		b.PostConstruct = h
	}
}

// OnPreDestroy adds a registration-time pre-destroy callback.
func OnPreDestroy(h Hook) Option {
	return func(b *Binding) {
		b.PreDestroy = h
	}
}

// NewBinding builds a Binding for key from provider and options.
func NewBinding(key Key, provider Provider, opts ...Option) Binding {
	b := Binding{
		ID:       ID{Key: key},
		Provider: provider,
		Scope:    Singleton,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Value returns a Provider that always yields v. It is the way to register
// prebuilt instances such as configuration.
func Value(v any) Provider {
	return func(Deps) (any, error) { return v, nil }
}

// Typed adapts a typed constructor to a Provider.
func Typed[T any](fn func(Deps) (T, error)) Provider {
	return func(d Deps) (any, error) {
		v, err := fn(d)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
