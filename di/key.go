package di

import (
	"strings"

	"github.com/pkg/errors"
)

// Key identifies a capability a dependency is requested by, usually the name
// of an interface or contract.
//
// Keys are typically defined as package-level constants to avoid typos.
//
// Example:
//
//	const (
//	  KeyMemberRepository di.Key = "memberRepository"
//	  KeyDiscountPolicy   di.Key = "discountPolicy"
//	)
type Key string

// ID returns the unqualified binding identity for k.
func (k Key) ID() ID { return ID{Key: k} }

// Qualified returns the identity of k disambiguated by qualifier.
func (k Key) Qualified(qualifier string) ID { return ID{Key: k, Qualifier: qualifier} }

// ID is the identity of a binding: a capability key plus an optional
// qualifier. Unqualified bindings have an empty Qualifier.
type ID struct {
	Key       Key
	Qualifier string
}

// ID returns id itself, so both Key and ID satisfy Ref.
func (id ID) ID() ID { return id }

// String renders the ID as "key" or "key@qualifier".
func (id ID) String() string {
	if id.Qualifier == "" {
		return string(id.Key)
	}
	return string(id.Key) + "@" + id.Qualifier
}

// ParseID parses the "key" / "key@qualifier" form produced by ID.String.
func ParseID(s string) ID {
	key, qualifier, _ := strings.Cut(strings.TrimSpace(s), "@")
	return ID{Key: Key(key), Qualifier: qualifier}
}

// Ref names a binding. Key and ID both implement it.
type Ref interface {
	ID() ID
}

// Dep is a dependency declared by a binding.
//
// A required dependency must be bound for the graph to resolve. An optional
// dependency that is not bound is simply absent from the provider's Deps.
type Dep struct {
	ID       ID
	Optional bool
}

// Scope controls how many instances the container creates for a binding.
type Scope int

const (
	// Singleton is the default scope. The provider runs once during
	// Container.Start and the instance is shared by every lookup.
	Singleton Scope = iota

	// Transient means a new instance is built on every lookup.
	Transient
)

// String returns the human-readable name of the scope.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// ParseScope parses "singleton" or "transient". The empty string is
// Singleton.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "singleton":
		return Singleton, nil
	case "transient", "prototype":
		return Transient, nil
	default:
		return Singleton, errors.Wrapf(ErrInvalidScope, "%q", s)
	}
}
