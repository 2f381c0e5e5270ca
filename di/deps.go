package di

import "fmt"

// Deps is the bag of resolved dependencies handed to a Provider.
//
// It holds exactly the dependencies the binding declared, already built.
// Optional dependencies that are not bound are absent. Typed retrieval is
// available via GetAs / TryGetAs / MustGetAs.
//
// Deps is read-only; providers must not keep it beyond the call.
type Deps struct {
	owner ID
	vals  map[ID]any
}

func newDeps(owner ID, vals map[ID]any) Deps {
	return Deps{owner: owner, vals: vals}
}

// Owner returns the ID of the binding being constructed.
func (d Deps) Owner() ID { return d.owner }

// Len returns the number of resolved dependencies.
func (d Deps) Len() int { return len(d.vals) }

// Has reports whether a dependency was resolved for ref (regardless of type).
func (d Deps) Has(ref Ref) bool {
	_, ok := d.vals[ref.ID()]
	return ok
}

// GetAny returns the raw resolved value without type assertions.
func (d Deps) GetAny(ref Ref) (any, bool) {
	v, ok := d.vals[ref.ID()]
	return v, ok
}

// GetAs returns the dependency typed as D.
//
// ok is false if the dependency is missing or is not a D.
func GetAs[D any](d Deps, ref Ref) (D, bool) {
	var zero D
	raw, ok := d.vals[ref.ID()]
	if !ok || raw == nil {
		return zero, false
	}
	v, ok := raw.(D)
	return v, ok
}

// TryGetAs returns the dependency typed as D.
//
// It returns:
//   - MissingDependencyError if the dependency was not resolved
//   - WrongTypeDependencyError if it was resolved but is not a D
func TryGetAs[D any](d Deps, ref Ref) (D, error) {
	var zero D
	id := ref.ID()
	raw, ok := d.vals[id]
	if !ok || raw == nil {
		return zero, MissingDependencyError{ID: id}
	}
	v, ok := raw.(D)
	if !ok {
		return zero, WrongTypeDependencyError{ID: id, GotType: fmt.Sprintf("%T", raw)}
	}
	return v, nil
}

// MustGetAs returns the dependency typed as D or panics.
//
// Providers declaring the dependency as required can use it safely: the
// container never calls a provider with a required dependency missing.
func MustGetAs[D any](d Deps, ref Ref) D {
	v, err := TryGetAs[D](d, ref)
	if err != nil {
		panic(err)
	}
	return v
}
