package di

// Registry holds bindings in registration order.
//
// It is intentionally:
//   - write-once per ID (no override, no re-registration)
//   - ordered (iteration follows registration, which keeps plans deterministic)
//   - not synchronized (Container guards it)
type Registry struct {
	order []ID
	items map[ID]Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{items: map[ID]Binding{}}
}

// Register stores b. It fails with DuplicateBindingError if b.ID is already
// bound, leaving the first binding active.
func (r *Registry) Register(b Binding) error {
	if err := b.validate(); err != nil {
		return err
	}
	if _, exists := r.items[b.ID]; exists {
		return DuplicateBindingError{ID: b.ID}
	}
	b.Deps = append([]Dep(nil), b.Deps...)
	r.items[b.ID] = b
	r.order = append(r.order, b.ID)
	return nil
}

// Lookup returns the binding for ref or UnknownCapabilityError.
func (r *Registry) Lookup(ref Ref) (Binding, error) {
	id := ref.ID()
	b, ok := r.items[id]
	if !ok {
		return Binding{}, UnknownCapabilityError{ID: id}
	}
	return b, nil
}

// MustLookup returns the binding or panics with UnknownCapabilityError.
// Useful in tests where a missing binding should fail fast.
func (r *Registry) MustLookup(ref Ref) Binding {
	b, err := r.Lookup(ref)
	if err != nil {
		panic(err)
	}
	return b
}

// Has reports whether ref is bound.
func (r *Registry) Has(ref Ref) bool {
	_, ok := r.items[ref.ID()]
	return ok
}

// Len returns the number of bindings.
func (r *Registry) Len() int { return len(r.order) }

// Bindings returns a copy of all bindings in registration order.
func (r *Registry) Bindings() []Binding {
	out := make([]Binding, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Qualifiers returns the qualifiers bound for key in registration order. The
// unqualified binding, if any, is reported as "".
func (r *Registry) Qualifiers(key Key) []string {
	var out []string
	for _, id := range r.order {
		if id.Key == key {
			out = append(out, id.Qualifier)
		}
	}
	return out
}
