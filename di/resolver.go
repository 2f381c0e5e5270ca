package di

import "strings"

// Plan is a construction order: every binding appears after all bindings it
// depends on.
type Plan []Binding

// IDs returns the binding IDs in plan order.
func (p Plan) IDs() []ID {
	out := make([]ID, len(p))
	for i, b := range p {
		out[i] = b.ID
	}
	return out
}

// Index returns the position of ref in the plan, or -1.
func (p Plan) Index(ref Ref) int {
	id := ref.ID()
	for i, b := range p {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// String renders the plan as "a, b, c".
func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, b := range p {
		parts[i] = b.ID.String()
	}
	return strings.Join(parts, ", ")
}

// Resolve computes a construction plan for bindings.
//
// Bindings are visited depth-first in slice order and dependencies in
// declared order, so the same input always yields the same plan. Resolution
// stops at the first problem:
//   - CyclicDependencyError when a binding is reached while still on the
//     current path
//   - UnresolvedDependencyError when a required dependency is not bound
//   - DuplicateBindingError when two bindings share an ID
func Resolve(bindings []Binding) (Plan, error) {
	r, err := newResolver(bindings)
	if err != nil {
		return nil, err
	}
	for i := range bindings {
		if err := r.visit(i); err != nil {
			return nil, err
		}
	}
	return r.plan, nil
}

// ResolveFrom computes the plan for the closure of roots only. Bindings not
// reachable from a root are left out.
func ResolveFrom(bindings []Binding, roots ...Ref) (Plan, error) {
	r, err := newResolver(bindings)
	if err != nil {
		return nil, err
	}
	for _, root := range roots {
		id := root.ID()
		i, ok := r.index[id]
		if !ok {
			return nil, UnknownCapabilityError{ID: id}
		}
		if err := r.visit(i); err != nil {
			return nil, err
		}
	}
	return r.plan, nil
}

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

type resolver struct {
	bindings []Binding
	index    map[ID]int
	states   []visitState

	// stack is the current DFS path, used to report cycles.
	stack []ID
	plan  Plan
}

func newResolver(bindings []Binding) (*resolver, error) {
	r := &resolver{
		bindings: bindings,
		index:    make(map[ID]int, len(bindings)),
		states:   make([]visitState, len(bindings)),
		plan:     make(Plan, 0, len(bindings)),
	}
	for i, b := range bindings {
		if _, exists := r.index[b.ID]; exists {
			return nil, DuplicateBindingError{ID: b.ID}
		}
		r.index[b.ID] = i
	}
	return r, nil
}

func (r *resolver) visit(i int) error {
	b := r.bindings[i]

	switch r.states[i] {
	case visiting:
		return r.cycle(b.ID)
	case visited:
		return nil
	}

	r.states[i] = visiting
	r.stack = append(r.stack, b.ID)

	for _, dep := range b.Deps {
		j, ok := r.index[dep.ID]
		if !ok {
			if dep.Optional {
				continue
			}
			return UnresolvedDependencyError{Missing: dep.ID, Dependent: b.ID}
		}
		if err := r.visit(j); err != nil {
			return err
		}
	}

	r.stack = r.stack[:len(r.stack)-1]
	r.states[i] = visited
	r.plan = append(r.plan, b)
	return nil
}

// cycle reports the path from the first occurrence of at on the stack back
// to at.
func (r *resolver) cycle(at ID) error {
	start := 0
	for i, id := range r.stack {
		if id == at {
			start = i
			break
		}
	}
	path := make([]ID, 0, len(r.stack)-start+1)
	path = append(path, r.stack[start:]...)
	path = append(path, at)
	return CyclicDependencyError{Path: path}
}
