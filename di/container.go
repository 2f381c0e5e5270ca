package di

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Container owns singleton instances and drives their lifecycle.
//
// Usage follows three phases:
//
//  1. Register bindings (Register, Bind, Provide).
//  2. Start: resolve the plan and build every singleton in order.
//  3. Get instances; Shutdown when done.
//
// Get is safe for concurrent use after Start returns. Start and Shutdown must
// not run concurrently; the container only guards against double shutdown.
type Container struct {
	// mu guards the registry and Start.
	mu       sync.Mutex
	registry *Registry
	logger   *zap.Logger

	// current is published once by a successful Start and never mutated
	// afterwards, which keeps singleton lookups lock-free.
	current atomic.Pointer[snapshot]
	closed  atomic.Bool
}

// ContainerOption configures a Container.
type ContainerOption func(*Container)

// WithLogger sets the logger used for lifecycle events. The default is a
// no-op logger.
func WithLogger(l *zap.Logger) ContainerOption {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty Container ready for registration.
func New(opts ...ContainerOption) *Container {
	c := &Container{
		registry: NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("di")
	return c
}

// snapshot is the immutable result of a successful Start.
type snapshot struct {
	plan     Plan
	bindings map[ID]Binding
	slots    map[ID]*slot

	// order holds singletons in construction order; Shutdown walks it
	// backwards.
	order []*slot
}

// Register binds key to provider. See NewBinding for options.
func (c *Container) Register(key Key, provider Provider, opts ...Option) error {
	return c.Bind(NewBinding(key, provider, opts...))
}

// Bind registers a fully described binding.
func (c *Container) Bind(b Binding) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrContainerClosed
	}
	if c.current.Load() != nil {
		return ErrContainerStarted
	}
	if err := c.registry.Register(b); err != nil {
		return err
	}
	c.logger.Debug("registered",
		zap.Stringer("binding", b.ID),
		zap.Stringer("scope", b.Scope),
		zap.Int("deps", len(b.Deps)),
	)
	return nil
}

// Lookup returns the binding registered for ref.
func (c *Container) Lookup(ref Ref) (Binding, error) {
	if snap := c.current.Load(); snap != nil {
		b, ok := snap.bindings[ref.ID()]
		if !ok {
			return Binding{}, UnknownCapabilityError{ID: ref.ID()}
		}
		return b, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Lookup(ref)
}

// Plan returns the construction plan. After Start it is the plan that was
// executed; before Start it is computed from the current bindings.
func (c *Container) Plan() (Plan, error) {
	if snap := c.current.Load(); snap != nil {
		return snap.plan, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Resolve(c.registry.Bindings())
}

// Started reports whether Start has completed successfully.
func (c *Container) Started() bool { return c.current.Load() != nil }

// Start resolves the plan and builds every singleton in plan order.
//
// Start is all-or-nothing. If resolution fails nothing is built. If a
// provider or post-construct hook fails, the singletons already built by
// this attempt are torn down in reverse order and the error is returned;
// the container is left as if Start had never been called, so the caller can
// fix the cause and call Start again.
func (c *Container) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return ErrContainerClosed
	}
	if c.current.Load() != nil {
		return ErrContainerStarted
	}

	bindings := c.registry.Bindings()
	plan, err := Resolve(bindings)
	if err != nil {
		c.logger.Error("resolve failed", zap.Error(err))
		return err
	}

	bd := newBuilder(bindings, c.logger)
	order := make([]*slot, 0, len(plan))

	for _, b := range plan {
		if b.Scope != Singleton {
			continue
		}
		s := &slot{binding: b, state: Constructing}
		inst, err := bd.build(b)
		if err != nil {
			c.logger.Error("start failed, rolling back",
				zap.Stringer("binding", b.ID),
				zap.Stringer("state", s.state),
				zap.Int("built", len(order)),
				zap.Error(err),
			)
			c.teardown(order)
			return err
		}
		s.instance = inst
		s.state = Ready
		bd.ready[b.ID] = s
		order = append(order, s)
	}

	c.current.Store(&snapshot{
		plan:     plan,
		bindings: bd.bindings,
		slots:    bd.ready,
		order:    order,
	})
	c.logger.Info("started", zap.Int("bindings", len(plan)), zap.Int("singletons", len(order)))
	return nil
}

// Get returns the instance bound to ref.
//
// Singletons are served from the cache built by Start; looking one up before
// Start fails with ContainerNotStartedError. Transients are built fresh on
// every call and may be looked up before Start as long as none of their
// dependencies is a singleton.
func (c *Container) Get(ref Ref) (any, error) {
	if c.closed.Load() {
		return nil, ErrContainerClosed
	}
	id := ref.ID()
	snap := c.current.Load()
	if snap == nil {
		return c.getBeforeStart(id)
	}

	if s, ok := snap.slots[id]; ok {
		return s.instance, nil
	}
	b, ok := snap.bindings[id]
	if !ok {
		return nil, UnknownCapabilityError{ID: id}
	}
	bd := &builder{bindings: snap.bindings, ready: snap.slots, logger: c.logger}
	return bd.build(b)
}

func (c *Container) getBeforeStart(id ID) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.registry.Lookup(id)
	if err != nil {
		return nil, err
	}
	if b.Scope == Singleton {
		return nil, ContainerNotStartedError{ID: id}
	}
	bindings := c.registry.Bindings()
	if _, err := ResolveFrom(bindings, id); err != nil {
		return nil, err
	}
	return newBuilder(bindings, c.logger).build(b)
}

// State returns the lifecycle state of the singleton slot for ref. Unknown
// and transient bindings, and every binding before Start, report
// Uninitialized.
func (c *Container) State(ref Ref) State {
	snap := c.current.Load()
	if snap == nil {
		return Uninitialized
	}
	s, ok := snap.slots[ref.ID()]
	if !ok {
		return Uninitialized
	}
	return s.state
}

// Shutdown runs pre-destroy hooks on every Ready singleton in exactly the
// reverse of construction order and marks them Destroyed. Hook failures are
// logged and do not stop the remaining hooks.
//
// Shutdown is idempotent: later calls are no-ops. After Shutdown the
// container is closed for good.
func (c *Container) Shutdown() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	snap := c.current.Load()
	if snap == nil {
		c.logger.Info("shutdown before start")
		return
	}
	c.teardown(snap.order)
	c.logger.Info("shutdown complete", zap.Int("singletons", len(snap.order)))
}

// teardown destroys Ready slots in reverse order.
func (c *Container) teardown(order []*slot) {
	for i := len(order) - 1; i >= 0; i-- {
		s := order[i]
		if s.state != Ready {
			continue
		}
		if err := runPreDestroy(s.binding, s.instance); err != nil {
			c.logger.Warn("pre-destroy failed",
				zap.Stringer("binding", s.binding.ID),
				zap.Error(ConstructionError{ID: s.binding.ID, Phase: PhasePreDestroy, Err: err}),
			)
		}
		s.state = Destroyed
		c.logger.Debug("destroyed", zap.Stringer("binding", s.binding.ID))
	}
}

// builder instantiates bindings whose dependencies are either Ready
// singletons or transients it can build on the spot. The graph must already
// be known to be acyclic.
type builder struct {
	bindings map[ID]Binding
	ready    map[ID]*slot
	logger   *zap.Logger
}

func newBuilder(bindings []Binding, logger *zap.Logger) *builder {
	idx := make(map[ID]Binding, len(bindings))
	for _, b := range bindings {
		idx[b.ID] = b
	}
	return &builder{bindings: idx, ready: map[ID]*slot{}, logger: logger}
}

func (bd *builder) build(b Binding) (any, error) {
	deps, err := bd.resolveDeps(b)
	if err != nil {
		return nil, err
	}

	inst, err := callProvider(b, deps)
	if err != nil {
		return nil, ConstructionError{ID: b.ID, Phase: PhaseProvide, Err: err}
	}
	if err := runPostConstruct(b, inst); err != nil {
		return nil, ConstructionError{ID: b.ID, Phase: PhasePostConstruct, Err: err}
	}

	bd.logger.Debug("constructed", zap.Stringer("binding", b.ID), zap.Stringer("scope", b.Scope))
	return inst, nil
}

func (bd *builder) resolveDeps(b Binding) (Deps, error) {
	vals := make(map[ID]any, len(b.Deps))
	for _, dep := range b.Deps {
		if s, ok := bd.ready[dep.ID]; ok {
			vals[dep.ID] = s.instance
			continue
		}
		db, ok := bd.bindings[dep.ID]
		if !ok {
			if dep.Optional {
				continue
			}
			return Deps{}, UnresolvedDependencyError{Missing: dep.ID, Dependent: b.ID}
		}
		if db.Scope == Singleton {
			return Deps{}, ContainerNotStartedError{ID: dep.ID}
		}
		inst, err := bd.build(db)
		if err != nil {
			return Deps{}, err
		}
		vals[dep.ID] = inst
	}
	return newDeps(b.ID, vals), nil
}

func callProvider(b Binding, deps Deps) (inst any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			inst = nil
			err = errors.Wrapf(ErrProviderPanic, "%v", rec)
		}
	}()

	inst, err = b.Provider(deps)
	if err != nil {
		return nil, err
	}
	if isNil(inst) {
		return nil, ErrNilInstance
	}
	return inst, nil
}

// isNil reports whether v is nil or a typed nil boxed in an interface, as
// produced by Typed for a constructor returning (*T)(nil).
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
