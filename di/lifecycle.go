package di

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// State is the lifecycle state of a singleton instance slot. Transitions are
// one-directional: Uninitialized -> Constructing -> Ready -> Destroyed.
type State int

const (
	Uninitialized State = iota
	Constructing
	Ready
	Destroyed
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Constructing:
		return "constructing"
	case Ready:
		return "ready"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Phase names the step of an instance's life that failed.
type Phase string

const (
	PhaseProvide       Phase = "provider"
	PhasePostConstruct Phase = "post-construct"
	PhasePreDestroy    Phase = "pre-destroy"
)

// PostConstructor is implemented by instances that need initialization
// after their dependencies are injected. PostConstruct runs exactly once,
// before the instance becomes Ready. An error fails construction.
type PostConstructor interface {
	PostConstruct() error
}

// PreDestroyer is implemented by singletons that release resources on
// Container.Shutdown.
type PreDestroyer interface {
	PreDestroy() error
}

// slot holds a realized singleton and its state.
type slot struct {
	binding  Binding
	state    State
	instance any
}

func runPostConstruct(b Binding, instance any) (err error) {
	defer recoverInto(&err)

	if pc, ok := instance.(PostConstructor); ok {
		if err := pc.PostConstruct(); err != nil {
			return err
		}
	}
	if b.PostConstruct != nil {
		return b.PostConstruct(instance)
	}
	return nil
}

// runPreDestroy runs the PreDestroyer hook and the registration callback.
// Each runs even when the other fails or panics; their errors are combined.
// When neither exists an io.Closer instance is closed instead.
func runPreDestroy(b Binding, instance any) error {
	var err error
	explicit := false
	if pd, ok := instance.(PreDestroyer); ok {
		explicit = true
		err = multierr.Append(err, guard(pd.PreDestroy))
	}
	if b.PreDestroy != nil {
		explicit = true
		err = multierr.Append(err, guard(func() error { return b.PreDestroy(instance) }))
	}
	if !explicit {
		if c, ok := instance.(io.Closer); ok {
			return guard(c.Close)
		}
	}
	return err
}

// guard calls fn and turns a panic into ErrProviderPanic.
func guard(fn func() error) (err error) {
	defer recoverInto(&err)
	return fn()
}

// recoverInto converts a panic into ErrProviderPanic.
func recoverInto(err *error) {
	if rec := recover(); rec != nil {
		*err = errors.Wrapf(ErrProviderPanic, "%v", rec)
	}
}
