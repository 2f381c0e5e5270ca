// Package di provides a small, explicit dependency-injection container for Go.
//
// Bindings map a capability Key (optionally disambiguated by a qualifier) to a
// Provider: a plain function that receives its already-built dependencies in a
// Deps bag. Nothing is discovered by reflection; every binding and every
// dependency edge is declared at registration.
//
// Lifecycle
//
//  1. Register: c.Register / c.Bind / di.Provide. Duplicate IDs fail with
//     DuplicateBindingError and the first binding stays active.
//  2. Start: the Resolver computes a construction plan (dependencies before
//     dependents), failing on cycles or missing dependencies. Singletons are
//     then built sequentially in plan order; PostConstruct hooks run before an
//     instance becomes Ready. Any failure rolls back what was built.
//  3. Get: singletons are served lock-free from the cache; transients are
//     built fresh on every lookup.
//  4. Shutdown: PreDestroy hooks (or io.Closer) run in reverse construction
//     order. Calling Shutdown again is a no-op.
//
// Quick guidance
//
// Use Singleton (the default) for shared services and resources.
// Use Transient for cheap, caller-owned values; the container never destroys
// them.
// Use qualifiers when several implementations share a key:
//
//	c.Register(KeyDiscountPolicy, di.Value(FixDiscountPolicy{}), di.Qualified("fix"))
//	c.Register(KeyDiscountPolicy, di.Value(RateDiscountPolicy{}), di.Qualified("rate"))
//
// Errors are typed (UnknownCapabilityError, CyclicDependencyError, ...) and
// meant to be inspected with errors.As.
//
// Import
//
//	"github.com/sghaida/odi-container/di"
package di
