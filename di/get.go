package di

import "fmt"

// Provide registers a typed constructor under key. It is the recommended way
// to register providers:
//
//	di.Provide(c, KeyMemberService, func(d di.Deps) (*MemberService, error) {
//	    return NewMemberService(di.MustGetAs[MemberRepository](d, KeyMemberRepository)), nil
//	}, di.DependsOn(KeyMemberRepository))
func Provide[T any](c *Container, key Key, fn func(Deps) (T, error), opts ...Option) error {
	return c.Register(key, Typed(fn), opts...)
}

// Get is a generic helper that looks ref up and asserts the result to T:
//
//	svc, err := di.Get[*MemberService](c, KeyMemberService)
func Get[T any](c *Container, ref Ref) (T, error) {
	var zero T

	v, err := c.Get(ref)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, WrongTypeDependencyError{ID: ref.ID(), GotType: fmt.Sprintf("%T", v)}
	}
	return out, nil
}

// GetQualified is Get for a qualified binding:
//
//	policy, err := di.GetQualified[DiscountPolicy](c, KeyDiscountPolicy, "rate")
func GetQualified[T any](c *Container, key Key, qualifier string) (T, error) {
	return Get[T](c, key.Qualified(qualifier))
}

// MustGet is like Get but panics on error. Useful in composition roots and
// tests where a missing binding should fail fast.
func MustGet[T any](c *Container, ref Ref) T {
	v, err := Get[T](c, ref)
	if err != nil {
		panic(err)
	}
	return v
}
