package di_test

import (
	"fmt"
	"testing"

	"github.com/sghaida/odi-container/di"
)

/*
   Shared helpers (NOT counted in benchmarks)
*/

// chain registers n singletons where node i depends on node i-1.
func chain(b *testing.B, n int) *di.Container {
	b.Helper()
	c := di.New()
	for i := 0; i < n; i++ {
		var opts []di.Option
		if i > 0 {
			opts = append(opts, di.DependsOn(di.Key(fmt.Sprintf("n%d", i-1))))
		}
		if err := c.Register(di.Key(fmt.Sprintf("n%d", i)), di.Value(i), opts...); err != nil {
			b.Fatal(err)
		}
	}
	return c
}

/*
   Benchmarks
*/

func BenchmarkResolve_Chain100(b *testing.B) {
	plan, err := chain(b, 100).Plan()
	if err != nil {
		b.Fatal(err)
	}
	bindings := []di.Binding(plan)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = di.Resolve(bindings)
	}
}

func BenchmarkStart_Chain100(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		c := chain(b, 100)
		b.StartTimer()
		if err := c.Start(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGet_Singleton(b *testing.B) {
	c := chain(b, 10)
	if err := c.Start(); err != nil {
		b.Fatal(err)
	}
	key := di.Key("n9")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(key)
	}
}

func BenchmarkGet_SingletonParallel(b *testing.B) {
	c := chain(b, 10)
	if err := c.Start(); err != nil {
		b.Fatal(err)
	}
	key := di.Key("n9")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = di.Get[int](c, key)
		}
	})
}

func BenchmarkGet_Transient(b *testing.B) {
	c := di.New()
	_ = c.Register("dep", di.Value(1))
	_ = c.Register("tmp", func(d di.Deps) (any, error) {
		return &struct{ n int }{n: di.MustGetAs[int](d, di.Key("dep"))}, nil
	}, di.WithScope(di.Transient), di.DependsOn(di.Key("dep")))
	if err := c.Start(); err != nil {
		b.Fatal(err)
	}
	key := di.Key("tmp")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.Get(key)
	}
}
