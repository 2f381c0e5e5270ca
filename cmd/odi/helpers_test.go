package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sghaida/odi-container/config"
)

// shopManifest is a small, valid manifest covering qualifiers, scopes and
// optional dependencies.
const shopManifest = `bindings:
  - key: orderService
    provider: NewOrderService
    dependsOn: [memberRepository, "discountPolicy@rate", "?tracer"]
  - key: memberRepository
    provider: NewMemoryMemberRepository
  - key: discountPolicy
    qualifier: rate
    provider: NewRateDiscountPolicy
  - key: request
    provider: NewRequest
    scope: transient
    dependsOn: [orderService]
`

type pkgHarness struct {
	t   *testing.T
	dir string
}

func newPkg(t *testing.T) *pkgHarness {
	t.Helper()
	return &pkgHarness{t: t, dir: t.TempDir()}
}

func (p *pkgHarness) write(rel, content string) string {
	p.t.Helper()
	path := filepath.Join(p.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		p.t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func (p *pkgHarness) out(rel string) string {
	return filepath.Join(p.dir, rel)
}

func (p *pkgHarness) read(rel string) string {
	p.t.Helper()
	b, err := os.ReadFile(filepath.Join(p.dir, rel))
	if err != nil {
		p.t.Fatalf("read %s: %v", rel, err)
	}
	return string(b)
}

// newTestApp returns an app writing to a buffer with a no-op logger.
func newTestApp(manifestPath string) (*app, *bytes.Buffer) {
	var out bytes.Buffer
	cfg := &config.Config{
		Environment:    config.Testing,
		Log:            config.LogConfig{Level: "error", Format: "console"},
		Manifest:       manifestPath,
		DiscountPolicy: "fix",
	}
	return &app{cfg: cfg, logger: zap.NewNop(), stdout: &out}, &out
}

func assertContainsInOrder(t *testing.T, s string, parts ...string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		i := strings.Index(s[pos:], p)
		if i < 0 {
			t.Fatalf("expected to find %q after pos=%d in:\n%s", p, pos, s)
		}
		pos += i + len(p)
	}
}
