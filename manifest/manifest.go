// Package manifest declares container bindings in YAML.
//
// A manifest lists every capability the application needs, the provider that
// builds it and the capabilities it depends on. It replaces classpath
// scanning: nothing is discovered, everything is written down.
//
//	bindings:
//	  - key: orderService
//	    provider: NewOrderService
//	    dependsOn: [memberRepository, "discountPolicy@rate", "?tracer"]
//
// A "?" prefix marks an optional dependency and "@" separates a qualifier.
// Provider names are looked up in a Catalog when the manifest is applied to a
// container; the odi gen command emits Go code calling them directly instead.
package manifest

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/odi-container/di"
)

// OptionalPrefix marks an optional entry in DependsOn.
const OptionalPrefix = "?"

var (
	// ErrInvalidManifest is returned by Validate for structurally invalid
	// entries.
	ErrInvalidManifest = errors.New("manifest: invalid")

	// ErrUnknownProvider is returned when an entry names a provider missing
	// from the Catalog.
	ErrUnknownProvider = errors.New("manifest: unknown provider")
)

// Manifest is a decoded binding declaration.
type Manifest struct {
	Bindings []Entry `yaml:"bindings"`
}

// Entry declares one binding.
type Entry struct {
	Key       string   `yaml:"key"`
	Provider  string   `yaml:"provider"`
	Scope     string   `yaml:"scope,omitempty"`
	Qualifier string   `yaml:"qualifier,omitempty"`
	DependsOn []string `yaml:"dependsOn,omitempty"`
}

// ID returns the binding identity declared by e.
func (e Entry) ID() di.ID {
	return di.ID{Key: di.Key(strings.TrimSpace(e.Key)), Qualifier: strings.TrimSpace(e.Qualifier)}
}

// Deps parses DependsOn in declared order.
func (e Entry) Deps() []di.Dep {
	if len(e.DependsOn) == 0 {
		return nil
	}
	deps := make([]di.Dep, 0, len(e.DependsOn))
	for _, raw := range e.DependsOn {
		deps = append(deps, parseDep(raw))
	}
	return deps
}

func parseDep(raw string) di.Dep {
	s := strings.TrimSpace(raw)
	optional := strings.HasPrefix(s, OptionalPrefix)
	s = strings.TrimPrefix(s, OptionalPrefix)
	return di.Dep{ID: di.ParseID(s), Optional: optional}
}

// Catalog maps provider names used in a manifest to providers.
type Catalog map[string]di.Provider

// Load decodes a manifest from r. Unknown fields are rejected. An empty
// document yields an empty manifest.
func Load(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, errors.Wrap(err, "manifest: decode")
	}
	return &m, nil
}

// LoadFile reads and decodes the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: read %s", path)
	}
	m, err := Load(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return m, nil
}

// Validate checks every entry in isolation and rejects duplicate IDs. Graph
// problems such as cycles are reported by Plan.
func (m *Manifest) Validate() error {
	seen := make(map[di.ID]int, len(m.Bindings))
	for i, e := range m.Bindings {
		id := e.ID()
		if id.Key == "" {
			return errors.Wrapf(ErrInvalidManifest, "bindings[%d]: empty key", i)
		}
		if strings.ContainsAny(string(id.Key), "@?") || strings.Contains(id.Qualifier, "@") {
			return errors.Wrapf(ErrInvalidManifest, "bindings[%d]: %q: reserved character in key or qualifier", i, id.String())
		}
		if strings.TrimSpace(e.Provider) == "" {
			return errors.Wrapf(ErrInvalidManifest, "bindings[%d]: %q: empty provider", i, id.String())
		}
		if _, err := di.ParseScope(e.Scope); err != nil {
			return errors.Wrapf(err, "bindings[%d]: %q", i, id.String())
		}
		for _, d := range e.Deps() {
			if d.ID.Key == "" {
				return errors.Wrapf(ErrInvalidManifest, "bindings[%d]: %q: empty dependency", i, id.String())
			}
		}
		if first, dup := seen[id]; dup {
			return errors.Wrapf(di.DuplicateBindingError{ID: id}, "bindings[%d] repeats bindings[%d]", i, first)
		}
		seen[id] = i
	}
	return nil
}

// Realize validates the manifest and realizes it with providers from cat.
func (m *Manifest) Realize(cat Catalog) ([]di.Binding, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	out := make([]di.Binding, 0, len(m.Bindings))
	for _, e := range m.Bindings {
		name := strings.TrimSpace(e.Provider)
		p, ok := cat[name]
		if !ok || p == nil {
			return nil, errors.Wrapf(ErrUnknownProvider, "%q (binding %q)", name, e.ID().String())
		}
		out = append(out, m.binding(e, p))
	}
	return out, nil
}

// Apply registers every binding of the manifest in c, in manifest order.
func (m *Manifest) Apply(c *di.Container, cat Catalog) error {
	bindings, err := m.Realize(cat)
	if err != nil {
		return err
	}
	for _, b := range bindings {
		if err := c.Bind(b); err != nil {
			return errors.Wrapf(err, "manifest: bind %q", b.ID.String())
		}
	}
	return nil
}

// Plan validates the manifest and resolves its graph without any provider.
// The bindings in the returned plan carry no Provider.
func (m *Manifest) Plan() (di.Plan, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	bindings := make([]di.Binding, 0, len(m.Bindings))
	for _, e := range m.Bindings {
		bindings = append(bindings, m.binding(e, nil))
	}
	return di.Resolve(bindings)
}

func (m *Manifest) binding(e Entry, p di.Provider) di.Binding {
	// Scope was checked by Validate.
	scope, _ := di.ParseScope(e.Scope)
	return di.Binding{
		ID:       e.ID(),
		Provider: p,
		Scope:    scope,
		Deps:     e.Deps(),
	}
}

// Marshal encodes m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(err, "manifest: encode")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "manifest: encode")
	}
	return buf.Bytes(), nil
}
