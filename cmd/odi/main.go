// odi/cmd/odi/main.go
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/sghaida/odi-container/config"
	"github.com/sghaida/odi-container/di"
	"github.com/sghaida/odi-container/logging"
	"github.com/sghaida/odi-container/manifest"
)

// defaultDIImport is the import path generated code uses for the runtime.
const defaultDIImport = "github.com/sghaida/odi-container/di"

const usage = `usage: odi <command> [flags]

commands:
  plan   print the construction order of a manifest
  check  validate a manifest and its dependency graph
  gen    generate Go registration code from a manifest
  fmt    print a manifest in canonical form
`

type app struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "odi:", err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "odi:", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	a := &app{cfg: cfg, logger: logger, stdout: os.Stdout}
	if err := a.run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "odi:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func (a *app) run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stdout, usage)
		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "plan":
		return a.plan(rest)
	case "check":
		return a.check(rest)
	case "gen":
		return a.gen(rest)
	case "fmt":
		return a.fmtManifest(rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func (a *app) flags(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("manifest", a.cfg.Manifest, "path to the manifest (default $"+config.EnvManifest+")")
	return fs, path
}

func (a *app) load(path string) (*manifest.Manifest, []byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, errors.New("missing -manifest")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "read manifest")
	}
	m, err := manifest.Load(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s", path)
	}
	a.logger.Debug("manifest loaded", zap.String("path", path), zap.Int("bindings", len(m.Bindings)))
	return m, raw, nil
}

// -------------------------
// plan / check / fmt
// -------------------------

func (a *app) plan(args []string) error {
	fs, path := a.flags("plan")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, _, err := a.load(*path)
	if err != nil {
		return err
	}
	plan, err := m.Plan()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for i, b := range plan {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, b.ID, b.Scope, depList(b.Deps))
	}
	return tw.Flush()
}

func depList(deps []di.Dep) string {
	if len(deps) == 0 {
		return "-"
	}
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = d.ID.String()
		if d.Optional {
			parts[i] = manifest.OptionalPrefix + parts[i]
		}
	}
	return strings.Join(parts, ", ")
}

func (a *app) check(args []string) error {
	fs, path := a.flags("check")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, _, err := a.load(*path)
	if err != nil {
		return err
	}
	plan, err := m.Plan()
	if err != nil {
		return err
	}
	a.logger.Info("manifest ok", zap.String("path", *path), zap.Stringer("plan", plan))
	fmt.Fprintf(a.stdout, "ok: %d bindings\n", len(plan))
	return nil
}

func (a *app) fmtManifest(args []string) error {
	fs, path := a.flags("fmt")
	write := fs.Bool("w", false, "write result to the manifest instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	m, _, err := a.load(*path)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return err
	}
	out, err := m.Marshal()
	if err != nil {
		return err
	}
	if *write {
		return errors.Wrap(os.WriteFile(*path, out, 0o644), "write manifest")
	}
	_, err = a.stdout.Write(out)
	return err
}

// -------------------------
// gen
// -------------------------

type genBinding struct {
	Key       string
	Qualifier string
	Provider  string
	Transient bool
	Required  []di.ID
	Optional  []di.ID
}

func (a *app) gen(args []string) error {
	fs, path := a.flags("gen")
	outPath := fs.String("out", "", "output .gen.go file path")
	pkg := fs.String("package", "", "package name of the generated file (default: output directory name)")
	fn := fs.String("func", "Register", "name of the generated registration function")
	diImport := fs.String("di", defaultDIImport, "import path of the di runtime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*outPath) == "" {
		return errors.New("missing -out")
	}
	if *pkg == "" {
		*pkg = filepath.Base(filepath.Dir(absOrSelf(*outPath)))
	}
	if !token.IsIdentifier(*pkg) {
		return errors.Errorf("invalid package name %q", *pkg)
	}
	if !token.IsIdentifier(*fn) {
		return errors.Errorf("invalid function name %q", *fn)
	}

	m, raw, err := a.load(*path)
	if err != nil {
		return err
	}
	if _, err := m.Plan(); err != nil {
		return err
	}

	bindings := make([]genBinding, 0, len(m.Bindings))
	for _, e := range m.Bindings {
		gb, err := toGenBinding(e)
		if err != nil {
			return err
		}
		bindings = append(bindings, gb)
	}

	src, err := execTemplate(registerTpl, map[string]any{
		"Manifest": filepath.ToSlash(*path),
		"Hash":     sha256Hex(raw),
		"Package":  *pkg,
		"Func":     *fn,
		"DIImport": *diImport,
		"Bindings": bindings,
	})
	if err != nil {
		return err
	}
	if err := writeFormatted(*outPath, src); err != nil {
		return err
	}
	a.logger.Info("generated", zap.String("out", *outPath), zap.Int("bindings", len(bindings)))
	return nil
}

func toGenBinding(e manifest.Entry) (genBinding, error) {
	id := e.ID()
	provider := strings.TrimSpace(e.Provider)
	if !isQualifiedIdent(provider) {
		return genBinding{}, errors.Errorf("binding %q: provider %q is not a Go identifier", id.String(), provider)
	}
	scope, err := di.ParseScope(e.Scope)
	if err != nil {
		return genBinding{}, err
	}

	gb := genBinding{
		Key:       string(id.Key),
		Qualifier: id.Qualifier,
		Provider:  provider,
		Transient: scope == di.Transient,
	}
	for _, d := range e.Deps() {
		if d.Optional {
			gb.Optional = append(gb.Optional, d.ID)
		} else {
			gb.Required = append(gb.Required, d.ID)
		}
	}
	return gb, nil
}

// isQualifiedIdent accepts "Name" and "pkg.Name".
func isQualifiedIdent(s string) bool {
	pkg, name, ok := strings.Cut(s, ".")
	if !ok {
		return token.IsIdentifier(s)
	}
	return token.IsIdentifier(pkg) && token.IsIdentifier(name)
}

// ref renders the Go expression naming id.
func ref(id di.ID) string {
	if id.Qualifier == "" {
		return fmt.Sprintf("di.Key(%q)", string(id.Key))
	}
	return fmt.Sprintf("di.Key(%q).Qualified(%q)", string(id.Key), id.Qualifier)
}

func refs(ids []di.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = ref(id)
	}
	return strings.Join(parts, ", ")
}

// -------------------------
// Misc helpers
// -------------------------

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func execTemplate(tpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "execute template")
	}
	return buf.Bytes(), nil
}

// writeFormatted gofmts src and writes it to out. Unformattable source is
// still written so it can be inspected.
func writeFormatted(out string, src []byte) error {
	fmtSrc, err := format.Source(src)
	if err != nil {
		_ = os.WriteFile(out, src, 0o644)
		return errors.Wrap(err, "gofmt/format failed")
	}
	return errors.Wrap(os.WriteFile(out, fmtSrc, 0o644), "write output")
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

var registerTpl = template.Must(
	template.New("register").
		Funcs(template.FuncMap{"refs": refs}).
		Parse(`// Code generated by odi gen; DO NOT EDIT.
// Manifest: {{.Manifest}}
// Manifest-SHA256: {{.Hash}}

package {{.Package}}

import di "{{.DIImport}}"

// {{.Func}} binds every capability declared in {{.Manifest}} to c.
func {{.Func}}(c *di.Container) error {
	bindings := []di.Binding{
{{- range .Bindings }}
		di.NewBinding({{ printf "%q" .Key }}, {{ .Provider }}
			{{- if .Qualifier }}, di.Qualified({{ printf "%q" .Qualifier }}){{ end }}
			{{- if .Transient }}, di.WithScope(di.Transient){{ end }}
			{{- if .Required }}, di.DependsOn({{ refs .Required }}){{ end }}
			{{- if .Optional }}, di.OptionalDependsOn({{ refs .Optional }}){{ end }}),
{{- end }}
	}
	for _, b := range bindings {
		if err := c.Bind(b); err != nil {
			return err
		}
	}
	return nil
}
`),
)
