package hcl

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/stackgraph/internal/config"
	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	environ func() []string
}

// NewLoader creates a new HCL configuration loader. Expressions may refer to
// the process environment as env.NAME.
func NewLoader() *Loader {
	return &Loader{environ: os.Environ}
}

var _ config.Loader = (*Loader)(nil)

// Load overlays root/stackgraph.hcl onto base. A missing file returns a copy
// of base.
func (l *Loader) Load(ctx context.Context, root string, base *config.Workspace) (*config.Workspace, error) {
	return l.LoadFile(ctx, filepath.Join(root, config.FileName), base)
}

// LoadFile overlays the given file onto base. A missing file returns a copy
// of base.
func (l *Loader) LoadFile(ctx context.Context, path string, base *config.Workspace) (*config.Workspace, error) {
	logger := ctxlog.FromContext(ctx).With("path", path)
	if base == nil {
		base = config.Default()
	}
	ws := clone(base)

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No workspace configuration file, using defaults.")
			return ws, nil
		}
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, l.evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	if root.Remain != nil {
		if attrs, _ := root.Remain.JustAttributes(); len(attrs) > 0 {
			names := make([]string, 0, len(attrs))
			for name := range attrs {
				names = append(names, name)
			}
			logger.Warn("Ignoring unknown top-level attributes.", "attributes", strings.Join(names, ","))
		}
	}

	if err := apply(ws, &root); err != nil {
		return nil, fmt.Errorf("in %s: %w", path, err)
	}
	ws.Source = path
	logger.Debug("Workspace configuration loaded.")
	return ws, nil
}

// evalContext exposes the environment as an `env` object.
func (l *Loader) evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range l.environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || !hclIdentifier(k) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

func hclIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}

func apply(ws *config.Workspace, root *fileRoot) error {
	if p := root.Planner; p != nil {
		setString(&ws.Planner.Command, p.Command)
		setString(&ws.Planner.MinVersion, p.MinVersion)
		if p.IgnoreFields != nil {
			ws.Planner.IgnoreFields = append([]string{}, (*p.IgnoreFields)...)
		}
		if p.Env != nil {
			if ws.Planner.Env == nil {
				ws.Planner.Env = make(map[string]string, len(p.Env))
			}
			for k, v := range p.Env {
				ws.Planner.Env[k] = v
			}
		}
	}
	if w := root.Watch; w != nil {
		if w.Interval != nil {
			d, err := time.ParseDuration(*w.Interval)
			if err != nil {
				return fmt.Errorf("invalid watch.interval %q: %w", *w.Interval, err)
			}
			ws.Watch.Interval = d
		}
		if w.MaxCycles != nil {
			ws.Watch.MaxCycles = *w.MaxCycles
		}
		if w.Immediate != nil {
			ws.Watch.Immediate = *w.Immediate
		}
	}
	if lb := root.Layout; lb != nil {
		setFloat(&ws.Layout.SpanX, lb.SpanX)
		setFloat(&ws.Layout.CanvasHeight, lb.CanvasHeight)
		setFloat(&ws.Layout.OffsetX, lb.OffsetX)
		setFloat(&ws.Layout.OffsetY, lb.OffsetY)
	}
	if r := root.Renderer; r != nil {
		setString(&ws.Renderer.Listen, r.Listen)
		setString(&ws.Renderer.URL, r.URL)
		if r.ExitOnClose != nil {
			ws.Renderer.ExitOnClose = *r.ExitOnClose
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func clone(w *config.Workspace) *config.Workspace {
	c := *w
	c.Planner.IgnoreFields = append([]string(nil), w.Planner.IgnoreFields...)
	if w.Planner.Env != nil {
		c.Planner.Env = make(map[string]string, len(w.Planner.Env))
		for k, v := range w.Planner.Env {
			c.Planner.Env[k] = v
		}
	}
	return &c
}
