package config

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/specialistvlad/stackgraph/internal/layout"
	"github.com/specialistvlad/stackgraph/internal/planner"
	"github.com/specialistvlad/stackgraph/internal/poller"
)

// FileName is the workspace configuration file looked up in the workspace root.
const FileName = "stackgraph.hcl"

// Workspace is the unified configuration of a workspace.
type Workspace struct {
	Planner  Planner
	Watch    Watch
	Layout   layout.Params
	Renderer Renderer
	// Source is the file the configuration was read from, empty for defaults.
	Source string
}

// Planner configures the external planner.
type Planner struct {
	Command      string
	IgnoreFields []string
	// MinVersion is a semantic version constraint such as ">= 0.9.0".
	MinVersion string
	Env        map[string]string
}

// Watch configures poll sessions.
type Watch struct {
	Interval  time.Duration
	MaxCycles int
	Immediate bool
}

// Renderer configures where scenes are sent.
type Renderer struct {
	// Listen is the address of the built-in socket.io endpoint. Empty disables it.
	Listen string
	// URL is a remote socket.io renderer to push to. Empty disables it.
	URL         string
	ExitOnClose bool
}

// Default returns the configuration used when nothing else is set.
func Default() *Workspace {
	return &Workspace{
		Planner: Planner{
			Command:      planner.DefaultCommand,
			IgnoreFields: append([]string(nil), planner.DefaultIgnoreFields...),
		},
		Watch: Watch{
			Interval: poller.DefaultInterval,
		},
		Layout: layout.DefaultParams(),
	}
}

// Validate checks the invariants of a fully merged configuration.
func (w *Workspace) Validate() error {
	var errs []error
	if w.Planner.Command == "" {
		errs = append(errs, errors.New("planner.command cannot be empty"))
	}
	if w.Watch.Interval <= 0 {
		errs = append(errs, fmt.Errorf("watch.interval must be positive, got %s", w.Watch.Interval))
	}
	if w.Watch.MaxCycles < 0 {
		errs = append(errs, fmt.Errorf("watch.max_cycles cannot be negative, got %d", w.Watch.MaxCycles))
	}
	if err := w.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// EnvList renders Planner.Env as KEY=VALUE pairs in a stable order.
func (p Planner) EnvList() []string {
	keys := make([]string, 0, len(p.Env))
	for k := range p.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+p.Env[k])
	}
	return out
}
