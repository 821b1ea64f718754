package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/stackgraph/internal/changeorder"
	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/specialistvlad/stackgraph/internal/fsutil"
	"github.com/specialistvlad/stackgraph/internal/poller"
	"github.com/specialistvlad/stackgraph/internal/renderer"
	"github.com/specialistvlad/stackgraph/internal/stack"
	"gopkg.in/yaml.v3"
)

// Preview runs a single cycle for the stack and prints the resulting scene.
func (a *App) Preview(ctx context.Context) (*renderer.UpdateMessage, error) {
	ctx = a.withLogger(ctx)
	t, err := a.prepare(ctx)
	if err != nil {
		return nil, err
	}

	ctx = t.scoped(ctx)
	p := poller.New(t.planner, renderer.Multi{}, a.pollerOptions(t.workspace))
	msg, err := p.Snapshot(ctx, t.stack)
	if err != nil {
		return nil, err
	}
	if err := renderer.NewWriter(a.outW, a.config.Output).Update(ctx, *msg); err != nil {
		return msg, fmt.Errorf("writing scene: %w", err)
	}
	return msg, nil
}

// Diff previews the stack and prints the live state and the desired state of
// every resource as one YAML document.
func (a *App) Diff(ctx context.Context) (*changeorder.LiveDiff, error) {
	ctx = a.withLogger(ctx)
	t, err := a.prepare(ctx)
	if err != nil {
		return nil, err
	}

	ctx = t.scoped(ctx)
	order, err := t.planner.Preview(ctx, t.stack)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	diff := changeorder.NewLiveDiff(order)

	enc := yaml.NewEncoder(a.outW)
	enc.SetIndent(2)
	if err := enc.Encode(diff); err != nil {
		return diff, fmt.Errorf("writing diff: %w", err)
	}
	if err := enc.Close(); err != nil {
		return diff, fmt.Errorf("writing diff: %w", err)
	}
	return diff, nil
}

// Stacks lists every stack below root, one full name per line.
func (a *App) Stacks(ctx context.Context, root string) ([]stack.Stack, error) {
	ctx = a.withLogger(ctx)
	if root == "" {
		root = "."
	}
	stacks, err := stack.Discover(root)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Stacks discovered.", "root", root, "count", len(stacks))
	for _, st := range stacks {
		fmt.Fprintln(a.outW, st.FullName)
	}
	return stacks, nil
}

// Doctor checks that the planner is installed and satisfies the minimum
// version of the workspace.
func (a *App) Doctor(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	start, err := filepath.Abs(a.config.StackPath)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", a.config.StackPath, err)
	}
	root, ok, err := fsutil.FindUpward(start, stack.WorkspaceMarker)
	if err != nil {
		return err
	}
	if !ok {
		logger.Debug("No workspace root found.", "marker", stack.WorkspaceMarker)
		root = start
	}

	ws, err := a.loadWorkspace(ctx, root)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "workspace: %s\n", root)
	if ws.Source != "" {
		fmt.Fprintf(a.outW, "config: %s\n", ws.Source)
	}

	v, err := a.newPlanner(ws.Planner, a.out).CheckVersion(ctx, ws.Planner.MinVersion)
	if v != nil {
		fmt.Fprintf(a.outW, "planner: %s %s\n", ws.Planner.Command, v)
	}
	if err != nil {
		return fmt.Errorf("planner check failed: %w", err)
	}
	logger.Info("✅ Planner is ready.", "command", ws.Planner.Command, "version", v.String())
	return nil
}
