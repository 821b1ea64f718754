package dag

import (
	"context"

	"github.com/specialistvlad/stackgraph/internal/changeorder"
	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/specialistvlad/stackgraph/internal/resourceid"
)

type buildOptions struct {
	strictActions bool
}

// BuildOption customises Build.
type BuildOption func(*buildOptions)

// WithStrictActions reads dependencies only for Unchanged and Update steps,
// so created resources always start at level 0.
func WithStrictActions() BuildOption {
	return func(o *buildOptions) { o.strictActions = true }
}

// Build constructs the resource graph of a change order. Node existence is
// derived from order.ChangeSteps alone and the result does not depend on
// order.StepKeys. A nil or empty order yields an empty graph.
func Build(ctx context.Context, order *changeorder.ChangeOrder, opts ...BuildOption) *Graph {
	logger := ctxlog.FromContext(ctx)
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	graph := &Graph{Nodes: make(map[string]*Node)}
	if order == nil {
		logger.Debug("Build: No change order, returning empty graph.")
		return graph
	}

	// First pass: create all nodes.
	ids := order.SortedIDs()
	for _, id := range ids {
		step := order.ChangeSteps[id]
		status, err := StatusForAction(step.Action)
		if err != nil {
			logger.Warn("Skipping change step without a valid action.", "id", id, "error", err)
			continue
		}

		resource, err := resourceid.Parse(id)
		if err != nil {
			logger.Debug("Resource id has no recognised shape.", "id", id, "error", err)
		}

		graph.Nodes[id] = &Node{
			ID:          id,
			Resource:    resource,
			DisplayName: resource.DisplayName(),
			Action:      step.Action,
			Status:      status,
			DependsOn:   dependencies(step, o.strictActions),
		}
	}
	logger.Debug("Build: Node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: record edges, dangling ones included.
	for _, id := range ids {
		node, ok := graph.Nodes[id]
		if !ok {
			continue
		}
		for _, dep := range node.DependsOn {
			graph.Edges = append(graph.Edges, Edge{From: dep, To: id})
		}
	}
	logger.Debug("Build: Edge collection complete.", "edge_count", len(graph.Edges))

	return graph
}

// dependencies returns the de-duplicated dependency list of a step, read from
// its post-change snapshot. Deleted resources have no post-change state.
func dependencies(step *changeorder.ChangeStep, strict bool) []string {
	switch step.Action {
	case changeorder.ActionUnchanged, changeorder.ActionUpdate:
	case changeorder.ActionCreate:
		if strict {
			return nil
		}
	default:
		return nil
	}

	raw := step.To.DependencyIDs()
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	deps := make([]string, 0, len(raw))
	for _, dep := range raw {
		if dep == "" {
			continue
		}
		if _, dup := seen[dep]; dup {
			continue
		}
		seen[dep] = struct{}{}
		deps = append(deps, dep)
	}
	return deps
}
