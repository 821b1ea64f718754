package dag

import (
	"github.com/specialistvlad/stackgraph/internal/changeorder"
	"github.com/specialistvlad/stackgraph/internal/resourceid"
)

// Node is one resource of a change order.
type Node struct {
	// ID is the resource id, identical to the change step key.
	ID string
	// Resource is the parsed form of ID.
	Resource resourceid.ID
	// DisplayName is `kind/name`, used for labels and intra-level ordering.
	DisplayName string
	Action      changeorder.Action
	Status      Status
	// DependsOn lists the ids this resource depends on, in planner order.
	// Entries may be dangling.
	DependsOn []string
}

// Edge points from a dependency to the resource that depends on it.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the immutable resource graph of one change order.
type Graph struct {
	// Nodes stores every resource, keyed by id.
	Nodes map[string]*Node
	// Edges lists every (dependency, dependent) pair, dangling ones included.
	Edges []Edge
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.Nodes)
}

// StackStatus aggregates node statuses: Synced iff every node is Synced.
func (g *Graph) StackStatus() StackStatus {
	for _, n := range g.Nodes {
		if n.Status != StatusSynced {
			return StackSyncing
		}
	}
	return StackSynced
}

// Counts returns the number of nodes per status.
func (g *Graph) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, n := range g.Nodes {
		counts[n.Status]++
	}
	return counts
}
