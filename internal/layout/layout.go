// Package layout places the nodes of a resource graph on a 2-D canvas.
//
// Levels run along the x axis from left to right. Nodes of one level are
// ranked by display name and spread from the bottom of the canvas upwards.
// Compute is a pure function of its inputs.
package layout

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/stackgraph/internal/dag"
	"github.com/specialistvlad/stackgraph/internal/resourceid"
)

// Params are the canvas constants of the layout.
type Params struct {
	SpanX        float64
	CanvasHeight float64
	OffsetX      float64
	OffsetY      float64
}

// DefaultParams returns the stock canvas: 600 wide, 450 high, with a 20 unit
// margin on both axes.
func DefaultParams() Params {
	return Params{
		SpanX:        600,
		CanvasHeight: 450,
		OffsetX:      20,
		OffsetY:      20,
	}
}

// Validate rejects spans that would collapse or mirror the canvas.
func (p Params) Validate() error {
	if p.SpanX <= 0 {
		return fmt.Errorf("layout span_x must be positive, got %v", p.SpanX)
	}
	if p.CanvasHeight <= 0 {
		return fmt.Errorf("layout canvas_height must be positive, got %v", p.CanvasHeight)
	}
	return nil
}

// Point is a canvas position.
type Point struct {
	X float64
	Y float64
}

// Color is the fill a renderer should use for a node.
type Color string

const (
	ColorGreen Color = "green"
	ColorGray  Color = "gray"
)

// ColorFor maps a node status onto its fill.
func ColorFor(s dag.Status) Color {
	if s == dag.StatusSynced {
		return ColorGreen
	}
	return ColorGray
}

// PlacedNode is a graph node with its level, rank and position.
type PlacedNode struct {
	ID          string
	DisplayName string
	Resource    resourceid.ID
	Status      dag.Status
	DependsOn   []string
	Level       int
	Rank        int
	Position    Point
	Color       Color
}

// PlacedEdge is an edge whose endpoints both have a position.
type PlacedEdge struct {
	From   string
	To     string
	Coords [2]Point
}

// Scene is a fully laid out graph.
type Scene struct {
	MaxLevel int
	// Nodes are ordered by level, then rank.
	Nodes []PlacedNode
	// Edges keep the order of the graph's edge list.
	Edges []PlacedEdge
}

// Compute lays out g using the given levels. Nodes missing from levels are
// placed at level 0. Edges with an endpoint outside the graph are dropped.
func Compute(g *dag.Graph, levels dag.Levels, p Params) Scene {
	scene := Scene{Nodes: []PlacedNode{}, Edges: []PlacedEdge{}}
	if g == nil || len(g.Nodes) == 0 {
		return scene
	}

	byLevel := make(map[int][]*dag.Node)
	for id, n := range g.Nodes {
		lvl := levels[id]
		if lvl > scene.MaxLevel {
			scene.MaxLevel = lvl
		}
		byLevel[lvl] = append(byLevel[lvl], n)
	}

	positions := make(map[string]Point, len(g.Nodes))
	for lvl := 0; lvl <= scene.MaxLevel; lvl++ {
		group := byLevel[lvl]
		sortByDisplayName(group)

		x := p.SpanX/float64(scene.MaxLevel+1)*float64(lvl) + p.OffsetX
		step := p.CanvasHeight / float64(len(group)+1)
		for rank, n := range group {
			pos := Point{
				X: x,
				Y: p.CanvasHeight - step*float64(rank) + p.OffsetY,
			}
			positions[n.ID] = pos
			scene.Nodes = append(scene.Nodes, PlacedNode{
				ID:          n.ID,
				DisplayName: n.DisplayName,
				Resource:    n.Resource,
				Status:      n.Status,
				DependsOn:   n.DependsOn,
				Level:       lvl,
				Rank:        rank,
				Position:    pos,
				Color:       ColorFor(n.Status),
			})
		}
	}

	for _, e := range g.Edges {
		from, ok := positions[e.From]
		if !ok {
			continue
		}
		to, ok := positions[e.To]
		if !ok {
			continue
		}
		scene.Edges = append(scene.Edges, PlacedEdge{
			From:   e.From,
			To:     e.To,
			Coords: [2]Point{from, to},
		})
	}
	return scene
}

// sortByDisplayName orders nodes by display name in code-point order. Equal
// names fall back to the id so every node keeps its own rank.
func sortByDisplayName(nodes []*dag.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].DisplayName != nodes[j].DisplayName {
			return nodes[i].DisplayName < nodes[j].DisplayName
		}
		return nodes[i].ID < nodes[j].ID
	})
}
