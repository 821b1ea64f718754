package renderer

import (
	"github.com/specialistvlad/stackgraph/internal/dag"
	"github.com/specialistvlad/stackgraph/internal/layout"
)

// Event names on the wire.
const (
	EventInit   = "init"
	EventUpdate = "update"
	// EventRefresh is sent by a view to ask for the latest messages again.
	EventRefresh = "refresh"
)

// InitMessage establishes the title and initial status of a view.
type InitMessage struct {
	Session string          `json:"session,omitempty"`
	Stack   string          `json:"stack"`
	Status  dag.StackStatus `json:"status"`
}

// NodeView is one positioned resource.
type NodeView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Label      string `json:"label"`
	APIVersion string `json:"apiVersion"`
	// Group is the API group of APIVersion, empty for the core group.
	Group     string       `json:"group,omitempty"`
	Kind      string       `json:"kind"`
	Namespace string       `json:"namespace"`
	Status    dag.Status   `json:"status"`
	DependsOn []string     `json:"dependsOn"`
	Level     int          `json:"level"`
	Rank      int          `json:"rank"`
	X         float64      `json:"x"`
	Y         float64      `json:"y"`
	Color     layout.Color `json:"color"`
}

// EdgeView is an edge with the coordinates of both endpoints.
type EdgeView struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Coords [2][2]float64 `json:"coords"`
}

// UpdateMessage replaces everything a view shows.
type UpdateMessage struct {
	Project  string          `json:"project"`
	Stack    string          `json:"stack"`
	Status   dag.StackStatus `json:"status"`
	MaxLevel int             `json:"maxLevel"`
	Nodes    []NodeView      `json:"nodes"`
	Edges    []EdgeView      `json:"edges"`
}

// NewUpdateMessage converts a laid-out scene into its wire form.
func NewUpdateMessage(project, stack string, status dag.StackStatus, scene layout.Scene) UpdateMessage {
	msg := UpdateMessage{
		Project:  project,
		Stack:    stack,
		Status:   status,
		MaxLevel: scene.MaxLevel,
		Nodes:    make([]NodeView, 0, len(scene.Nodes)),
		Edges:    make([]EdgeView, 0, len(scene.Edges)),
	}
	for _, n := range scene.Nodes {
		deps := n.DependsOn
		if deps == nil {
			deps = []string{}
		}
		var group string
		if gvk, err := n.Resource.GroupVersionKind(); err == nil {
			group = gvk.Group
		}
		msg.Nodes = append(msg.Nodes, NodeView{
			ID:         n.ID,
			Name:       n.Resource.SimpleName(),
			Label:      n.DisplayName,
			APIVersion: n.Resource.APIVersion,
			Group:      group,
			Kind:       n.Resource.Kind,
			Namespace:  n.Resource.Namespace,
			Status:     n.Status,
			DependsOn:  deps,
			Level:      n.Level,
			Rank:       n.Rank,
			X:          n.Position.X,
			Y:          n.Position.Y,
			Color:      n.Color,
		})
	}
	for _, e := range scene.Edges {
		msg.Edges = append(msg.Edges, EdgeView{
			From: e.From,
			To:   e.To,
			Coords: [2][2]float64{
				{e.Coords[0].X, e.Coords[0].Y},
				{e.Coords[1].X, e.Coords[1].Y},
			},
		})
	}
	return msg
}
