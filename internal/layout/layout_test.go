package layout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/specialistvlad/stackgraph/internal/changeorder"
	"github.com/specialistvlad/stackgraph/internal/dag"
	"github.com/specialistvlad/stackgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computeScene(t *testing.T, order *changeorder.ChangeOrder) Scene {
	t.Helper()
	ctx, _ := testutil.LoggedContext(context.Background())
	g := dag.Build(ctx, order)
	levels, err := dag.AssignLevels(g)
	require.NoError(t, err)
	return Compute(g, levels, DefaultParams())
}

var ignoreResource = cmpopts.IgnoreFields(PlacedNode{}, "Resource", "DependsOn")

func TestCompute_Empty(t *testing.T) {
	scene := Compute(&dag.Graph{Nodes: map[string]*dag.Node{}}, dag.Levels{}, DefaultParams())
	assert.Equal(t, 0, scene.MaxLevel)
	assert.Empty(t, scene.Nodes)
	assert.Empty(t, scene.Edges)

	scene = Compute(nil, nil, DefaultParams())
	assert.Equal(t, 0, scene.MaxLevel)
}

func TestCompute_Formula(t *testing.T) {
	scene := computeScene(t, testutil.Order(
		testutil.Step("a", changeorder.ActionUnchanged),
		testutil.Step("b", changeorder.ActionUpdate, "a"),
		testutil.Step("c", changeorder.ActionUnchanged, "a"),
		testutil.Step("d", changeorder.ActionUnchanged, "b"),
	))

	expected := Scene{
		MaxLevel: 2,
		Nodes: []PlacedNode{
			{ID: "a", DisplayName: "a", Status: dag.StatusSynced, Level: 0, Rank: 0, Position: Point{X: 20, Y: 470}, Color: ColorGreen},
			{ID: "b", DisplayName: "b", Status: dag.StatusToUpdate, Level: 1, Rank: 0, Position: Point{X: 220, Y: 470}, Color: ColorGray},
			{ID: "c", DisplayName: "c", Status: dag.StatusSynced, Level: 1, Rank: 1, Position: Point{X: 220, Y: 320}, Color: ColorGreen},
			{ID: "d", DisplayName: "d", Status: dag.StatusSynced, Level: 2, Rank: 0, Position: Point{X: 420, Y: 470}, Color: ColorGreen},
		},
		Edges: []PlacedEdge{
			{From: "a", To: "b", Coords: [2]Point{{X: 20, Y: 470}, {X: 220, Y: 470}}},
			{From: "a", To: "c", Coords: [2]Point{{X: 20, Y: 470}, {X: 220, Y: 320}}},
			{From: "b", To: "d", Coords: [2]Point{{X: 220, Y: 470}, {X: 420, Y: 470}}},
		},
	}
	if diff := cmp.Diff(expected, scene, ignoreResource); diff != "" {
		t.Errorf("scene mismatch (-want +got):\n%s", diff)
	}
}

// Rank follows display name, not id.
func TestCompute_RankByDisplayName(t *testing.T) {
	idA := "apps/v1:Deployment:zzz:a"
	idB := "apps/v1:Deployment:aaa:b"
	scene := computeScene(t, testutil.Order(
		testutil.Step(idB, changeorder.ActionUnchanged),
		testutil.Step(idA, changeorder.ActionUnchanged),
	))

	require.Len(t, scene.Nodes, 2)
	a, b := scene.Nodes[0], scene.Nodes[1]
	assert.Equal(t, "Deployment/a", a.DisplayName)
	assert.Equal(t, "Deployment/b", b.DisplayName)
	assert.Equal(t, 0, a.Rank)
	assert.Equal(t, 1, b.Rank)
	assert.Greater(t, a.Position.Y, b.Position.Y)
	assert.Equal(t, a.Position.X, b.Position.X)
}

func TestCompute_EqualDisplayNamesKeepDistinctRanks(t *testing.T) {
	scene := computeScene(t, testutil.Order(
		testutil.Step("y:Deployment:ns:app", changeorder.ActionUnchanged),
		testutil.Step("x:Deployment:ns:app", changeorder.ActionUnchanged),
	))

	require.Len(t, scene.Nodes, 2)
	assert.Equal(t, "x:Deployment:ns:app", scene.Nodes[0].ID)
	assert.Equal(t, "y:Deployment:ns:app", scene.Nodes[1].ID)
	assert.NotEqual(t, scene.Nodes[0].Position, scene.Nodes[1].Position)
}

func TestCompute_DropsDanglingEdges(t *testing.T) {
	scene := computeScene(t, testutil.Order(
		testutil.Step("a", changeorder.ActionUnchanged, "external"),
		testutil.Step("b", changeorder.ActionUnchanged, "a", "external"),
	))

	require.Len(t, scene.Edges, 1)
	assert.Equal(t, "a", scene.Edges[0].From)
	assert.Equal(t, "b", scene.Edges[0].To)
	for _, n := range scene.Nodes {
		assert.NotEqual(t, "external", n.ID)
	}
}

func TestCompute_Deterministic(t *testing.T) {
	order := testutil.Order(
		testutil.Step("v1:Namespace:shop", changeorder.ActionUnchanged),
		testutil.Step("v1:ConfigMap:shop:cfg", changeorder.ActionUpdate, "v1:Namespace:shop"),
		testutil.Step("apps/v1:Deployment:shop:api", changeorder.ActionCreate, "v1:ConfigMap:shop:cfg", "v1:Namespace:shop"),
		testutil.Step("v1:Service:shop:api", changeorder.ActionUnchanged, "apps/v1:Deployment:shop:api"),
		testutil.Step("v1:Secret:shop:tls", changeorder.ActionDelete, "v1:Namespace:shop"),
	)

	first, err := json.Marshal(computeScene(t, order))
	require.NoError(t, err)
	second, err := json.Marshal(computeScene(t, order))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	for _, keys := range [][]string{
		nil,
		{"v1:Service:shop:api", "v1:Namespace:shop"},
		{"v1:Secret:shop:tls", "apps/v1:Deployment:shop:api", "v1:ConfigMap:shop:cfg", "v1:Service:shop:api", "v1:Namespace:shop"},
	} {
		permuted, err := json.Marshal(computeScene(t, testutil.WithStepKeys(order, keys)))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(permuted))
	}
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.SpanX = 0
	assert.ErrorContains(t, p.Validate(), "span_x")

	p = DefaultParams()
	p.CanvasHeight = -1
	assert.ErrorContains(t, p.Validate(), "canvas_height")

	p = DefaultParams()
	p.OffsetX, p.OffsetY = 0, 0
	assert.NoError(t, p.Validate())
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, ColorGreen, ColorFor(dag.StatusSynced))
	for _, s := range []dag.Status{dag.StatusToCreate, dag.StatusToUpdate, dag.StatusToDelete} {
		assert.Equal(t, ColorGray, ColorFor(s))
	}
}
