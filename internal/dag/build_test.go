package dag

import (
	"context"
	"testing"

	"github.com/specialistvlad/stackgraph/internal/changeorder"
	"github.com/specialistvlad/stackgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	nsID     = "v1:Namespace:guestbook"
	deployID = "apps/v1:Deployment:guestbook:frontend"
	svcID    = "v1:Service:guestbook:frontend"
)

func TestBuild_EmptyInputs(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())

	g := Build(ctx, nil)
	require.NotNil(t, g)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Edges)
	assert.Equal(t, StackSynced, g.StackStatus())

	g = Build(ctx, &changeorder.ChangeOrder{StepKeys: []string{"ghost"}})
	assert.Equal(t, 0, g.Len(), "key list alone must not create nodes")
}

func TestBuild_NodesAndEdges(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	order := testutil.Order(
		testutil.Step(nsID, changeorder.ActionUnchanged),
		testutil.Step(deployID, changeorder.ActionUpdate, nsID),
		testutil.Step(svcID, changeorder.ActionUnchanged, nsID, deployID, nsID),
	)

	g := Build(ctx, order)

	require.Equal(t, 3, g.Len())
	deploy, ok := g.Node(deployID)
	require.True(t, ok)
	assert.Equal(t, "Deployment/frontend", deploy.DisplayName)
	assert.Equal(t, StatusToUpdate, deploy.Status)
	assert.Equal(t, []string{nsID}, deploy.DependsOn)

	svc, _ := g.Node(svcID)
	assert.Equal(t, []string{nsID, deployID}, svc.DependsOn, "duplicates are collapsed")

	assert.Equal(t, []Edge{
		{From: nsID, To: deployID},
		{From: nsID, To: svcID},
		{From: deployID, To: svcID},
	}, g.Edges)
	assert.Equal(t, StackSyncing, g.StackStatus())
}

func TestBuild_DeleteHasNoDependencies(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	order := testutil.Order(
		testutil.Step(nsID, changeorder.ActionUnchanged),
		testutil.Step(deployID, changeorder.ActionDelete, nsID),
	)
	// A delete still carries a "from" snapshot with dependencies.
	require.NotEmpty(t, order.ChangeSteps[deployID].From.DependsOn)

	g := Build(ctx, order)

	deploy, _ := g.Node(deployID)
	assert.Empty(t, deploy.DependsOn)
	assert.Equal(t, StatusToDelete, deploy.Status)
	assert.Empty(t, g.Edges)
}

func TestBuild_StrictActions(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	order := testutil.Order(
		testutil.Step(nsID, changeorder.ActionCreate),
		testutil.Step(deployID, changeorder.ActionCreate, nsID),
	)

	lenient := Build(ctx, order)
	assert.Len(t, lenient.Edges, 1)

	strict := Build(ctx, order, WithStrictActions())
	assert.Empty(t, strict.Edges)
	deploy, _ := strict.Node(deployID)
	assert.Empty(t, deploy.DependsOn)
}

func TestBuild_SkipsInvalidAction(t *testing.T) {
	ctx, logs := testutil.LoggedContext(context.Background())
	order := testutil.Order(testutil.Step(nsID, changeorder.ActionUnknown))

	g := Build(ctx, order)

	assert.Equal(t, 0, g.Len())
	assert.Contains(t, logs.String(), "Skipping change step without a valid action.")
}

func TestStatusForAction(t *testing.T) {
	testCases := []struct {
		action   changeorder.Action
		expected Status
	}{
		{changeorder.ActionCreate, StatusToCreate},
		{changeorder.ActionUpdate, StatusToUpdate},
		{changeorder.ActionDelete, StatusToDelete},
		{changeorder.ActionUnchanged, StatusSynced},
	}
	for _, tc := range testCases {
		t.Run(tc.action.String(), func(t *testing.T) {
			status, err := StatusForAction(tc.action)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, status)
		})
	}

	_, err := StatusForAction(changeorder.ActionUnknown)
	assert.Error(t, err)
}

// Unchanged resources aggregate to a synced stack.
func TestStackStatus_AllUnchanged(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	order := testutil.Order(
		testutil.Step("ns/Namespace:ns", changeorder.ActionUnchanged),
		testutil.Step("apps/v1:Deployment:ns:app", changeorder.ActionUnchanged, "ns/Namespace:ns"),
	)

	g := Build(ctx, order)

	for _, n := range g.Nodes {
		assert.Equal(t, StatusSynced, n.Status, n.ID)
	}
	assert.Equal(t, StackSynced, g.StackStatus())
	assert.Equal(t, map[Status]int{StatusSynced: 2}, g.Counts())
}

// A single non-synced node forces the aggregate to syncing.
func TestStackStatus_AnyPending(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	for _, action := range []changeorder.Action{changeorder.ActionCreate, changeorder.ActionUpdate, changeorder.ActionDelete} {
		t.Run(action.String(), func(t *testing.T) {
			order := testutil.Order(
				testutil.Step(nsID, changeorder.ActionUnchanged),
				testutil.Step(svcID, changeorder.ActionUnchanged),
				testutil.Step(deployID, action),
			)
			assert.Equal(t, StackSyncing, Build(ctx, order).StackStatus())
		})
	}
}
