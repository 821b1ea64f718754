package testutil

import (
	"github.com/specialistvlad/stackgraph/internal/changeorder"
)

// Step builds a change step whose snapshots carry the given dependencies.
// The "from" snapshot is omitted for creates and the "to" snapshot for deletes,
// as the planner does.
func Step(id string, action changeorder.Action, dependsOn ...string) *changeorder.ChangeStep {
	snapshot := func() *changeorder.ResourceSnapshot {
		return &changeorder.ResourceSnapshot{
			ID:         id,
			Type:       "Kubernetes",
			Attributes: map[string]any{},
			DependsOn:  append([]string(nil), dependsOn...),
		}
	}

	step := &changeorder.ChangeStep{ID: id, Action: action}
	if action != changeorder.ActionCreate {
		step.From = snapshot()
	}
	if action != changeorder.ActionDelete {
		step.To = snapshot()
	}
	return step
}

// Order assembles a change order whose step keys follow the argument order.
func Order(steps ...*changeorder.ChangeStep) *changeorder.ChangeOrder {
	order := &changeorder.ChangeOrder{ChangeSteps: make(map[string]*changeorder.ChangeStep, len(steps))}
	for _, s := range steps {
		order.StepKeys = append(order.StepKeys, s.ID)
		order.ChangeSteps[s.ID] = s
	}
	return order
}

// WithStepKeys returns a shallow copy of order using the given key list.
func WithStepKeys(order *changeorder.ChangeOrder, keys []string) *changeorder.ChangeOrder {
	return &changeorder.ChangeOrder{StepKeys: keys, ChangeSteps: order.ChangeSteps}
}
