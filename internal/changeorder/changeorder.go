package changeorder

import "sort"

// ResourceSnapshot is the state of a resource on one side of a change.
type ResourceSnapshot struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Attributes map[string]any `json:"attributes" yaml:"attributes"`
	DependsOn  []string       `json:"dependsOn" yaml:"dependsOn"`
}

// ChangeStep describes the change planned for one resource. From is nil for
// a created resource and To is nil for a deleted one.
type ChangeStep struct {
	ID     string            `json:"id"`
	Action Action            `json:"action"`
	From   *ResourceSnapshot `json:"from"`
	To     *ResourceSnapshot `json:"to"`
}

// ChangeOrder is the full result of one planner preview.
type ChangeOrder struct {
	StepKeys    []string               `json:"stepKeys"`
	ChangeSteps map[string]*ChangeStep `json:"changeSteps"`
}

// SortedIDs returns the ids of every step in ChangeSteps in lexical order.
// It is the iteration order every consumer uses, independent of StepKeys.
func (o *ChangeOrder) SortedIDs() []string {
	if o == nil {
		return nil
	}
	ids := make([]string, 0, len(o.ChangeSteps))
	for id, step := range o.ChangeSteps {
		if step == nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of non-nil steps in the order.
func (o *ChangeOrder) Len() int {
	return len(o.SortedIDs())
}

// DependencyIDs returns the dependency list of the snapshot, tolerating a nil snapshot.
func (s *ResourceSnapshot) DependencyIDs() []string {
	if s == nil {
		return nil
	}
	return s.DependsOn
}
