// Package changeorder is the data contract returned by the external planner's
// preview: an ordered list of step keys plus a mapping from resource id to the
// change step planned for that resource.
//
// The key list is informational only. Consumers derive the set of resources
// from ChangeSteps and must not depend on the order of StepKeys.
package changeorder
