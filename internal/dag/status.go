package dag

import (
	"fmt"

	"github.com/specialistvlad/stackgraph/internal/changeorder"
)

// Status is the convergence state of a single resource.
type Status string

const (
	StatusToCreate Status = "toCreate"
	StatusToUpdate Status = "toUpdate"
	StatusToDelete Status = "toDelete"
	StatusSynced   Status = "synced"
)

// StatusForAction maps a planner action onto the status of its resource.
// Every valid action has exactly one status; ActionUnknown is an error.
func StatusForAction(a changeorder.Action) (Status, error) {
	switch a {
	case changeorder.ActionCreate:
		return StatusToCreate, nil
	case changeorder.ActionUpdate:
		return StatusToUpdate, nil
	case changeorder.ActionDelete:
		return StatusToDelete, nil
	case changeorder.ActionUnchanged:
		return StatusSynced, nil
	case changeorder.ActionUnknown:
		return "", fmt.Errorf("no status for %s", a)
	}
	return "", fmt.Errorf("no status for %s", a)
}

// StackStatus is the aggregate state of a stack.
type StackStatus string

const (
	StackSynced  StackStatus = "synced"
	StackSyncing StackStatus = "syncing"
	// StackUnsynced is reported before anything is known about the stack.
	StackUnsynced StackStatus = "unsynced"
)
