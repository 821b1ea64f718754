package changeorder

import (
	"encoding/json"
	"fmt"
)

// Action is the operation a change step performs on its resource.
type Action int

const (
	// ActionUnknown is the zero value; a decoded step never carries it.
	ActionUnknown Action = iota
	ActionUnchanged
	ActionCreate
	ActionUpdate
	ActionDelete
)

var actionNames = map[Action]string{
	ActionUnchanged: "UnChange",
	ActionCreate:    "Create",
	ActionUpdate:    "Update",
	ActionDelete:    "Delete",
}

// String returns the wire name of the action.
func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction maps a wire name onto an Action.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// MarshalJSON implements json.Marshaler.
func (a Action) MarshalJSON() ([]byte, error) {
	name, ok := actionNames[a]
	if !ok {
		return nil, fmt.Errorf("cannot marshal unknown action %d", int(a))
	}
	return json.Marshal(name)
}

// UnmarshalJSON implements json.Unmarshaler. Unknown names are rejected so
// that every decoded step maps onto exactly one resource status.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("action must be a string: %w", err)
	}
	parsed, err := ParseAction(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Valid reports whether a is one of the four planner actions.
func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}
