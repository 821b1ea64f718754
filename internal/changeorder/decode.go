package changeorder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode parses planner preview output into a validated ChangeOrder.
//
// A step without an id takes its map key; a step whose id differs from its
// key, or a nil step, makes the whole order malformed.
func Decode(data []byte) (*ChangeOrder, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, malformed("empty output", data, nil)
	}

	var order ChangeOrder
	if err := json.Unmarshal(trimmed, &order); err != nil {
		return nil, malformed("not a JSON change order", data, err)
	}
	if err := order.Validate(); err != nil {
		return nil, malformed("invalid change step", data, err)
	}
	return &order, nil
}

// Validate checks the step invariants of an order, filling in missing step ids
// from their keys.
func (o *ChangeOrder) Validate() error {
	if o.ChangeSteps == nil {
		o.ChangeSteps = make(map[string]*ChangeStep)
	}
	for key, step := range o.ChangeSteps {
		if step == nil {
			return fmt.Errorf("step %q is null", key)
		}
		if step.ID == "" {
			step.ID = key
		}
		if !step.Action.Valid() {
			return fmt.Errorf("step %q has no action", key)
		}
		if step.ID != key {
			return fmt.Errorf("step key %q does not match step id %q", key, step.ID)
		}
	}
	return nil
}
