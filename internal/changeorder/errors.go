package changeorder

import (
	"errors"
	"fmt"
)

// MalformedInputError reports planner output that is not a valid change order.
type MalformedInputError struct {
	// Reason is a short description of what was wrong.
	Reason string
	// Output holds a prefix of the offending document, for diagnostics.
	Output string
	Err    error
}

func (e *MalformedInputError) Error() string {
	msg := "malformed change order: " + e.Reason
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// IsMalformed reports whether err (or any error in its chain) is a MalformedInputError.
func IsMalformed(err error) bool {
	var me *MalformedInputError
	return errors.As(err, &me)
}

const outputPreviewLen = 512

func malformed(reason string, output []byte, err error) error {
	preview := string(output)
	if len(preview) > outputPreviewLen {
		preview = preview[:outputPreviewLen] + "..."
	}
	return &MalformedInputError{Reason: reason, Output: preview, Err: err}
}
