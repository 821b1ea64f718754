package dag

import (
	"errors"
	"strings"
)

// CycleError reports a dependency cycle. Cycle is the closed path, so its
// first and last entries are the same id.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return "cyclic dependency detected: " + strings.Join(e.Cycle, " -> ")
}

// IsCycle reports whether err (or any error in its chain) is a CycleError.
func IsCycle(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
