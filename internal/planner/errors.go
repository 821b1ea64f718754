package planner

import (
	"errors"
	"fmt"
	"strings"
)

// ProcessError reports a planner invocation that exited non-zero or wrote to
// stderr without producing usable output.
type ProcessError struct {
	// Op is the planner subcommand, e.g. "preview".
	Op       string
	Command  string
	ExitCode int
	// Stderr is the ANSI-stripped error output of the process.
	Stderr string
	Err    error
}

func (e *ProcessError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s failed", e.Command, e.Op)
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, " with exit code %d", e.ExitCode)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(firstLine(msg))
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ProcessError) Unwrap() error { return e.Err }

// IsProcess reports whether err (or any error in its chain) is a ProcessError.
func IsProcess(err error) bool {
	var pe *ProcessError
	return errors.As(err, &pe)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
