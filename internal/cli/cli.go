package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/specialistvlad/stackgraph/internal/app"
	"github.com/specialistvlad/stackgraph/internal/config"
	"github.com/specialistvlad/stackgraph/internal/hcl"
)

// Exit codes.
const (
	ExitRuntime = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// Options hold the process-level dependencies of a command run.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Loader reads workspace files. Defaults to the HCL loader.
	Loader config.Loader
	// AppOptions are passed to every App the commands create.
	AppOptions []app.Option
}

// Execute parses args and runs the selected command. Every returned error is
// an *ExitError.
func Execute(ctx context.Context, args []string, opts Options) error {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Loader == nil {
		opts.Loader = hcl.NewLoader()
	}

	slog.Debug("CLI parser started.", "args", args)
	root := newRootCommand(opts)
	root.SetArgs(args)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: ExitRuntime, Message: err.Error()}
}
