package planner

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/specialistvlad/stackgraph/internal/changeorder"
	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/specialistvlad/stackgraph/internal/output"
	"github.com/specialistvlad/stackgraph/internal/stack"
)

// DefaultCommand is the planner binary looked up on PATH.
const DefaultCommand = "kusion"

// DefaultIgnoreFields are the attribute paths the planner skips when
// comparing live and desired state. They change on every reconcile.
var DefaultIgnoreFields = []string{"metadata.generation", "metadata.managedFields"}

// Options configure a Kusion planner.
type Options struct {
	// Command is the planner binary. Defaults to DefaultCommand.
	Command string
	// IgnoreFields is passed to preview. Defaults to DefaultIgnoreFields.
	IgnoreFields []string
	// Env is appended to the process environment.
	Env []string
}

// Kusion runs planner operations for a stack.
type Kusion struct {
	command      string
	ignoreFields []string
	env          []string
	runner       Runner
	out          *output.Channel
}

// NewKusion creates a planner. A nil runner uses ExecRunner; a nil channel
// discards output.
func NewKusion(opts Options, runner Runner, out *output.Channel) *Kusion {
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}
	if opts.IgnoreFields == nil {
		opts.IgnoreFields = DefaultIgnoreFields
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if out == nil {
		out = output.NewChannel(nil)
	}
	return &Kusion{
		command:      opts.Command,
		ignoreFields: opts.IgnoreFields,
		env:          opts.Env,
		runner:       runner,
		out:          out,
	}
}

// Command returns the planner binary name.
func (k *Kusion) Command() string {
	return k.command
}

// PreviewArgs are the arguments Preview passes to the planner.
func (k *Kusion) PreviewArgs(st stack.Stack) []string {
	args := []string{"preview", "-w", st.FullName}
	if len(k.ignoreFields) > 0 {
		args = append(args, "--ignore-fields="+strings.Join(k.ignoreFields, ","))
	}
	return append(args, "--output", "json")
}

// Preview asks the planner for the change order of st.
//
// Stdout that decodes as a change order is a success, even when stderr is
// not empty. Otherwise a failed process or any stderr output yields a
// *ProcessError, and unusable stdout yields a
// *changeorder.MalformedInputError. Failures are reported to the output
// channel.
func (k *Kusion) Preview(ctx context.Context, st stack.Stack) (*changeorder.ChangeOrder, error) {
	logger := ctxlog.FromContext(ctx)

	var stdout, stderr bytes.Buffer
	runErr := k.runner.Run(ctx, Command{
		Dir:    st.WorkDir(),
		Name:   k.command,
		Args:   k.PreviewArgs(st),
		Env:    k.env,
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	order, decodeErr := changeorder.Decode(stdout.Bytes())
	if decodeErr == nil {
		if stderr.Len() > 0 {
			logger.Warn("Planner wrote to stderr during a successful preview.", "stderr", output.StripANSI(stderr.String()))
		}
		logger.Debug("Preview decoded.", "steps", order.Len())
		return order, nil
	}

	if runErr != nil || stderr.Len() > 0 {
		body := stderr.String()
		if body == "" {
			body = stdout.String()
		}
		k.report("preview", body)
		perr := &ProcessError{
			Op:       "preview",
			Command:  k.command,
			ExitCode: exitCode(runErr),
			Stderr:   output.StripANSI(stderr.String()),
			Err:      runErr,
		}
		logger.Error("Planner preview failed.", "error", perr)
		return nil, perr
	}

	k.report("preview", stdout.String())
	logger.Error("Planner preview produced no change order.", "error", decodeErr)
	return nil, decodeErr
}

// Apply applies st without prompting for confirmation.
func (k *Kusion) Apply(ctx context.Context, st stack.Stack) error {
	return k.stream(ctx, "apply", st, "apply", "-w", st.FullName, "-y")
}

// Destroy deletes every resource of st without prompting for confirmation.
func (k *Kusion) Destroy(ctx context.Context, st stack.Stack) error {
	return k.stream(ctx, "destroy", st, "destroy", "-w", st.FullName, "-y")
}

// Compile renders st into its intermediate representation.
func (k *Kusion) Compile(ctx context.Context, st stack.Stack) error {
	return k.stream(ctx, "compile", st, "compile", "-w", st.FullName)
}

// stream runs an operation whose combined output goes straight to the
// output channel.
func (k *Kusion) stream(ctx context.Context, op string, st stack.Stack, args ...string) error {
	logger := ctxlog.FromContext(ctx).With("op", op)
	logger.Info("▶️ Running planner.", "command", k.command, "args", args)

	w := k.out.Writer()
	var stderr bytes.Buffer
	err := k.runner.Run(ctx, Command{
		Dir:    st.WorkDir(),
		Name:   k.command,
		Args:   args,
		Env:    k.env,
		Stdout: w,
		Stderr: io.MultiWriter(w, &stderr),
	})
	_ = w.Close()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		k.out.Appendf("%s %s failed:", k.command, op)
		perr := &ProcessError{
			Op:       op,
			Command:  k.command,
			ExitCode: exitCode(err),
			Stderr:   output.StripANSI(stderr.String()),
			Err:      err,
		}
		logger.Error("Planner operation failed.", "error", perr)
		return perr
	}
	logger.Info("✅ Planner operation finished.")
	return nil
}

func (k *Kusion) report(op, body string) {
	k.out.Appendf("%s %s failed:", k.command, op)
	k.out.AppendLine(body, true)
}
