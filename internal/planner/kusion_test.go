package planner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/stackgraph/internal/changeorder"
	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/specialistvlad/stackgraph/internal/output"
	"github.com/specialistvlad/stackgraph/internal/stack"
	"github.com/specialistvlad/stackgraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *exitError) ExitCode() int { return e.code }

// fakeRunner replies to every command with fixed output.
type fakeRunner struct {
	mu     sync.Mutex
	calls  []Command
	stdout string
	stderr string
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	if cmd.Stdout != nil {
		_, _ = io.WriteString(cmd.Stdout, f.stdout)
	}
	if cmd.Stderr != nil {
		_, _ = io.WriteString(cmd.Stderr, f.stderr)
	}
	return f.err
}

var prod = stack.Stack{
	Name:     "prod",
	FullName: "web/prod",
	Dir:      "/ws/web/prod",
	Root:     "/ws",
}

const previewJSON = `{
  "stepKeys": ["v1:Namespace:web"],
  "changeSteps": {
    "v1:Namespace:web": {
      "id": "v1:Namespace:web",
      "action": "UnChange",
      "from": {"id": "v1:Namespace:web", "type": "Kubernetes", "attributes": {}, "dependsOn": []},
      "to": {"id": "v1:Namespace:web", "type": "Kubernetes", "attributes": {}, "dependsOn": []}
    }
  }
}`

func newTestKusion(runner Runner) (*Kusion, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewKusion(Options{}, runner, output.NewChannel(&buf)), &buf
}

func TestPreview_Success(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	runner := &fakeRunner{stdout: previewJSON}
	k, out := newTestKusion(runner)

	order, err := k.Preview(ctx, prod)
	require.NoError(t, err)
	assert.Equal(t, 1, order.Len())
	assert.Empty(t, out.String())

	require.Len(t, runner.calls, 1)
	call := runner.calls[0]
	assert.Equal(t, "kusion", call.Name)
	assert.Equal(t, "/ws", call.Dir)
	assert.Equal(t, []string{
		"preview", "-w", "web/prod",
		"--ignore-fields=metadata.generation,metadata.managedFields",
		"--output", "json",
	}, call.Args)
}

func TestPreview_SuccessDespiteStderr(t *testing.T) {
	ctx, logs := testutil.LoggedContext(context.Background())
	k, out := newTestKusion(&fakeRunner{stdout: previewJSON, stderr: "\x1b[33mdeprecated flag\x1b[0m"})

	order, err := k.Preview(ctx, prod)
	require.NoError(t, err)
	assert.Equal(t, 1, order.Len())
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "deprecated flag")
}

func TestPreview_ProcessFailure(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	k, out := newTestKusion(&fakeRunner{
		stderr: "\x1b[31mError:\x1b[0m stack web/prod not found\n",
		err:    &exitError{code: 1},
	})

	order, err := k.Preview(ctx, prod)
	assert.Nil(t, order)
	require.Error(t, err)

	var perr *ProcessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "preview", perr.Op)
	assert.Equal(t, 1, perr.ExitCode)
	assert.Equal(t, "Error: stack web/prod not found\n", perr.Stderr)
	assert.EqualError(t, err, "kusion preview failed with exit code 1: Error: stack web/prod not found")
	assert.Equal(t, "kusion preview failed:\nError: stack web/prod not found\n", out.String())
}

func TestPreview_LogsCallerStackOnce(t *testing.T) {
	ctx, logs := testutil.LoggedContext(context.Background())
	ctx = ctxlog.With(ctx, "stack", prod.FullName)
	k, _ := newTestKusion(&fakeRunner{stderr: "Error: boom\n", err: &exitError{code: 1}})

	_, err := k.Preview(ctx, prod)
	require.Error(t, err)
	require.Error(t, k.Apply(ctx, prod))

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, "stack=web/prod"), line)
	}
}

func TestPreview_StderrOnly(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	k, _ := newTestKusion(&fakeRunner{stdout: "Generating Spec...", stderr: "panic: boom"})

	_, err := k.Preview(ctx, prod)
	assert.True(t, IsProcess(err))
	assert.False(t, changeorder.IsMalformed(err))
}

func TestPreview_MalformedOutput(t *testing.T) {
	testCases := []struct {
		name   string
		stdout string
		reason string
	}{
		{"empty", "", "empty output"},
		{"text", "Generating Spec in the Stack web/prod...", "not a JSON change order"},
		{"unknown action", `{"changeSteps":{"a":{"id":"a","action":"Replace"}}}`, "not a JSON change order"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.LoggedContext(context.Background())
			k, out := newTestKusion(&fakeRunner{stdout: tc.stdout})

			_, err := k.Preview(ctx, prod)
			var me *changeorder.MalformedInputError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tc.reason, me.Reason)
			assert.Contains(t, out.String(), "kusion preview failed:")
		})
	}
}

func TestPreview_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	k, out := newTestKusion(&fakeRunner{err: errors.New("signal: killed")})

	_, err := k.Preview(ctx, prod)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestPreview_CustomOptions(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	runner := &fakeRunner{stdout: previewJSON}
	k := NewKusion(Options{Command: "/opt/kusion/bin/kusion", IgnoreFields: []string{}, Env: []string{"KUSION_HOME=/tmp"}}, runner, nil)

	_, err := k.Preview(ctx, prod)
	require.NoError(t, err)
	call := runner.calls[0]
	assert.Equal(t, "/opt/kusion/bin/kusion", call.Name)
	assert.Equal(t, []string{"preview", "-w", "web/prod", "--output", "json"}, call.Args)
	assert.Equal(t, []string{"KUSION_HOME=/tmp"}, call.Env)
}

func TestOperations(t *testing.T) {
	testCases := []struct {
		name     string
		run      func(*Kusion, context.Context) error
		expected []string
	}{
		{"apply", func(k *Kusion, ctx context.Context) error { return k.Apply(ctx, prod) }, []string{"apply", "-w", "web/prod", "-y"}},
		{"destroy", func(k *Kusion, ctx context.Context) error { return k.Destroy(ctx, prod) }, []string{"destroy", "-w", "web/prod", "-y"}},
		{"compile", func(k *Kusion, ctx context.Context) error { return k.Compile(ctx, prod) }, []string{"compile", "-w", "web/prod"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, _ := testutil.LoggedContext(context.Background())
			runner := &fakeRunner{stdout: "\x1b[32m✔\x1b[0m step one\nstep two"}
			k, out := newTestKusion(runner)

			require.NoError(t, tc.run(k, ctx))
			assert.Equal(t, tc.expected, runner.calls[0].Args)
			assert.Equal(t, "/ws", runner.calls[0].Dir)
			assert.Equal(t, "✔ step one\nstep two\n", out.String())
		})
	}
}

func TestOperations_Failure(t *testing.T) {
	ctx, _ := testutil.LoggedContext(context.Background())
	k, out := newTestKusion(&fakeRunner{stderr: "apply rejected\n", err: &exitError{code: 2}})

	err := k.Apply(ctx, prod)
	var perr *ProcessError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "apply", perr.Op)
	assert.Equal(t, 2, perr.ExitCode)
	assert.Equal(t, "apply rejected\nkusion apply failed:\n", out.String())
}
