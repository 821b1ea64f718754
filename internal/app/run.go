package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/stackgraph/internal/config"
	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/specialistvlad/stackgraph/internal/poller"
	"github.com/specialistvlad/stackgraph/internal/renderer"
	"github.com/specialistvlad/stackgraph/internal/stack"
	"golang.org/x/sync/errgroup"
)

// target is a resolved stack together with its workspace and planner.
type target struct {
	stack     stack.Stack
	workspace *config.Workspace
	planner   Planner
}

// scoped tags every log line below ctx with the stack name.
func (t *target) scoped(ctx context.Context) context.Context {
	return ctxlog.With(ctx, "stack", t.stack.FullName)
}

// withLogger attaches the app logger to a caller context.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// loadWorkspace merges defaults, the workspace file of root and the
// command-line overrides, in that order.
func (a *App) loadWorkspace(ctx context.Context, root string) (*config.Workspace, error) {
	base := config.Default()
	var (
		ws  *config.Workspace
		err error
	)
	if a.config.ConfigPath != "" {
		ws, err = a.loader.LoadFile(ctx, a.config.ConfigPath, base)
	} else {
		ws, err = a.loader.Load(ctx, root, base)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	a.config.Overrides.Apply(ws)
	if err := ws.Validate(); err != nil {
		return nil, err
	}
	return ws, nil
}

// prepare resolves the configured stack and builds its planner.
func (a *App) prepare(ctx context.Context) (*target, error) {
	st, err := stack.Resolve(a.config.StackPath)
	if err != nil {
		return nil, err
	}
	ws, err := a.loadWorkspace(ctx, st.WorkDir())
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Stack resolved.",
		"stack", st.FullName, "root", st.Root, "config", ws.Source)
	return &target{
		stack:     st,
		workspace: ws,
		planner:   a.newPlanner(ws.Planner, a.out),
	}, nil
}

func (a *App) pollerOptions(ws *config.Workspace) poller.Options {
	params := ws.Layout
	return poller.Options{
		Interval:  ws.Watch.Interval,
		Immediate: ws.Watch.Immediate,
		MaxCycles: ws.Watch.MaxCycles,
		Layout:    &params,
		Metrics:   a.metrics,
		Output:    a.out,
	}
}

// Watch polls the stack and renders every cycle until it converges.
func (a *App) Watch(ctx context.Context) (*poller.Result, error) {
	ctx = a.withLogger(ctx)
	t, err := a.prepare(ctx)
	if err != nil {
		return nil, err
	}
	return a.watch(ctx, t, poller.TriggerWatch)
}

// Apply runs the planner's apply and watches the stack at the same time. A
// failed apply stops the watch.
func (a *App) Apply(ctx context.Context) (*poller.Result, error) {
	ctx = a.withLogger(ctx)
	t, err := a.prepare(ctx)
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	var (
		res      *poller.Result
		watchErr error
	)
	g.Go(func() error {
		actx := t.scoped(gctx)
		logger := ctxlog.FromContext(actx)
		logger.Info("🚀 Applying stack.")
		if err := t.planner.Apply(actx, t.stack); err != nil {
			return fmt.Errorf("apply: %w", err)
		}
		logger.Info("🏁 Apply finished.")
		return nil
	})
	g.Go(func() error {
		res, watchErr = a.watch(gctx, t, poller.TriggerApply)
		return nil
	})
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, watchErr
}

// watch runs one poll session, fanning updates out to every configured sink.
func (a *App) watch(ctx context.Context, t *target, trigger poller.Trigger) (*poller.Result, error) {
	logger := ctxlog.FromContext(ctx)
	ws := t.workspace

	sessionCtx, stopSession := context.WithCancel(ctx)
	defer stopSession()
	serveCtx, stopServe := context.WithCancel(ctx)
	defer stopServe()

	var g errgroup.Group
	sinks := renderer.Multi{renderer.NewWriter(a.outW, a.config.Output)}

	if ws.Renderer.Listen != "" {
		srv := renderer.NewSocketServer(ctx)
		sinks = append(sinks, srv)
		g.Go(func() error {
			err := srv.ListenAndServe(serveCtx, ws.Renderer.Listen)
			if err != nil {
				stopSession()
			}
			return err
		})
		if ws.Renderer.ExitOnClose {
			g.Go(func() error {
				select {
				case <-srv.Closed():
					logger.Info("Last view closed, stopping watch.")
					stopSession()
				case <-serveCtx.Done():
				}
				return nil
			})
		}
	}

	if ws.Renderer.URL != "" {
		client, err := renderer.DialSocketClient(ctx, ws.Renderer.URL, renderer.ClientOptions{})
		if err != nil {
			stopServe()
			return nil, errors.Join(fmt.Errorf("connecting to renderer: %w", err), g.Wait())
		}
		defer client.Close()
		sinks = append(sinks, client)
	}

	p := poller.New(t.planner, sinks, a.pollerOptions(ws))
	res, runErr := p.Run(sessionCtx, poller.Target{Stack: t.stack, Trigger: trigger})

	stopServe()
	if err := g.Wait(); err != nil && runErr == nil {
		return res, err
	}
	return res, runErr
}

// Destroy runs the planner's destroy for the stack.
func (a *App) Destroy(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	t, err := a.prepare(ctx)
	if err != nil {
		return err
	}
	ctx = t.scoped(ctx)
	ctxlog.FromContext(ctx).Info("🧨 Destroying stack.")
	return t.planner.Destroy(ctx, t.stack)
}

// Compile runs the planner's compile for the stack.
func (a *App) Compile(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	t, err := a.prepare(ctx)
	if err != nil {
		return err
	}
	ctx = t.scoped(ctx)
	ctxlog.FromContext(ctx).Info("🔧 Compiling stack.")
	return t.planner.Compile(ctx, t.stack)
}
