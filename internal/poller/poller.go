// Package poller drives a stack towards convergence.
//
// A Poller asks the planner for a fresh change order on every tick, rebuilds
// the resource graph and sends the laid-out scene to a renderer sink. The
// session ends exactly once: Synced when every resource is synced, Failed on
// the first planner, input or cycle error, or Cancelled when the context ends.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/stackgraph/internal/changeorder"
	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/specialistvlad/stackgraph/internal/dag"
	"github.com/specialistvlad/stackgraph/internal/layout"
	"github.com/specialistvlad/stackgraph/internal/output"
	"github.com/specialistvlad/stackgraph/internal/planner"
	"github.com/specialistvlad/stackgraph/internal/renderer"
	"github.com/specialistvlad/stackgraph/internal/stack"
)

// DefaultInterval is the time between two poll cycles.
const DefaultInterval = 3 * time.Second

// ErrMaxCycles ends a session that did not converge within Options.MaxCycles.
var ErrMaxCycles = errors.New("stack did not converge within the cycle limit")

// Previewer returns the current change order of a stack.
type Previewer interface {
	Preview(ctx context.Context, st stack.Stack) (*changeorder.ChangeOrder, error)
}

// State is the lifecycle state of a session.
type State string

const (
	StatePolling   State = "polling"
	StateSynced    State = "synced"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Trigger tells the poller what started the session.
type Trigger int

const (
	// TriggerWatch observes a stack without changing it.
	TriggerWatch Trigger = iota
	// TriggerApply follows a running apply.
	TriggerApply
)

// Target is the stack a session converges.
type Target struct {
	Stack   stack.Stack
	Trigger Trigger
}

func (t Target) initialStatus() dag.StackStatus {
	if t.Trigger == TriggerApply {
		return dag.StackSyncing
	}
	return dag.StackUnsynced
}

// Options configure a Poller.
type Options struct {
	// Interval between ticks. Defaults to DefaultInterval.
	Interval time.Duration
	// Immediate runs the first cycle without waiting for a tick.
	Immediate bool
	// MaxCycles bounds the session; zero means unlimited.
	MaxCycles int
	// Layout defaults to layout.DefaultParams.
	Layout *layout.Params
	Build  []dag.BuildOption
	// Metrics defaults to an unregistered set.
	Metrics *Metrics
	// Output receives failure reports. May be nil.
	Output *output.Channel
	// Session names the session. A random UUID is used when empty.
	Session string
}

// Result describes a finished session.
type Result struct {
	Session string
	State   State
	// Cycles counts the cycles that were started.
	Cycles  int
	Skipped int
	// Last is the last update sent to the sink, if any.
	Last *renderer.UpdateMessage
	// Err is the cause of a Failed session.
	Err error
}

// Poller runs convergence sessions.
type Poller struct {
	planner Previewer
	sink    renderer.Sink
	opts    Options
}

// New creates a Poller.
func New(previewer Previewer, sink renderer.Sink, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Layout == nil {
		p := layout.DefaultParams()
		opts.Layout = &p
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	return &Poller{planner: previewer, sink: sink, opts: opts}
}

type cycleResult struct {
	update renderer.UpdateMessage
	status dag.StackStatus
	nodes  int
	err    error
}

// Run polls target until it is synced, a cycle fails or ctx ends. A Failed
// session returns its cause as the error; Synced and Cancelled sessions
// return a nil error.
func (p *Poller) Run(ctx context.Context, target Target) (*Result, error) {
	session := p.opts.Session
	if session == "" {
		session = uuid.NewString()
	}
	ctx = ctxlog.With(ctx, "session", session, "stack", target.Stack.FullName)
	logger := ctxlog.FromContext(ctx)

	res := &Result{Session: session, State: StatePolling}
	var latch sync.Once
	finish := func(state State, err error) {
		latch.Do(func() {
			res.State = state
			res.Err = err
			switch state {
			case StateSynced:
				logger.Info("✅ Stack synced.", "cycles", res.Cycles)
			case StateFailed:
				logger.Error("❌ Watch session failed.", "cycles", res.Cycles, "error", err)
				if !reported(err) {
					p.opts.Output.Appendf("watch of %s failed: %v", target.Stack.FullName, err)
				}
			case StateCancelled:
				logger.Info("Watch session cancelled.", "cycles", res.Cycles)
			}
		})
	}

	logger.Info("👀 Watching stack.", "interval", p.opts.Interval)
	p.emitInit(ctx, renderer.InitMessage{
		Session: session,
		Stack:   target.Stack.FullName,
		Status:  target.initialStatus(),
	})

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	// Capacity one: at most one cycle is in flight and its result never
	// blocks, even once Run has returned.
	results := make(chan cycleResult, 1)
	inFlight := false
	start := func() {
		inFlight = true
		res.Cycles++
		logger.Debug("Starting poll cycle.", "cycle", res.Cycles)
		go func() { results <- p.cycle(ctx, target) }()
	}

	if p.opts.Immediate {
		start()
	}

	for {
		select {
		case <-ctx.Done():
			finish(StateCancelled, nil)
			return res, nil

		case <-ticker.C:
			if inFlight {
				res.Skipped++
				p.opts.Metrics.skipped.Inc()
				logger.Debug("Previous cycle still running, skipping tick.")
				continue
			}
			start()

		case r := <-results:
			inFlight = false
			if ctx.Err() != nil {
				p.opts.Metrics.cycles.WithLabelValues(resultDropped).Inc()
				finish(StateCancelled, nil)
				return res, nil
			}
			if r.err != nil {
				p.opts.Metrics.cycles.WithLabelValues(resultFailed).Inc()
				finish(StateFailed, r.err)
				return res, r.err
			}

			p.opts.Metrics.nodes.Set(float64(r.nodes))
			p.emitUpdate(ctx, r.update)
			res.Last = &r.update

			if r.status == dag.StackSynced {
				p.opts.Metrics.cycles.WithLabelValues(resultSynced).Inc()
				finish(StateSynced, nil)
				return res, nil
			}
			p.opts.Metrics.cycles.WithLabelValues(resultSyncing).Inc()
			logger.Info("Stack still syncing.", "cycle", res.Cycles, "resources", r.nodes)

			if p.opts.MaxCycles > 0 && res.Cycles >= p.opts.MaxCycles {
				err := fmt.Errorf("%w (%d)", ErrMaxCycles, p.opts.MaxCycles)
				finish(StateFailed, err)
				return res, err
			}
		}
	}
}

// Snapshot runs a single cycle outside of a session. Nothing is sent to
// the sink.
func (p *Poller) Snapshot(ctx context.Context, st stack.Stack) (*renderer.UpdateMessage, error) {
	r := p.cycle(ctx, Target{Stack: st})
	if r.err != nil {
		return nil, r.err
	}
	p.opts.Metrics.nodes.Set(float64(r.nodes))
	return &r.update, nil
}

// cycle runs one preview and turns it into an update message. It never
// talks to the sink.
func (p *Poller) cycle(ctx context.Context, target Target) cycleResult {
	started := time.Now()
	defer func() { p.opts.Metrics.duration.Observe(time.Since(started).Seconds()) }()

	order, err := p.planner.Preview(ctx, target.Stack)
	if err != nil {
		return cycleResult{err: fmt.Errorf("preview: %w", err)}
	}

	g := dag.Build(ctx, order, p.opts.Build...)
	levels, err := dag.AssignLevels(g)
	if err != nil {
		return cycleResult{err: err}
	}
	scene := layout.Compute(g, levels, *p.opts.Layout)
	status := g.StackStatus()

	return cycleResult{
		update: renderer.NewUpdateMessage(target.Stack.Project.FullName, target.Stack.FullName, status, scene),
		status: status,
		nodes:  g.Len(),
	}
}

func (p *Poller) emitInit(ctx context.Context, msg renderer.InitMessage) {
	if err := p.sink.Init(ctx, msg); err != nil {
		p.opts.Metrics.renderErrors.Inc()
		ctxlog.FromContext(ctx).Warn("Renderer rejected init message.", "error", err)
	}
}

func (p *Poller) emitUpdate(ctx context.Context, msg renderer.UpdateMessage) {
	if err := p.sink.Update(ctx, msg); err != nil {
		p.opts.Metrics.renderErrors.Inc()
		ctxlog.FromContext(ctx).Warn("Renderer rejected update message.", "error", err)
	}
}

// reported tells whether the planner already wrote err to the output channel.
func reported(err error) bool {
	return planner.IsProcess(err) || changeorder.IsMalformed(err)
}
