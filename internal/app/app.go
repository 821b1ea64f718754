package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/Masterminds/semver/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/specialistvlad/stackgraph/internal/config"
	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/specialistvlad/stackgraph/internal/output"
	"github.com/specialistvlad/stackgraph/internal/planner"
	"github.com/specialistvlad/stackgraph/internal/poller"
	"github.com/specialistvlad/stackgraph/internal/stack"
)

// Planner is everything the app needs from the external planner.
type Planner interface {
	poller.Previewer
	Apply(ctx context.Context, st stack.Stack) error
	Destroy(ctx context.Context, st stack.Stack) error
	Compile(ctx context.Context, st stack.Stack) error
	CheckVersion(ctx context.Context, constraint string) (*semver.Version, error)
}

// PlannerFactory builds the planner for a workspace.
type PlannerFactory func(cfg config.Planner, out *output.Channel) Planner

// Option customises an App.
type Option func(*App)

// WithPlannerFactory replaces the kusion planner. Used by tests.
func WithPlannerFactory(f PlannerFactory) Option {
	return func(a *App) { a.newPlanner = f }
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loader     config.Loader
	out        *output.Channel
	newPlanner PlannerFactory
	registry   *prometheus.Registry
	metrics    *poller.Metrics
	httpServer *http.Server
}

// NewApp is the constructor for the main application. Scenes and command
// results go to outW; logs and planner output go to errW.
func NewApp(outW, errW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		ctx:        ctxlog.WithLogger(context.Background(), logger),
		outW:       outW,
		logger:     logger,
		config:     cfg,
		loader:     loader,
		out:        output.NewChannel(errW),
		newPlanner: kusionPlanner,
		registry:   reg,
		metrics:    poller.NewMetrics(reg),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start launches the background servers of the app.
func (a *App) Start() {
	a.healthCheckServer()
}

// Close stops everything Start launched.
func (a *App) Close() error {
	return a.closeHealthCheckServer()
}

// Registry returns the metrics registry of the app.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

func kusionPlanner(cfg config.Planner, out *output.Channel) Planner {
	return planner.NewKusion(planner.Options{
		Command:      cfg.Command,
		IgnoreFields: cfg.IgnoreFields,
		Env:          cfg.EnvList(),
	}, nil, out)
}
