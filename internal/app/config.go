package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/stackgraph/internal/config"
	"github.com/specialistvlad/stackgraph/internal/renderer"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	StackPath  string // stack directory, or a file inside it
	ConfigPath string // explicit workspace file, overrides the lookup in the workspace root

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Output          renderer.Format

	// Overrides are set from flags and the environment and win over the
	// workspace file.
	Overrides Overrides
}

// Overrides holds workspace settings given on the command line. Nil fields
// are not set.
type Overrides struct {
	PlannerCommand *string
	Interval       *time.Duration
	MaxCycles      *int
	Immediate      *bool
	Listen         *string
	RendererURL    *string
	ExitOnClose    *bool
}

// Apply writes every set override into ws.
func (o Overrides) Apply(ws *config.Workspace) {
	if o.PlannerCommand != nil {
		ws.Planner.Command = *o.PlannerCommand
	}
	if o.Interval != nil {
		ws.Watch.Interval = *o.Interval
	}
	if o.MaxCycles != nil {
		ws.Watch.MaxCycles = *o.MaxCycles
	}
	if o.Immediate != nil {
		ws.Watch.Immediate = *o.Immediate
	}
	if o.Listen != nil {
		ws.Renderer.Listen = *o.Listen
	}
	if o.RendererURL != nil {
		ws.Renderer.URL = *o.RendererURL
	}
	if o.ExitOnClose != nil {
		ws.Renderer.ExitOnClose = *o.ExitOnClose
	}
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.StackPath == "" {
		cfg.StackPath = "."
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Output == "" {
		cfg.Output = renderer.FormatText
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	var errs []error
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		errs = append(errs, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'"))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = append(errs, errors.New("invalid log-format: must be 'text' or 'json'"))
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck-port: %d is out of range", cfg.HealthcheckPort))
	}
	if f, err := renderer.ParseFormat(string(cfg.Output)); err != nil {
		errs = append(errs, err)
	} else {
		cfg.Output = f
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &cfg, nil
}
