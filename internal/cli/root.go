package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/stackgraph/internal/app"
	"github.com/specialistvlad/stackgraph/internal/renderer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "STACKGRAPH"

// Viper keys, equal to the flag names.
const (
	keyLogLevel        = "log-level"
	keyLogFormat       = "log-format"
	keyConfig          = "config"
	keyHealthcheckPort = "healthcheck-port"
	keyOutput          = "output"
	keyCommand         = "command"
	keyInterval        = "interval"
	keyMaxCycles       = "max-cycles"
	keyImmediate       = "immediate"
	keyListen          = "listen"
	keyRendererURL     = "renderer-url"
	keyExitOnClose     = "exit-on-close"
)

// command carries the state shared by every subcommand of one invocation.
type command struct {
	opts Options
	v    *viper.Viper
}

func newRootCommand(opts Options) *cobra.Command {
	c := &command{opts: opts, v: newViper()}

	root := &cobra.Command{
		Use:   "stackgraph",
		Short: "Watch a kusion stack converge as a live resource graph",
		Long: `stackgraph drives the kusion planner for a stack and renders the planned
changes as a dependency-ordered resource graph, refreshed until the stack is
synced.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          rootArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.String(keyLogLevel, "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.String(keyLogFormat, "text", "Log output format. Options: 'text' or 'json'.")
	pf.String(keyConfig, "", "Path to a workspace configuration file (default: stackgraph.hcl in the workspace root).")
	pf.Int(keyHealthcheckPort, 0, "Port for the HTTP health check and metrics server. 0 is disabled.")
	pf.StringP(keyOutput, "o", "text", "Scene output format. Options: 'text' or 'json'.")
	pf.String(keyCommand, "", "Planner binary (default: kusion).")

	root.AddCommand(
		c.watchCommand(),
		c.applyCommand(),
		c.destroyCommand(),
		c.compileCommand(),
		c.previewCommand(),
		c.diffCommand(),
		c.stacksCommand(),
		c.doctorCommand(),
	)
	return root
}

// rootArgs rejects anything the root command did not resolve to a
// subcommand.
func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	msg := fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())
	if suggestions := cmd.SuggestionsFor(args[0]); len(suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(suggestions, "\n\t")
	}
	return usageError(errors.New(msg))
}

// newViper builds an isolated viper instance reading STACKGRAPH_* variables,
// with dashes in keys mapped to underscores.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// watchFlags adds the flags shared by the commands that run a poll session.
func watchFlags(fs *pflag.FlagSet) {
	fs.Duration(keyInterval, 0, "Time between two poll cycles (default: 3s).")
	fs.Int(keyMaxCycles, 0, "Give up after this many cycles. 0 is unlimited.")
	fs.Bool(keyImmediate, false, "Run the first cycle without waiting for an interval.")
	fs.String(keyListen, "", "Serve the socket.io renderer endpoint on this address.")
	fs.String(keyRendererURL, "", "Push scenes to a remote socket.io renderer.")
	fs.Bool(keyExitOnClose, false, "Stop watching when the last renderer view disconnects.")
}

// appConfig merges flags and environment into a validated app.Config.
func (c *command) appConfig(cmd *cobra.Command, args []string) (*app.Config, error) {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := app.NewConfig(app.Config{
		StackPath:       path,
		ConfigPath:      c.v.GetString(keyConfig),
		LogFormat:       c.v.GetString(keyLogFormat),
		LogLevel:        c.v.GetString(keyLogLevel),
		HealthcheckPort: c.v.GetInt(keyHealthcheckPort),
		Output:          renderer.Format(c.v.GetString(keyOutput)),
		Overrides:       c.overrides(),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

// overrides returns only the settings that were given explicitly.
func (c *command) overrides() app.Overrides {
	var o app.Overrides
	if c.v.IsSet(keyCommand) && c.v.GetString(keyCommand) != "" {
		s := c.v.GetString(keyCommand)
		o.PlannerCommand = &s
	}
	if c.v.IsSet(keyInterval) {
		d := c.v.GetDuration(keyInterval)
		o.Interval = &d
	}
	if c.v.IsSet(keyMaxCycles) {
		n := c.v.GetInt(keyMaxCycles)
		o.MaxCycles = &n
	}
	if c.v.IsSet(keyImmediate) {
		b := c.v.GetBool(keyImmediate)
		o.Immediate = &b
	}
	if c.v.IsSet(keyListen) {
		s := c.v.GetString(keyListen)
		o.Listen = &s
	}
	if c.v.IsSet(keyRendererURL) {
		s := c.v.GetString(keyRendererURL)
		o.RendererURL = &s
	}
	if c.v.IsSet(keyExitOnClose) {
		b := c.v.GetBool(keyExitOnClose)
		o.ExitOnClose = &b
	}
	return o
}

// newApp builds and starts an App for one command run. The returned function
// stops it.
func (c *command) newApp(cmd *cobra.Command, args []string) (*app.App, func(), error) {
	cfg, err := c.appConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	a := app.NewApp(c.opts.Stdout, c.opts.Stderr, cfg, c.opts.Loader, c.opts.AppOptions...)
	a.Start()
	return a, func() { _ = a.Close() }, nil
}

// stackArgs accepts an optional stack path.
func stackArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usageError(fmt.Errorf("%s accepts at most one stack path, got %d", cmd.CommandPath(), len(args)))
	}
	return nil
}
