package cli

import (
	"github.com/specialistvlad/stackgraph/internal/app"
	"github.com/spf13/cobra"
)

// op is one app operation run against the configured stack.
type op func(cmd *cobra.Command, a *app.App) error

func (c *command) stackCommand(use, short string, run op) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [STACK]",
		Short: short,
		Args:  stackArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, stop, err := c.newApp(cmd, args)
			if err != nil {
				return err
			}
			defer stop()
			return run(cmd, a)
		},
	}
}

func (c *command) watchCommand() *cobra.Command {
	cmd := c.stackCommand("watch", "Poll the stack and render its resource graph until it is synced",
		func(cmd *cobra.Command, a *app.App) error {
			_, err := a.Watch(cmd.Context())
			return err
		})
	watchFlags(cmd.Flags())
	return cmd
}

func (c *command) applyCommand() *cobra.Command {
	cmd := c.stackCommand("apply", "Apply the stack and watch it converge",
		func(cmd *cobra.Command, a *app.App) error {
			_, err := a.Apply(cmd.Context())
			return err
		})
	watchFlags(cmd.Flags())
	return cmd
}

func (c *command) destroyCommand() *cobra.Command {
	return c.stackCommand("destroy", "Destroy every resource of the stack",
		func(cmd *cobra.Command, a *app.App) error {
			return a.Destroy(cmd.Context())
		})
}

func (c *command) compileCommand() *cobra.Command {
	return c.stackCommand("compile", "Compile the stack into its resource spec",
		func(cmd *cobra.Command, a *app.App) error {
			return a.Compile(cmd.Context())
		})
}

func (c *command) previewCommand() *cobra.Command {
	return c.stackCommand("preview", "Run a single poll cycle and print the scene",
		func(cmd *cobra.Command, a *app.App) error {
			_, err := a.Preview(cmd.Context())
			return err
		})
}

func (c *command) diffCommand() *cobra.Command {
	return c.stackCommand("diff", "Print the live and the desired state of every resource as YAML",
		func(cmd *cobra.Command, a *app.App) error {
			_, err := a.Diff(cmd.Context())
			return err
		})
}

func (c *command) doctorCommand() *cobra.Command {
	cmd := c.stackCommand("doctor", "Check the planner installation against the workspace",
		func(cmd *cobra.Command, a *app.App) error {
			return a.Doctor(cmd.Context())
		})
	cmd.Use = "doctor [PATH]"
	return cmd
}

func (c *command) stacksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stacks [ROOT]",
		Short: "List every stack below a directory",
		Args:  stackArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) > 0 {
				root = args[0]
			}
			a, stop, err := c.newApp(cmd, nil)
			if err != nil {
				return err
			}
			defer stop()
			_, err = a.Stacks(cmd.Context(), root)
			return err
		},
	}
}
