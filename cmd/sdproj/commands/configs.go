package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
)

// NewConfigsCommand creates the configs parent command.
func NewConfigsCommand(env *cli.Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List or rename configurations and platforms",
	}

	cmd.AddCommand(newConfigsListCommand(env))
	cmd.AddCommand(newConfigsRenameCommand(env))
	return cmd
}

func newConfigsListCommand(env *cli.Environment) *cobra.Command {
	opts := &projectFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the configuration and platform combinations of a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd.Context(), env, nil)
			if err != nil {
				return err
			}
			active := p.ActiveConfiguration()
			for _, pair := range p.Matrix().Pairs() {
				marker := "  "
				if pair == active {
					marker = "* "
				}
				env.Console.Println(marker + pair.String())
			}
			env.Console.Detail("Configurations: %v", p.Configurations())
			env.Console.Detail("Platforms:      %v", p.Platforms())
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}

func newConfigsRenameCommand(env *cli.Environment) *cobra.Command {
	opts := &projectFlags{}
	var dimension string

	cmd := &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a configuration or platform and save the project",
		Long: `Rename a configuration, or a platform with --dimension platform. Every
property stored for the old name moves to the new one.

Examples:
  sdproj configs rename Release Ship
  sdproj configs rename x86 Win32 --dimension platform`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd.Context(), env, nil)
			if err != nil {
				return err
			}
			switch dimension {
			case "configuration":
				err = p.RenameConfiguration(args[0], args[1])
			case "platform":
				err = p.RenamePlatform(args[0], args[1])
			default:
				return fmt.Errorf("invalid dimension %q (configuration, platform)", dimension)
			}
			if err != nil {
				return fmt.Errorf("failed to rename %s: %w", dimension, err)
			}
			if err := p.Save(); err != nil {
				return err
			}
			env.Console.Success("Renamed %s '%s' to '%s'", dimension, args[0], args[1])
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&dimension, "dimension", "configuration", "What to rename: configuration or platform")
	return cmd
}
