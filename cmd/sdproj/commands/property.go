package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
)

// NewGetCommand creates the get command.
func NewGetCommand(env *cli.Environment) *cobra.Command {
	opts := &projectFlags{}
	var explain bool

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print the evaluated value of a property",
		Long: `Print the value a property evaluates to for the active configuration and
platform. The most specific scope holding the property wins:
configuration and platform, then configuration, then platform, then base.

Examples:
  sdproj get OutputPath
  sdproj get OutputPath -c Release --explain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd.Context(), env, nil)
			if err != nil {
				return err
			}
			e, ok := p.LookupProperty(args[0])
			if !ok {
				return fmt.Errorf("property %s is not set for %s", args[0], p.ActiveConfiguration())
			}
			if explain {
				env.Console.Printf("%s (%s%s)\n", e.Value, e.Location, scopeLabel(e.Configuration, e.Platform))
				return nil
			}
			env.Console.Println(e.Value)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&explain, "explain", false, "Also print the scope the value comes from")
	return cmd
}

// NewSetCommand creates the set command.
func NewSetCommand(env *cli.Environment) *cobra.Command {
	opts := &projectFlags{}
	var location string
	var remove bool

	cmd := &cobra.Command{
		Use:   "set NAME [VALUE]",
		Short: "Write or remove a property and save the project",
		Long: `Write a property at a storage location and save the project. The location
selects the scope relative to the active configuration and platform:
base, config, platform or both.

Examples:
  sdproj set WarningLevel 3
  sdproj set OutputPath 'out\Release\' -c Release --location config
  sdproj set DefineConstants --remove --location config`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !remove && len(args) != 2 {
				return fmt.Errorf("a value is required unless --remove is given")
			}
			loc, err := parseLocation(location)
			if err != nil {
				return err
			}
			p, err := opts.open(cmd.Context(), env, nil)
			if err != nil {
				return err
			}
			defer printChanges(env, p)()

			if remove {
				err = p.RemoveProperty(args[0], loc)
			} else {
				err = p.SetProperty(args[0], args[1], loc)
			}
			if err != nil {
				return err
			}
			if err := p.Save(); err != nil {
				return err
			}
			env.Console.Success("Updated %s in '%s'", args[0], p.Name())
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&location, "location", "base", "Storage location: base, config, platform or both")
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the property at the location instead of writing it")
	return cmd
}
