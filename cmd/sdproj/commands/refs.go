package commands

import (
	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
	"github.com/maxwhale/SharpDevelop/cmd/sdproj/output"
)

// NewRefsCommand creates the refs parent command.
func NewRefsCommand(env *cli.Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List, add or remove assembly references",
		Long: `Manage the assembly references of a project. Reference names are
compared case-insensitively.`,
	}

	cmd.AddCommand(newRefsListCommand(env))
	cmd.AddCommand(newRefsAddCommand(env))
	cmd.AddCommand(newRefsRemoveCommand(env))
	return cmd
}

func newRefsListCommand(env *cli.Environment) *cobra.Command {
	opts := &projectFlags{}
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assembly references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd.Context(), env, nil)
			if err != nil {
				return err
			}
			refs := p.References().Items()
			if format == "json" {
				out := make([]output.Reference, 0, len(refs))
				for _, r := range refs {
					out = append(out, output.Reference{Include: r.Include, Metadata: r.Metadata})
				}
				return output.WriteJSON(env.Console.Out(), out)
			}
			if len(refs) == 0 {
				env.Console.Info("No references found in '%s'", p.Name())
				return nil
			}
			for _, r := range refs {
				env.Console.Println(r.Include)
				for _, k := range r.MetadataKeys() {
					env.Console.Detail("    %s = %s", k, r.Metadata[k])
				}
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&format, "format", "console", "Output format: console or json")
	return cmd
}

func newRefsAddCommand(env *cli.Environment) *cobra.Command {
	opts := &projectFlags{}
	var framework string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an assembly reference",
		Long: `Add an assembly reference unless one with the same name exists.

Examples:
  sdproj refs add System.Core --framework 3.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd.Context(), env, nil)
			if err != nil {
				return err
			}
			added, err := p.AddReference(args[0], framework)
			if err != nil {
				return err
			}
			if !added {
				env.Console.Info("Reference '%s' already exists in '%s'", args[0], p.Name())
				return nil
			}
			if err := p.Save(); err != nil {
				return err
			}
			env.Console.Success("Added reference '%s' to '%s'", args[0], p.Name())
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&framework, "framework", "", "RequiredTargetFramework metadata for the reference")
	return cmd
}

func newRefsRemoveCommand(env *cli.Environment) *cobra.Command {
	opts := &projectFlags{}

	cmd := &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove an assembly reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd.Context(), env, nil)
			if err != nil {
				return err
			}
			removed, err := p.RemoveReference(args[0])
			if err != nil {
				return err
			}
			if !removed {
				env.Console.Warning("Reference '%s' not found in '%s'", args[0], p.Name())
				return nil
			}
			if err := p.Save(); err != nil {
				return err
			}
			env.Console.Success("Removed reference '%s' from '%s'", args[0], p.Name())
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}
