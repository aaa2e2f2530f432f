package commands

import (
	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
)

// NewStartInfoCommand creates the start-info command.
func NewStartInfoCommand(env *cli.Environment) *cobra.Command {
	opts := &projectFlags{}

	cmd := &cobra.Command{
		Use:   "start-info [PROJECT]",
		Short: "Resolve what starting the project would launch",
		Long: `Resolve the start action of the active configuration into the program,
arguments and working directory a debugger would launch, or the URL it
would open. The program and working directory must exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(cmd.Context(), env, args)
			if err != nil {
				return err
			}
			info, err := p.StartInfo()
			if err != nil {
				return err
			}

			c := env.Console
			c.Printf("Action:            %s\n", info.Action)
			if info.URL != "" {
				c.Printf("URL:               %s\n", info.URL)
				return nil
			}
			c.Printf("Program:           %s\n", info.FileName)
			if info.Arguments != "" {
				c.Printf("Arguments:         %s\n", info.Arguments)
			}
			c.Printf("Working directory: %s\n", info.WorkingDirectory)
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}
