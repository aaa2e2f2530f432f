package commands

import (
	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
)

// NewVersionCommand creates the version command
func NewVersionCommand(env *cli.Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  `Display detailed version information including commit, build date, and builder.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env.Console.Println(cli.GetFullVersion())
			return nil
		},
	}

	return cmd
}
