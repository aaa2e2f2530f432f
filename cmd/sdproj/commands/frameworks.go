package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
	"github.com/maxwhale/SharpDevelop/cmd/sdproj/output"
	"github.com/maxwhale/SharpDevelop/frameworks"
)

// NewFrameworksCommand creates the frameworks command.
func NewFrameworksCommand(env *cli.Environment) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "frameworks",
		Short: "List the target frameworks and the compilers that support them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := frameworks.Default()
			out := frameworkOutputs(catalog)

			switch format {
			case "json":
				return output.WriteJSON(env.Console.Out(), out)
			case "console", "":
			default:
				return fmt.Errorf("invalid format %q (console, json)", format)
			}

			env.Console.Header("Target frameworks")
			for _, fw := range out {
				env.Console.Printf("  %-12s %-40s %s\n", fw.ID, fw.DisplayName, strings.Join(fw.Compilers, ", "))
			}
			env.Console.Println()
			env.Console.Header("Compiler versions")
			for _, cv := range catalog.CompilerVersions() {
				env.Console.Printf("  %-6s %-24s solution format %d\n", cv.ToolsVersion(), cv.Label, cv.SolutionVersion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "console", "Output format: console or json")
	return cmd
}

func frameworkOutputs(catalog *frameworks.Catalog) []output.FrameworkOutput {
	var out []output.FrameworkOutput
	for _, fw := range catalog.Frameworks() {
		entry := output.FrameworkOutput{
			ID:          fw.ID,
			Name:        fw.Name,
			Profile:     fw.Profile,
			DisplayName: fw.DisplayName,
			Compilers:   []string{},
		}
		for _, cv := range catalog.CompilerVersions() {
			if cv.Supports(fw) {
				entry.Compilers = append(entry.Compilers, cv.ToolsVersion())
			}
		}
		out = append(out, entry)
	}
	return out
}
