package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
	"github.com/maxwhale/SharpDevelop/cmd/sdproj/output"
	"github.com/maxwhale/SharpDevelop/project"
	"github.com/maxwhale/SharpDevelop/upgrade"
)

// ShowOptions holds the configuration for the show command.
type ShowOptions struct {
	projectFlags
	Format string
}

// NewShowCommand creates the show command.
func NewShowCommand(env *cli.Environment) *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show [PROJECT]",
		Short: "Show a project's framework, properties and references",
		Long: `Show the target framework, tools version, stored properties and references
of a project file.

Examples:
  sdproj show
  sdproj show src/App/App.csproj --configuration Release
  sdproj show --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, env, opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Format, "format", "console", "Output format: console or json")
	return cmd
}

func runShow(cmd *cobra.Command, env *cli.Environment, opts *ShowOptions, args []string) error {
	start := time.Now()
	p, err := opts.open(cmd.Context(), env, args)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "json":
		return output.WriteJSON(env.Console.Out(), projectOutput(p, start))
	case "console", "":
	default:
		return fmt.Errorf("invalid format %q (console, json)", opts.Format)
	}

	c := env.Console
	active := p.ActiveConfiguration()
	c.Header("Project '%s' (%s)", p.Name(), filepath.Base(p.FileName()))
	if p.ReadOnly() {
		c.Warning("project file is read-only")
	}
	c.Printf("  Active configuration: %s\n", active)
	if fw := p.TargetFramework(); fw != nil {
		c.Printf("  Target framework:     %s\n", fw.DisplayName)
	} else {
		v, _ := p.GetProperty(upgrade.PropertyTargetFrameworkVersion)
		c.Printf("  Target framework:     %s (unknown)\n", v)
	}
	c.Printf("  Tools version:        %s\n", p.ToolsVersion())
	c.Printf("  Output type:          %s\n", p.OutputType())
	c.Printf("  Output assembly:      %s\n", p.OutputAssemblyFullPath())
	c.Println()

	c.Header("Properties")
	for _, e := range p.Properties().Entries() {
		c.Printf("  %s%s = %s\n", e.Name, scopeLabel(e.Configuration, e.Platform), e.Value)
	}
	c.Println()

	c.Header("References")
	refs := p.References().Items()
	if len(refs) == 0 {
		c.Println("  [No references found]")
	}
	for _, r := range refs {
		if fw := r.RequiredTargetFramework(); fw != "" {
			c.Printf("  %s (requires %s)\n", r.Include, fw)
		} else {
			c.Printf("  %s\n", r.Include)
		}
	}
	return nil
}

func projectOutput(p *project.Project, start time.Time) *output.ProjectOutput {
	out := &output.ProjectOutput{
		SchemaVersion:          output.CurrentSchemaVersion,
		Project:                p.Name(),
		Path:                   p.FileName(),
		ReadOnly:               p.ReadOnly(),
		ActiveConfiguration:    p.ActiveConfiguration().String(),
		ToolsVersion:           p.ToolsVersion(),
		MinimumSolutionVersion: p.MinimumSolutionVersion(),
		Properties:             []output.PropertyValue{},
		References:             []output.Reference{},
	}
	if fw := p.TargetFramework(); fw != nil {
		out.TargetFramework = fw.ID
	}
	for _, e := range p.Properties().Entries() {
		out.Properties = append(out.Properties, output.PropertyValue{
			Name:          e.Name,
			Value:         e.Value,
			Configuration: e.Configuration,
			Platform:      e.Platform,
			Location:      e.Location.String(),
		})
	}
	for _, r := range p.References().Items() {
		out.References = append(out.References, output.Reference{Include: r.Include, Metadata: r.Metadata})
	}
	out.ElapsedMs = output.MeasureElapsed(start)
	return out
}
