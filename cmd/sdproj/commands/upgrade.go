package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
	"github.com/maxwhale/SharpDevelop/cmd/sdproj/output"
	"github.com/maxwhale/SharpDevelop/frameworks"
	"github.com/maxwhale/SharpDevelop/project"
	"github.com/maxwhale/SharpDevelop/solution"
	"github.com/maxwhale/SharpDevelop/upgrade"
)

// UpgradeOptions holds the configuration for the upgrade command.
type UpgradeOptions struct {
	projectFlags
	Tools     string
	Framework string
	DryRun    bool
	Format    string
}

// NewUpgradeCommand creates the upgrade command.
func NewUpgradeCommand(env *cli.Environment) *cobra.Command {
	opts := &UpgradeOptions{}

	cmd := &cobra.Command{
		Use:   "upgrade [PROJECT]",
		Short: "Change a project's compiler version and target framework",
		Long: `Move a project to another compiler version (ToolsVersion) and/or target
framework. References required by the new framework are added and
references the old framework needed are removed when downgrading.

The format version of the project's solution (--solution, or the nearest
solution listing the project) is raised to match the chosen compiler.

A --tools version the project cannot use (older than its solution allows)
is an error here. Project.Upgrade would skip it silently and still apply
--framework; the command refuses so a typo never half-applies.

Examples:
  sdproj upgrade --tools 4.0 --framework net40
  sdproj upgrade --framework net35 --dry-run
  sdproj upgrade App.csproj --solution App.sln --tools 4.0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgrade(cmd, env, opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Tools, "tools", "", "Target compiler ToolsVersion (e.g. 3.5, 4.0)")
	cmd.Flags().StringVar(&opts.Framework, "framework", "", "Target framework ID (see 'sdproj frameworks')")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print the planned changes without applying them")
	cmd.Flags().StringVar(&opts.Format, "format", "console", "Output format: console or json")
	return cmd
}

func runUpgrade(cmd *cobra.Command, env *cli.Environment, opts *UpgradeOptions, args []string) error {
	start := time.Now()
	if opts.Tools == "" && opts.Framework == "" {
		return fmt.Errorf("nothing to do: specify --tools and/or --framework")
	}
	if opts.Format != "console" && opts.Format != "json" {
		return fmt.Errorf("invalid format %q (console, json)", opts.Format)
	}

	p, err := opts.open(cmd.Context(), env, args)
	if err != nil {
		return err
	}
	catalog := p.Catalog()

	var newVersion *frameworks.CompilerVersion
	if opts.Tools != "" {
		cv, ok := catalog.CompilerVersion(opts.Tools)
		if !ok {
			return fmt.Errorf("unknown compiler version %q", opts.Tools)
		}
		// stricter than the engine, which ignores unavailable versions
		if !frameworks.ContainsCompilerVersion(p.AvailableCompilerVersions(), cv) {
			return fmt.Errorf("compiler %s is not available for '%s' (minimum solution version %d)", cv, p.Name(), p.MinimumSolutionVersion())
		}
		newVersion = &cv
	}

	var newFramework *frameworks.TargetFramework
	if opts.Framework != "" {
		fw, ok := catalog.ByID(opts.Framework)
		if !ok {
			return fmt.Errorf("unknown target framework %q", opts.Framework)
		}
		newFramework = fw
	}

	if opts.DryRun {
		plan := upgrade.ComputePlan(upgrade.PlanInput{
			OldFramework:              p.TargetFramework(),
			NewFramework:              newFramework,
			NewCompilerVersion:        newVersion,
			AvailableCompilerVersions: p.AvailableCompilerVersions(),
			References:                p.References(),
			Catalog:                   catalog,
		})
		printPlan(env, p, plan)
		return nil
	}

	defer printChanges(env, p)()
	result, err := p.Upgrade(cmd.Context(), newVersion, newFramework)
	if err != nil {
		return err
	}

	if opts.solutionPath != "" {
		raised, err := solution.UpdateFormatVersion(opts.solutionPath, p.MinimumSolutionVersion())
		if err != nil {
			return err
		}
		if raised {
			env.Console.Info("Raised '%s' to format version %d", opts.solutionPath, p.MinimumSolutionVersion())
		}
	}

	if opts.Format == "json" {
		return output.WriteJSON(env.Console.Out(), upgradeOutput(p, result, start))
	}
	printResult(env, p, result)
	return nil
}

func printPlan(env *cli.Environment, p *project.Project, plan upgrade.Plan) {
	c := env.Console
	if plan.IsEmpty() {
		c.Info("'%s' is already up to date", p.Name())
		return
	}
	c.Header("Planned changes for '%s'", p.Name())
	for _, w := range plan.Properties {
		if w.Remove {
			c.Printf("  remove %s\n", w.Name)
			continue
		}
		c.Printf("  set %s = %s\n", w.Name, w.Value)
	}
	for _, a := range plan.References {
		c.Printf("  %s reference %s (%s)\n", a.Kind, a.Include, a.Rule)
	}
}

func printResult(env *cli.Environment, p *project.Project, result *upgrade.Result) {
	c := env.Console
	if len(result.PropertyChanges) == 0 && !result.ReferencesChanged() {
		c.Info("'%s' is already up to date", p.Name())
		return
	}
	for _, ch := range result.PropertyChanges {
		if ch.Removed {
			c.Printf("  %s: removed\n", ch.Name)
			continue
		}
		c.Printf("  %s: %s -> %s\n", ch.Name, orNone(ch.OldValue), ch.NewValue)
	}
	for _, r := range result.AddedReferences {
		c.Added("%s", r)
	}
	for _, r := range result.RemovedReferences {
		c.Removed("%s", r)
	}
	c.Success("Upgraded '%s'", p.Name())
}

func upgradeOutput(p *project.Project, result *upgrade.Result, start time.Time) *output.UpgradeOutput {
	out := &output.UpgradeOutput{
		SchemaVersion: output.CurrentSchemaVersion,
		Project:       p.Name(),
		Properties:    []output.PropertyChange{},
		Added:         append([]string{}, result.AddedReferences...),
		Removed:       append([]string{}, result.RemovedReferences...),
	}
	for _, ch := range result.PropertyChanges {
		out.Properties = append(out.Properties, output.PropertyChange{
			Name:     ch.Name,
			OldValue: ch.OldValue,
			NewValue: ch.NewValue,
		})
	}
	out.ElapsedMs = output.MeasureElapsed(start)
	return out
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
