package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
	"github.com/maxwhale/SharpDevelop/msbuild"
	"github.com/maxwhale/SharpDevelop/observability"
	"github.com/maxwhale/SharpDevelop/project"
	"github.com/maxwhale/SharpDevelop/properties"
	"github.com/maxwhale/SharpDevelop/solution"
)

// projectFlags selects the project a command operates on and the active
// configuration used to evaluate its properties.
type projectFlags struct {
	Path          string
	Solution      string
	Configuration string
	Platform      string

	// solutionPath is the solution the opened project was matched to,
	// either named by Solution or found by walking up from the project.
	solutionPath string
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Path, "project", "", "The project file or directory to operate on (defaults to current directory)")
	cmd.Flags().StringVar(&f.Solution, "solution", "", "The solution the project belongs to (defaults to the nearest solution listing it; 'none' disables the search)")
	cmd.Flags().StringVarP(&f.Configuration, "configuration", "c", "", "Active configuration (defaults to the project's)")
	cmd.Flags().StringVarP(&f.Platform, "platform", "p", "", "Active platform (defaults to the project's)")
}

// resolvePath finds the project file named by the flags or positional args.
func (f *projectFlags) resolvePath(args []string) (string, error) {
	path := f.Path
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	}
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		path = cwd
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		found, err := msbuild.FindProjectFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to find project file: %w", err)
		}
		return found, nil
	}
	return path, nil
}

func (f *projectFlags) open(ctx context.Context, env *cli.Environment, args []string) (*project.Project, error) {
	path, err := f.resolvePath(args)
	if err != nil {
		return nil, err
	}

	store := msbuild.NewFileStore(env.Logger)
	p, err := store.Load(ctx, path, project.Dependencies{
		Logger:   env.Logger,
		Reparser: &logReparser{logger: env.Logger},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", path, err)
	}

	sol, err := f.findSolution(path)
	if err != nil {
		return nil, err
	}
	if sol != nil {
		f.solutionPath = sol.FilePath
		p.RaiseMinimumSolutionVersion(sol.MinimumSolutionVersion)
		sol.Activate(p)
		env.Logger.Debug("{Project} belongs to {Solution} (format {Format})", p.Name(), sol.FilePath, sol.FormatVersion)
	}

	if f.Configuration != "" || f.Platform != "" {
		active := p.ActiveConfiguration()
		config, platform := f.Configuration, f.Platform
		if config == "" {
			config = active.Configuration
		}
		if platform == "" {
			platform = active.Platform
		}
		if err := p.SetActiveConfiguration(config, platform); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (f *projectFlags) findSolution(projectPath string) (*solution.Solution, error) {
	switch f.Solution {
	case "none":
		return nil, nil
	case "":
		return solution.FindOwner(projectPath)
	}
	return solution.Parse(f.Solution)
}

// logReparser records reparse requests. The CLI has no code model to refresh.
type logReparser struct {
	logger observability.Logger
}

func (r *logReparser) Reparse(p *project.Project, referencesChanged, codeChanged bool) {
	r.logger.Debug("Reparse of {Project} requested ({Trigger})", p.Name(), observability.ReparseTrigger(referencesChanged, codeChanged))
}

// printChanges writes property change events at detailed verbosity.
func printChanges(env *cli.Environment, p *project.Project) (unsubscribe func()) {
	return p.Subscribe(func(ev project.PropertyChangedEvent) {
		scope := scopeLabel(ev.Configuration, ev.Platform)
		if ev.Removed {
			env.Console.Detail("  - %s%s (was %q)", ev.Name, scope, ev.OldValue)
			return
		}
		env.Console.Detail("  %s%s: %q -> %q", ev.Name, scope, ev.OldValue, ev.NewValue)
	})
}

func scopeLabel(configuration, platform string) string {
	switch {
	case configuration != "" && platform != "":
		return " [" + configuration + "|" + platform + "]"
	case configuration != "":
		return " [" + configuration + "]"
	case platform != "":
		return " [|" + platform + "]"
	}
	return ""
}

func parseLocation(s string) (properties.StorageLocation, error) {
	loc, ok := properties.ParseStorageLocation(s)
	if !ok {
		return properties.Base, fmt.Errorf("invalid location %q (base, config, platform, both)", s)
	}
	return loc, nil
}
