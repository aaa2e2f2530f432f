package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
	"github.com/maxwhale/SharpDevelop/msbuild"
	"github.com/maxwhale/SharpDevelop/project"
	"github.com/maxwhale/SharpDevelop/solution"
)

// NewOptions holds the configuration for the new command.
type NewOptions struct {
	Dir        string
	Framework  string
	OutputType string
	Platform   string
	Language   string
	Solution   string
}

// NewNewCommand creates the new command.
func NewNewCommand(env *cli.Environment) *cobra.Command {
	opts := &NewOptions{}

	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create a project file",
		Long: `Create a C# or VB.NET project file with Debug and Release configurations.

Examples:
  sdproj new Demo
  sdproj new Demo --framework net40 --output-type Library --language vb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(env, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Directory to create the project in (defaults to ./NAME)")
	cmd.Flags().StringVar(&opts.Framework, "framework", project.DefaultTargetFramework, "Target framework ID")
	cmd.Flags().StringVar(&opts.OutputType, "output-type", "Exe", "Output type: Exe, WinExe, Library or Module")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "Initial platform (defaults to the settings file's default platform)")
	cmd.Flags().StringVar(&opts.Language, "language", "cs", "Project language: cs or vb")
	cmd.Flags().StringVar(&opts.Solution, "solution", "", "Solution whose format version limits the compiler")
	return cmd
}

func runNew(env *cli.Environment, opts *NewOptions, name string) error {
	var kind *project.Kind
	switch opts.Language {
	case "cs", "c#", "csharp":
		kind = project.CSharp()
	case "vb", "vbnet":
		kind = project.VBNet()
	default:
		return fmt.Errorf("invalid language %q (cs, vb)", opts.Language)
	}

	dir := opts.Dir
	if dir == "" {
		dir = name
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	fileName := filepath.Join(dir, name+kind.Extension)
	if _, err := os.Stat(fileName); err == nil {
		return fmt.Errorf("project file already exists: %s", fileName)
	}

	minimum := 0
	if opts.Solution != "" {
		sol, err := solution.Parse(opts.Solution)
		if err != nil {
			return err
		}
		minimum = sol.MinimumSolutionVersion
	}

	platform := opts.Platform
	if platform == "" {
		platform = env.Settings.DefaultPlatform
	}

	store := msbuild.NewFileStore(env.Logger)
	p, err := project.New(project.CreateInfo{
		ProjectName:            name,
		FileName:               fileName,
		OutputType:             opts.OutputType,
		TargetFramework:        opts.Framework,
		MinimumSolutionVersion: minimum,
		Platform:               platform,
		Kind:                   kind,
	}, project.Dependencies{Saver: store, Logger: env.Logger})
	if err != nil {
		return err
	}
	if _, err := p.AddReference("System", ""); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := p.Save(); err != nil {
		return err
	}
	env.Console.Success("Created %s project '%s' at %s", kind.Name, name, fileName)
	return nil
}
