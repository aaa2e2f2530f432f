package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
	"github.com/maxwhale/SharpDevelop/msbuild"
	"github.com/maxwhale/SharpDevelop/observability"
	"github.com/maxwhale/SharpDevelop/project"
)

// WatchOptions holds the configuration for the watch command.
type WatchOptions struct {
	projectFlags
	MetricsAddr string
	Debounce    time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(env *cli.Environment) *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [PROJECT...]",
		Short: "Reload projects when their files change on disk",
		Long: `Watch project files and reload them after external edits. Each reload
prints the project's framework and reference count. Runs until interrupted.

Examples:
  sdproj watch
  sdproj watch src/App/App.csproj src/Lib/Lib.csproj --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), env, opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", msbuild.DefaultDebounce, "Quiet period before a change is reloaded")
	return cmd
}

func runWatch(ctx context.Context, env *cli.Environment, opts *WatchOptions, args []string) error {
	if len(args) == 0 {
		args = []string{""}
	}

	w, err := msbuild.NewWatcher(env.Logger, opts.Debounce)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, arg := range args {
		p, err := opts.open(ctx, env, []string{arg})
		if err != nil {
			return err
		}
		if err := w.Add(p.FileName()); err != nil {
			return err
		}
		printWatched(env, p, "Watching")
	}

	if opts.MetricsAddr != "" {
		go func() {
			if err := observability.StartMetricsServer(opts.MetricsAddr); err != nil {
				env.Logger.Error("Metrics server on {Address} stopped: {Error}", opts.MetricsAddr, err)
			}
		}()
		env.Console.Info("Serving metrics on %s/metrics", opts.MetricsAddr)
	}

	err = w.Run(ctx, func(c msbuild.Change) {
		if c.Op == msbuild.ChangeRemove || c.Op == msbuild.ChangeRename {
			env.Console.Warning("%s was %sd", c.Path, c.Op)
			return
		}
		p, err := opts.open(ctx, env, []string{c.Path})
		if err != nil {
			env.Console.Error("%v", err)
			return
		}
		printWatched(env, p, "Reloaded")
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printWatched(env *cli.Environment, p *project.Project, verb string) {
	framework := "unknown framework"
	if fw := p.TargetFramework(); fw != nil {
		framework = fw.DisplayName
	}
	env.Console.Info("%s '%s': %s, %d references", verb, p.Name(), framework, p.References().Len())
}
