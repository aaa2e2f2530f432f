// cmd/sdproj/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/cli"
	"github.com/maxwhale/SharpDevelop/cmd/sdproj/commands"
)

// Version information (set via ldflags during build)
var (
	version = "0.0.0-dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date
	cli.BuiltBy = builtBy

	cli.SetupVersion()

	env := cli.Env
	cli.AddCommand(commands.NewVersionCommand(env))
	cli.AddCommand(commands.NewShowCommand(env))
	cli.AddCommand(commands.NewGetCommand(env))
	cli.AddCommand(commands.NewSetCommand(env))
	cli.AddCommand(commands.NewRefsCommand(env))
	cli.AddCommand(commands.NewConfigsCommand(env))
	cli.AddCommand(commands.NewUpgradeCommand(env))
	cli.AddCommand(commands.NewStartInfoCommand(env))
	cli.AddCommand(commands.NewFrameworksCommand(env))
	cli.AddCommand(commands.NewNewCommand(env))
	cli.AddCommand(commands.NewWatchCommand(env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		// SilenceErrors is set on the root command
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
