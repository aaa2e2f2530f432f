// cmd/sdproj/cli/app.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/config"
	"github.com/maxwhale/SharpDevelop/cmd/sdproj/output"
	"github.com/maxwhale/SharpDevelop/observability"
)

// Environment is the state shared by all commands. It is populated before
// a command runs.
type Environment struct {
	Console  *output.Console
	Settings config.Settings
	Logger   observability.Logger

	// LogOutput receives log events. Defaults to stderr.
	LogOutput io.Writer

	dumpMetrics bool
	tracer      *sdktrace.TracerProvider
}

// NewEnvironment returns an environment with default settings and a
// discarding logger, suitable for tests.
func NewEnvironment(console *output.Console) *Environment {
	return &Environment{
		Console:   console,
		Settings:  config.Defaults(),
		Logger:    observability.NewNullLogger(),
		LogOutput: os.Stderr,
	}
}

// Close flushes metrics and spans.
func (e *Environment) Close(ctx context.Context) error {
	var errs []error
	if e.dumpMetrics {
		errs = append(errs, observability.WriteMetrics(e.Console.Out(), prometheus.DefaultGatherer))
	}
	if e.tracer != nil {
		errs = append(errs, observability.ShutdownTracing(ctx, e.tracer))
		e.tracer = nil
	}
	return errors.Join(errs...)
}

// Env is the global environment for CLI commands
var Env = NewEnvironment(output.DefaultConsole())

var (
	settingsFile string
	verbosity    string
	logLevel     string
	traceFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "sdproj",
	Short: "Inspect and upgrade MSBuild projects",
	Long: `sdproj reads C# and VB.NET project files, resolves their build properties
for a configuration and platform, and moves them between target frameworks
and compiler versions.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "Settings file to use (defaults to ./sdproj.yaml, then ~/.sdproj/settings.yaml)")
	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", "normal", "Display verbosity (quiet, normal, detailed, diagnostic)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (verbose, debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&traceFlag, "trace", "", "Span exporter (none, stdout, otlp)")
	rootCmd.PersistentFlags().BoolVar(&Env.dumpMetrics, "dump-metrics", false, "Print metrics in Prometheus text format on exit")
}

func setup(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(settingsFile, config.DefaultLocations())
	if err != nil {
		return err
	}
	if logLevel != "" {
		lvl, err := observability.ParseLogLevel(logLevel)
		if err != nil {
			return err
		}
		settings.LogLevel = lvl.String()
	}
	if traceFlag != "" {
		settings.Tracing.Exporter = traceFlag
	}
	v, err := output.ParseVerbosity(verbosity)
	if err != nil {
		return err
	}

	Env.Settings = settings
	Env.Console.SetVerbosity(v)
	Env.Logger = observability.NewLogger(Env.LogOutput, settings.Level())
	if settings.Source != "" {
		Env.Logger.Debug("Loaded settings from {Path}", settings.Source)
	}

	tp, err := observability.SetupTracing(cmd.Context(), settings.TracerConfig(Version))
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	Env.tracer = tp
	return nil
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := Env.Close(context.Background()); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// AddCommand adds a command to the root command
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Root returns the root command
func Root() *cobra.Command {
	return rootCmd
}
