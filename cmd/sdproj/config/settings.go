// Package config loads sdproj settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/maxwhale/SharpDevelop/configs"
	"github.com/maxwhale/SharpDevelop/observability"
)

// SettingsFileName is the settings file looked up in the current directory.
const SettingsFileName = "sdproj.yaml"

// Environment variables that override file settings.
const (
	EnvLogLevel        = "SDPROJ_LOG_LEVEL"
	EnvTraceExporter   = "SDPROJ_TRACE_EXPORTER"
	EnvOTLPEndpoint    = "SDPROJ_OTLP_ENDPOINT"
	EnvDefaultPlatform = "SDPROJ_DEFAULT_PLATFORM"
)

// Settings holds the CLI settings.
type Settings struct {
	LogLevel        string  `yaml:"log_level" validate:"oneof=verbose debug info warn error fatal"`
	DefaultPlatform string  `yaml:"default_platform" validate:"required,excludesall=0x7C"`
	Tracing         Tracing `yaml:"tracing"`

	// Source is the file the settings were read from, if any.
	Source string `yaml:"-"`
}

// Tracing selects the span exporter.
type Tracing struct {
	Exporter     string  `yaml:"exporter" validate:"oneof=none stdout otlp"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" validate:"required_if=Exporter otlp"`
	SamplingRate float64 `yaml:"sampling_rate" validate:"gte=0,lte=1"`
}

var settingsValidate = validator.New()

// Defaults returns the built-in settings.
func Defaults() Settings {
	tc := observability.DefaultTracerConfig()
	return Settings{
		LogLevel:        observability.WarnLevel.String(),
		DefaultPlatform: configs.DefaultPlatform,
		Tracing: Tracing{
			Exporter:     tc.ExporterType,
			OTLPEndpoint: tc.OTLPEndpoint,
			SamplingRate: tc.SamplingRate,
		},
	}
}

// DefaultLocations returns the settings files to search in precedence order.
func DefaultLocations() []string {
	var locations []string
	if cwd, err := os.Getwd(); err == nil {
		locations = append(locations, filepath.Join(cwd, SettingsFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".sdproj", "settings.yaml"))
	}
	return locations
}

// Load reads the first existing file of locations over the defaults, then
// applies environment overrides and validates the result. An explicit path
// that does not exist is an error; missing default locations are skipped.
func Load(explicit string, locations []string) (Settings, error) {
	s := Defaults()

	if explicit != "" {
		if err := readFile(explicit, &s); err != nil {
			return Settings{}, err
		}
	} else {
		for _, loc := range locations {
			err := readFile(loc, &s)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return Settings{}, err
			}
			break
		}
	}

	applyEnv(&s)
	if lvl, err := observability.ParseLogLevel(s.LogLevel); err == nil {
		s.LogLevel = lvl.String()
	}
	s.DefaultPlatform = configs.NormalizePlatform(s.DefaultPlatform)

	if err := settingsValidate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func readFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	s.Source = path
	return nil
}

func applyEnv(s *Settings) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvTraceExporter); v != "" {
		s.Tracing.Exporter = v
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" {
		s.Tracing.OTLPEndpoint = v
	}
	if v := os.Getenv(EnvDefaultPlatform); v != "" {
		s.DefaultPlatform = v
	}
}

// Level returns the parsed log level.
func (s Settings) Level() observability.LogLevel {
	lvl, err := observability.ParseLogLevel(s.LogLevel)
	if err != nil {
		return observability.WarnLevel
	}
	return lvl
}

// TracerConfig converts the tracing settings.
func (s Settings) TracerConfig(version string) observability.TracerConfig {
	tc := observability.DefaultTracerConfig()
	tc.ServiceVersion = version
	tc.ExporterType = s.Tracing.Exporter
	tc.OTLPEndpoint = s.Tracing.OTLPEndpoint
	tc.SamplingRate = s.Tracing.SamplingRate
	return tc
}
