package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwhale/SharpDevelop/observability"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvLogLevel, EnvTraceExporter, EnvOTLPEndpoint, EnvDefaultPlatform} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	s, err := Load("", []string{filepath.Join(t.TempDir(), "missing.yaml")})
	require.NoError(t, err)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "AnyCPU", s.DefaultPlatform)
	assert.Equal(t, observability.ExporterNone, s.Tracing.Exporter)
	assert.Empty(t, s.Source)
	assert.Equal(t, observability.WarnLevel, s.Level())
}

func TestLoad_FirstExistingFileWins(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(first, []byte("log_level: debug\ndefault_platform: Any CPU\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("log_level: error\n"), 0o644))

	s, err := Load("", []string{filepath.Join(dir, "missing.yaml"), first, second})
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "AnyCPU", s.DefaultPlatform)
	assert.Equal(t, first, s.Source)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "information")
	t.Setenv(EnvTraceExporter, "otlp")
	t.Setenv(EnvOTLPEndpoint, "collector:4317")
	t.Setenv(EnvDefaultPlatform, "x86")

	s, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "x86", s.DefaultPlatform)

	tc := s.TracerConfig("1.2.3")
	assert.Equal(t, observability.ExporterOTLP, tc.ExporterType)
	assert.Equal(t, "collector:4317", tc.OTLPEndpoint)
	assert.Equal(t, "1.2.3", tc.ServiceVersion)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"unknown exporter", "tracing:\n  exporter: jaeger\n"},
		{"bad level", "log_level: loud\n"},
		{"bad platform", "default_platform: \"a|b\"\n"},
		{"sampling out of range", "tracing:\n  sampling_rate: 2\n"},
		{"not yaml", "log_level: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "settings.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path, nil)
			assert.Error(t, err)
		})
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
