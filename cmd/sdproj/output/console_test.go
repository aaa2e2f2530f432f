package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_Printf(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.Printf("hello %s", "world")
	assert.Equal(t, "hello world", out.String())
}

func TestConsole_Error(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	c := NewConsole(&outBuf, &errBuf, VerbosityQuiet)
	c.SetColors(false)
	c.Error("operation failed")
	assert.Equal(t, "Error: operation failed\n", errBuf.String())
	assert.Empty(t, outBuf.String())
}

func TestConsole_VerbosityFiltering(t *testing.T) {
	tests := []struct {
		verbosity Verbosity
		want      []string
		notWant   []string
	}{
		{VerbosityQuiet, []string{"header"}, []string{"info", "warn", "detail", "debug"}},
		{VerbosityNormal, []string{"header", "info", "Warning: warn"}, []string{"detail", "debug"}},
		{VerbosityDetailed, []string{"info", "detail"}, []string{"debug"}},
		{VerbosityDiagnostic, []string{"detail", "[DEBUG] debug"}, nil},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		c := NewConsole(&out, &out, tt.verbosity)
		c.SetColors(false)
		c.Header("header")
		c.Info("info")
		c.Warning("warn")
		c.Detail("detail")
		c.Debug("debug")

		for _, w := range tt.want {
			assert.Contains(t, out.String(), w, "verbosity %d", tt.verbosity)
		}
		for _, w := range tt.notWant {
			assert.NotContains(t, out.String(), w, "verbosity %d", tt.verbosity)
		}
	}
}

func TestConsole_AddedRemoved(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, &out, VerbosityNormal)
	c.SetColors(false)
	c.Added("System.Core")
	c.Removed("System.Xaml")
	assert.Equal(t, "  + System.Core\n  - System.Xaml\n", out.String())

	out.Reset()
	c.SetVerbosity(VerbosityQuiet)
	c.Added("System.Core")
	assert.Empty(t, out.String())
}

func TestParseVerbosity(t *testing.T) {
	tests := map[string]Verbosity{
		"q":          VerbosityQuiet,
		"quiet":      VerbosityQuiet,
		"":           VerbosityNormal,
		"Normal":     VerbosityNormal,
		"detailed":   VerbosityDetailed,
		"diag":       VerbosityDiagnostic,
		"diagnostic": VerbosityDiagnostic,
	}
	for in, want := range tests {
		got, err := ParseVerbosity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseVerbosity("loud")
	assert.Error(t, err)
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
	assert.False(t, IsColorEnabled(&bytes.Buffer{}))
}

func TestWriteJSON(t *testing.T) {
	var out bytes.Buffer
	err := WriteJSON(&out, ProjectOutput{
		SchemaVersion: CurrentSchemaVersion,
		Project:       "Demo",
		References:    []Reference{{Include: "System"}},
		ElapsedMs:     MeasureElapsed(time.Now()),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "{\n  \"schemaVersion\": \"1.0.0\""))
	assert.Contains(t, out.String(), `"include": "System"`)
	assert.NotContains(t, out.String(), "targetFramework")
}
