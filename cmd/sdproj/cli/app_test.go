package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxwhale/SharpDevelop/cmd/sdproj/output"
	"github.com/maxwhale/SharpDevelop/observability"
)

func TestGetFullVersion(t *testing.T) {
	got := GetFullVersion()
	assert.True(t, strings.HasPrefix(got, "sdproj version "+Version))
	assert.Contains(t, got, "commit: ")
}

func TestEnvironment_CloseDumpsMetrics(t *testing.T) {
	var out bytes.Buffer
	env := NewEnvironment(output.NewConsole(&out, &out, output.VerbosityNormal))
	env.dumpMetrics = true

	observability.ReparseRequestsTotal.WithLabelValues(observability.ReparseTrigger(true, false)).Inc()

	require.NoError(t, env.Close(context.Background()))
	assert.Contains(t, out.String(), "sdproj_reparse_requests_total")
	assert.NotContains(t, out.String(), "go_goroutines")
}

func TestEnvironment_CloseWithoutTracer(t *testing.T) {
	env := NewEnvironment(output.NewConsole(&bytes.Buffer{}, &bytes.Buffer{}, output.VerbosityQuiet))
	assert.NoError(t, env.Close(context.Background()))
}
