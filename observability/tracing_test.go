package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*TracerConfig)
		wantErr string
	}{
		{"defaults", func(*TracerConfig) {}, ""},
		{"empty exporter", func(c *TracerConfig) { c.ExporterType = "" }, ""},
		{"stdout", func(c *TracerConfig) { c.ExporterType = ExporterStdout }, ""},
		{"otlp", func(c *TracerConfig) { c.ExporterType = ExporterOTLP }, ""},
		{"otlp without endpoint", func(c *TracerConfig) {
			c.ExporterType = ExporterOTLP
			c.OTLPEndpoint = ""
		}, "requires an endpoint"},
		{"unknown exporter", func(c *TracerConfig) { c.ExporterType = "zipkin" }, "unsupported exporter type: zipkin"},
		{"negative rate", func(c *TracerConfig) { c.SamplingRate = -0.1 }, "outside [0, 1]"},
		{"rate above one", func(c *TracerConfig) { c.SamplingRate = 1.5 }, "outside [0, 1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTracerConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSetupTracing_StdoutExportsProjectSpans(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	cfg := DefaultTracerConfig()
	cfg.ExporterType = ExporterStdout
	cfg.Writer = &buf

	tp, err := SetupTracing(ctx, cfg)
	require.NoError(t, err)

	_, load := StartProjectLoadSpan(ctx, "/src/Demo/Demo.csproj")
	EndSpanWithError(load, nil)
	upCtx, up := StartUpgradeSpan(ctx, "Demo", "4.0", "net40")
	RecordReferenceChange(upCtx, "add", "System.Xaml", "net40")
	EndSpanWithError(up, nil)

	// shutdown flushes the batcher into buf
	require.NoError(t, ShutdownTracing(ctx, tp))
	out := buf.String()
	assert.Contains(t, out, "project.load")
	assert.Contains(t, out, "project.upgrade")
	assert.Contains(t, out, "reference.add")
	assert.Contains(t, out, "System.Xaml")
}

func TestSetupTracing_NoneRecordsWithoutExport(t *testing.T) {
	ctx := context.Background()
	tp, err := SetupTracing(ctx, DefaultTracerConfig())
	require.NoError(t, err)
	defer func() { assert.NoError(t, ShutdownTracing(ctx, tp)) }()

	_, span := StartProjectSaveSpan(ctx, "Demo.csproj", 12)
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
}

func TestSetupTracing_ZeroRateDropsRootSpans(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultTracerConfig()
	cfg.SamplingRate = 0

	tp, err := SetupTracing(ctx, cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, ShutdownTracing(ctx, tp)) }()

	_, span := StartSpan(ctx, TracerName, "dropped")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled())
}

func TestSetupTracing_OTLPConnectsLazily(t *testing.T) {
	// grpc.NewClient does not dial, so setup succeeds without a collector
	cfg := DefaultTracerConfig()
	cfg.ExporterType = ExporterOTLP
	cfg.OTLPEndpoint = "127.0.0.1:1"

	tp, err := SetupTracing(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, tp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = ShutdownTracing(ctx, tp)
}

func TestSetupTracing_InvalidConfig(t *testing.T) {
	cfg := DefaultTracerConfig()
	cfg.ExporterType = "invalid"

	tp, err := SetupTracing(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, tp)
}

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig()
	assert.Equal(t, "sdproj", cfg.ServiceName)
	assert.Equal(t, ExporterNone, cfg.ExporterType)
	assert.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 1.0, cfg.SamplingRate)
	assert.Nil(t, cfg.Writer)
}

func TestShutdownTracing_Nil(t *testing.T) {
	assert.NoError(t, ShutdownTracing(context.Background(), nil))
}

func TestSetAttributes_OnCurrentSpan(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartSpan(context.Background(), TracerName, "attrs")
	SetAttributes(ctx, AttrPropertyCount.Int(3))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, int64(3), attrMap(spans[0].Attributes())[AttrPropertyCount].AsInt64())
}
