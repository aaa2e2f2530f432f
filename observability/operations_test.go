package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartUpgradeSpan(t *testing.T) {
	rec := withRecorder(t)

	ctx, span := StartUpgradeSpan(context.Background(), "Demo", "3.5", "v3.5")
	RecordUpgradeResult(ctx, "v2.0", []string{"System.Core"}, nil)
	EndSpanWithError(span, nil)

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	s := ended[0]
	if s.Name() != "project.upgrade" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}

	attrs := attrMap(s.Attributes())
	if attrs[AttrProject].AsString() != "Demo" {
		t.Errorf("project attribute = %v", attrs[AttrProject])
	}
	if attrs[AttrToolsVersion].AsString() != "3.5" {
		t.Errorf("tools version attribute = %v", attrs[AttrToolsVersion])
	}
	if got := attrs[AttrReferencesAdded].AsStringSlice(); len(got) != 1 || got[0] != "System.Core" {
		t.Errorf("added references = %v", got)
	}
}

func TestStartUpgradeSpan_OmitsEmptyValues(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartUpgradeSpan(context.Background(), "Demo", "", "")
	span.End()

	attrs := attrMap(rec.Ended()[0].Attributes())
	if _, ok := attrs[AttrToolsVersion]; ok {
		t.Error("empty tools version should not be recorded")
	}
	if _, ok := attrs[AttrFramework]; ok {
		t.Error("empty framework should not be recorded")
	}
}

func TestProjectFileSpans(t *testing.T) {
	rec := withRecorder(t)

	_, load := StartProjectLoadSpan(context.Background(), "/src/Demo.csproj")
	load.End()
	_, save := StartProjectSaveSpan(context.Background(), "/src/Demo.csproj", 12)
	save.End()

	ended := rec.Ended()
	if len(ended) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(ended))
	}
	if ended[0].Name() != "project.load" || ended[1].Name() != "project.save" {
		t.Errorf("span names = %q, %q", ended[0].Name(), ended[1].Name())
	}
	if attrMap(ended[1].Attributes())[AttrPropertyCount].AsInt64() != 12 {
		t.Error("save span should carry the property count")
	}
}

func TestEndSpanWithError(t *testing.T) {
	rec := withRecorder(t)

	_, span := StartUpgradeSpan(context.Background(), "Demo", "", "v4.0")
	EndSpanWithError(span, errors.New("save failed"))

	s := rec.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if s.Status().Description != "save failed" {
		t.Errorf("description = %q", s.Status().Description)
	}
	if len(s.Events()) == 0 {
		t.Error("error should be recorded as a span event")
	}
}

func TestAttributeKeys(t *testing.T) {
	tests := []struct {
		name     string
		key      attribute.Key
		expected string
	}{
		{"Project", AttrProject, "sdproj.project"},
		{"Framework", AttrFramework, "sdproj.framework"},
		{"ToolsVersion", AttrToolsVersion, "sdproj.tools_version"},
		{"Operation", AttrOperation, "sdproj.operation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.key) != tt.expected {
				t.Errorf("%s = %q, want %q", tt.name, string(tt.key), tt.expected)
			}
		})
	}
}
