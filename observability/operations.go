package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the tracer name for sdproj operations
	TracerName = "github.com/maxwhale/SharpDevelop"
)

// Common attribute keys
const (
	AttrProject         = attribute.Key("sdproj.project")
	AttrProjectFile     = attribute.Key("sdproj.project.file")
	AttrFramework       = attribute.Key("sdproj.framework")
	AttrOldFramework    = attribute.Key("sdproj.framework.old")
	AttrToolsVersion    = attribute.Key("sdproj.tools_version")
	AttrOperation       = attribute.Key("sdproj.operation")
	AttrReferencesAdded = attribute.Key("sdproj.references.added")
	AttrReferencesGone  = attribute.Key("sdproj.references.removed")
	AttrPropertyCount   = attribute.Key("sdproj.property.count")
	AttrReference       = attribute.Key("sdproj.reference")
	AttrRule            = attribute.Key("sdproj.rule")
)

// StartUpgradeSpan starts a span for a framework upgrade transaction.
// Empty framework or toolsVersion values are omitted.
func StartUpgradeSpan(ctx context.Context, project, toolsVersion, framework string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		AttrProject.String(project),
		AttrOperation.String("upgrade"),
	}
	if toolsVersion != "" {
		attrs = append(attrs, AttrToolsVersion.String(toolsVersion))
	}
	if framework != "" {
		attrs = append(attrs, AttrFramework.String(framework))
	}
	return StartSpan(ctx, TracerName, "project.upgrade", trace.WithAttributes(attrs...))
}

// RecordUpgradeResult records the reference changes of an upgrade on the current span
func RecordUpgradeResult(ctx context.Context, oldFramework string, added, removed []string) {
	SetAttributes(ctx,
		AttrOldFramework.String(oldFramework),
		AttrReferencesAdded.StringSlice(added),
		AttrReferencesGone.StringSlice(removed),
	)
}

// RecordReferenceChange adds a "reference.<action>" event to the current span
func RecordReferenceChange(ctx context.Context, action, include, rule string) {
	AddEvent(ctx, "reference."+action, AttrReference.String(include), AttrRule.String(rule))
}

// StartProjectLoadSpan starts a span for reading a project file
func StartProjectLoadSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "project.load",
		trace.WithAttributes(
			AttrProjectFile.String(path),
			AttrOperation.String("load"),
		),
	)
}

// StartProjectSaveSpan starts a span for writing a project file
func StartProjectSaveSpan(ctx context.Context, path string, propertyCount int) (context.Context, trace.Span) {
	return StartSpan(ctx, TracerName, "project.save",
		trace.WithAttributes(
			AttrProjectFile.String(path),
			AttrPropertyCount.Int(propertyCount),
			AttrOperation.String("save"),
		),
	)
}

// EndSpanWithError ends a span with an error status
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
