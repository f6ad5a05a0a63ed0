// Copyright © 2024 The ELPS authors

// Package telemetry wires OpenTelemetry tracing for pyscan.
//
// Spans are always created through the global tracer provider. Unless Setup
// is called the provider is the otel no-op provider and spans cost nothing.
package telemetry

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used for every span.
const TracerName = "github.com/luthersystems/pyscan"

// Tracer returns the pyscan tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// Start opens a span named name as a child of any span in ctx.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// End closes span, marking it failed when err is non-nil.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Setup installs a global tracer provider that writes every finished span
// to w as indented JSON. The returned function flushes and uninstalls it.
func Setup(w io.Writer) (func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, errors.Wrap(err, "create trace exporter")
	}
	return Install(exp), nil
}

// Install makes a provider exporting synchronously to exp the global
// provider. The returned function shuts it down.
func Install(exp sdktrace.SpanExporter) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exp),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	return func(ctx context.Context) error {
		otel.SetTracerProvider(prev)
		return tp.Shutdown(ctx)
	}
}
