package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InitTracer installs a global TracerProvider exporting spans over OTLP/HTTP
// to endpoint, e.g. "http://localhost:4318". An empty endpoint installs a
// no-op provider. attrs are added to the service resource. The returned
// function flushes and stops the exporter.
func InitTracer(ctx context.Context, endpoint, service, version string, attrs ...attribute.KeyValue) (trace.TracerProvider, func(context.Context) error, error) {
	nop := noop.NewTracerProvider()
	shutdown := func(context.Context) error { return nil }

	if endpoint == "" {
		otel.SetTracerProvider(nop)
		return nop, shutdown, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(append([]attribute.KeyValue{
		semconv.ServiceName(service),
		semconv.ServiceVersion(version),
	}, attrs...)...))
	if err != nil {
		return nop, shutdown, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nop, shutdown, fmt.Errorf("create otlp exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider, provider.Shutdown, nil
}
