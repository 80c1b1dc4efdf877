// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/trace/noop"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	ExporterZipkin = "zipkin"
	ExporterOTLP   = "otlp"

	exportTimeout = 10 * time.Second
	// Longer than [exportTimeout] so in-flight exports finish first.
	shutdownTimeout = 15 * time.Second

	defaultZipkinEndpoint = "http://localhost:9411/api/v2/spans"
)

var ErrUnknownExporter = errors.New("unknown trace exporter")

// Config selects where ledger spans are sent. Spans are only recorded when
// Enabled is set.
type Config struct {
	Enabled bool `json:"enabled"`

	// Fraction of transactions traced, clamped to [0, 1].
	SampleRate float64 `json:"sampleRate"`

	// Exporter is [ExporterZipkin] (default) or [ExporterOTLP].
	Exporter string `json:"exporter"`
	// Endpoint of the collector: a URL for Zipkin, which defaults to a
	// local collector, and a plaintext host:port for OTLP, which defaults
	// to the OTEL_EXPORTER_OTLP_ENDPOINT environment variable.
	Endpoint string `json:"endpoint"`

	Service string `json:"service"`
	Version string `json:"version"`
}

type tracer struct {
	oteltrace.Tracer

	shutdown func(context.Context) error
}

func (t *tracer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return t.shutdown(ctx)
}

func New(config *Config) (trace.Tracer, error) {
	if !config.Enabled {
		return &tracer{
			Tracer:   noop.NewTracerProvider().Tracer(config.Service),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	exporter, err := newExporter(config)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(exportTimeout)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(config.Service),
			attribute.String("version", config.Version),
		)),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.SampleRate)),
	)
	return &tracer{
		Tracer:   tp.Tracer(config.Service),
		shutdown: tp.Shutdown,
	}, nil
}

func newExporter(config *Config) (sdktrace.SpanExporter, error) {
	switch config.Exporter {
	case "", ExporterZipkin:
		endpoint := config.Endpoint
		if len(endpoint) == 0 {
			endpoint = defaultZipkinEndpoint
		}
		return zipkin.New(endpoint)
	case ExporterOTLP:
		var opts []otlptracehttp.Option
		if len(config.Endpoint) > 0 {
			opts = append(opts, otlptracehttp.WithEndpoint(config.Endpoint), otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, config.Exporter)
	}
}
