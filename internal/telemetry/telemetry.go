package telemetry

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "telegram-ai-chatbot"

// Config holds the configuration for telemetry
type Config struct {
	Enabled      bool
	OTLPEndpoint string // host:port of an OTLP/HTTP collector; empty uses the exporter default
	Version      string
}

// Provider manages the tracing pipeline. When telemetry is disabled it hands
// out no-op tracers so call sites never need to branch.
type Provider struct {
	enabled bool
	tp      *sdktrace.TracerProvider
	tracer  trace.Tracer
}

// NewProvider creates a new telemetry provider
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		log.Printf("Telemetry disabled")
		return &Provider{tracer: noop.NewTracerProvider().Tracer(serviceName)}, nil
	}

	opts := []otlptracehttp.Option{}
	if cfg.OTLPEndpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint), otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(cfg.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	log.Printf("Telemetry enabled")
	return &Provider{
		enabled: true,
		tp:      tp,
		tracer:  tp.Tracer(serviceName),
	}, nil
}

// Shutdown flushes pending spans and shuts down the exporter
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.tp.Shutdown(ctx)
}

// StartSpan starts a span with the given attributes. With telemetry disabled
// the returned span is a no-op.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// NewExchangeID generates a correlation id for one message exchange, carried
// in spans and log lines.
func NewExchangeID() string {
	return uuid.New().String()
}
