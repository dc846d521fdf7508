package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/arcade-bigscreen/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const ServiceName = "arcade-bigscreen"

// Observability bundles the logger, tracer and metrics registry handed to every module.
type Observability struct {
	Logger         *slog.Logger
	Tracer         trace.Tracer
	TracerProvider *sdktrace.TracerProvider
	Registry       *prometheus.Registry
}

// Init builds the observability stack and installs its tracer provider globally.
// Spans are exported over OTLP/gRPC when an endpoint is configured.
func Init(ctx context.Context, w io.Writer, cfg *config.Config) (Observability, error) {
	obs := New(w, cfg)

	if endpoint := cfg.Observability.OTLPEndpoint; endpoint != "" {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if cfg.Observability.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return Observability{}, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
		}
		obs.TracerProvider.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter))
		obs.Logger.InfoContext(ctx, "Exporting traces", "otlp_endpoint", endpoint)
	}

	otel.SetTracerProvider(obs.TracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return obs, nil
}

// New builds the stack without exporters or globals. Logs are JSON in production and
// text otherwise.
func New(w io.Writer, cfg *config.Config) Observability {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Observability.LogLevel)}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler).With(
		"service", ServiceName,
		"environment", cfg.Observability.Environment,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sampleRate := cfg.Observability.TraceSampleRate
	if sampleRate <= 0 || sampleRate > 1 {
		sampleRate = 1
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", ServiceName),
			attribute.String("deployment.environment", cfg.Observability.Environment),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRate))),
	)

	return Observability{
		Logger:         logger,
		Tracer:         provider.Tracer(ServiceName),
		TracerProvider: provider,
		Registry:       registry,
	}
}

// Shutdown flushes buffered spans and stops the exporters.
func (o Observability) Shutdown(ctx context.Context) error {
	if o.TracerProvider == nil {
		return nil
	}
	if err := o.TracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	return nil
}

// ParseLevel maps a level name to slog; unknown names mean info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(name)))); err != nil {
		return slog.LevelInfo
	}
	return level
}
