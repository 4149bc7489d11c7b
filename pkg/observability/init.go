package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

const (
	instrumentationName = "filterphrase"
	attrAppMode         = "app.mode"
)

// Providers holds the initialized observability providers.
type Providers struct {
	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger

	// Shutdown flushes pending telemetry. Must be called before process exit.
	Shutdown func(ctx context.Context) error
}

// Init wires tracing, query metrics and logging for one run of the binary.
// Without an OTLP endpoint nothing is exported and Shutdown is a no-op.
func Init(cfg Config) (Providers, error) {
	logger := newLogger(cfg)

	if cfg.OTLPEndpoint == "" {
		return Providers{
			Tracer:   nooptrace.NewTracerProvider().Tracer(instrumentationName),
			Meter:    noopmetric.NewMeterProvider().Meter(instrumentationName),
			Logger:   logger,
			Shutdown: func(context.Context) error { return nil },
		}, nil
	}

	return exportingProviders(context.Background(), cfg, logger)
}

// exportingProviders pushes spans and query metrics to the OTLP collector.
// gRPC dials lazily, so an unreachable collector only surfaces on export.
func exportingProviders(ctx context.Context, cfg Config, logger *slog.Logger) (Providers, error) {
	traceExporter, err := otlptracegrpc.New(ctx, traceExporterOptions(cfg)...)
	if err != nil {
		return Providers{}, fmt.Errorf("create trace exporter: %w", err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx, metricExporterOptions(cfg)...)
	if err != nil {
		return Providers{}, errors.Join(fmt.Errorf("create metric exporter: %w", err), traceExporter.Shutdown(ctx))
	}

	res := runResource(cfg)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRatio)),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return Providers{
		Tracer:   tp.Tracer(instrumentationName),
		Meter:    mp.Meter(instrumentationName),
		Logger:   logger,
		Shutdown: flushWithin(shutdownTimeout(cfg), tp.Shutdown, mp.Shutdown),
	}, nil
}

func traceExporterOptions(cfg Config) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	return opts
}

func metricExporterOptions(cfg Config) []otlpmetricgrpc.Option {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	return opts
}

// runResource describes this process: service identity plus how it was launched.
func runResource(cfg Config) *resource.Resource {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}

	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}

	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(cfg.Environment))
	}

	if cfg.Mode != "" {
		attrs = append(attrs, attribute.String(attrAppMode, string(cfg.Mode)))
	}

	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

// sampler keeps every root span unless a ratio in (0, 1) is configured.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio > 0 && ratio < 1 {
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}

	return sdktrace.ParentBased(sdktrace.AlwaysSample())
}

func shutdownTimeout(cfg Config) time.Duration {
	if cfg.ShutdownTimeoutSec <= 0 {
		return defaultShutdownTimeoutSec * time.Second
	}

	return time.Duration(cfg.ShutdownTimeoutSec) * time.Second
}

// flushWithin runs every shutdown under one shared deadline and joins their errors.
func flushWithin(timeout time.Duration, shutdowns ...func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		errs := make([]error, 0, len(shutdowns))
		for _, shutdown := range shutdowns {
			errs = append(errs, shutdown(ctx))
		}

		return errors.Join(errs...)
	}
}
