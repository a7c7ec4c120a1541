// Package observability sets up OpenTelemetry tracing and metrics and records
// the service's AI, extraction and matching measurements.
package observability

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"hirescope/internal/config"
	"hirescope/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Manager owns the tracer and meter providers. A Manager built from a
// disabled configuration is valid and records nothing.
type Manager struct {
	cfg            config.ObservabilityConfig
	logger         *errors.Logger
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	prometheus     http.Handler
	shutdownFuncs  []func(context.Context) error
}

// NewManager installs the global providers described by cfg. version is used
// when cfg does not name a service version.
func NewManager(ctx context.Context, cfg config.ObservabilityConfig, version string, logger *errors.Logger) (*Manager, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = version
	}
	om := &Manager{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		return om, nil
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}
	if cfg.Tracing.Enabled {
		if err := om.initTracing(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}
	if cfg.Metrics.Enabled {
		if err := om.initMetrics(ctx); err != nil {
			_ = om.Shutdown(ctx)
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	logger.Info("Observability initialized",
		"service", cfg.ServiceName,
		"tracing", cfg.Tracing.Enabled,
		"metrics", cfg.Metrics.Enabled,
		"prometheus", cfg.Prometheus.Enabled,
		"otlp", cfg.OTLP.Enabled)
	return om, nil
}

func (om *Manager) initResource() error {
	instance := om.cfg.ServiceInstance
	if instance == "" {
		instance = om.cfg.ServiceName + "-1"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.cfg.ServiceName),
			semconv.ServiceVersion(om.cfg.ServiceVersion),
			attribute.String("service.instance.id", instance),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	om.resource = res
	return nil
}

func (om *Manager) initTracing(ctx context.Context) error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.cfg.Console.Enabled:
		var opts []stdouttrace.Option
		if om.cfg.Console.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.cfg.OTLP.Enabled:
		exporter, err = om.otlpTraceExporter(ctx)
	default:
		// spans are still created so otelhttp propagates context
		exporter = noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(om.cfg.SampleRate))),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

func (om *Manager) initMetrics(ctx context.Context) error {
	var readers []sdkmetric.Reader

	if om.cfg.Console.Enabled {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(om.cfg.Metrics.CollectionInterval)))
	}
	if om.cfg.OTLP.Enabled {
		reader, err := om.otlpMetricsReader(ctx)
		if err != nil {
			return err
		}
		readers = append(readers, reader)
	}
	if om.cfg.Prometheus.Enabled {
		reader, handler, err := newPrometheusExporter()
		if err != nil {
			return err
		}
		readers = append(readers, reader)
		om.prometheus = handler
		if om.cfg.Prometheus.Port != "" {
			srv := startPrometheusServer(handler, om.cfg.Prometheus, om.logger)
			om.shutdownFuncs = append(om.shutdownFuncs, srv.Shutdown)
		}
	}
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(om.cfg.ServiceName))
	if err != nil {
		return err
	}
	om.metrics = metrics
	return nil
}

func (om *Manager) otlpTraceExporter(ctx context.Context) (trace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(om.cfg.OTLP.Endpoint)}
	if om.cfg.OTLP.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(om.cfg.OTLP.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(om.cfg.OTLP.Headers))
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

func (om *Manager) otlpMetricsReader(ctx context.Context) (sdkmetric.Reader, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(om.cfg.OTLP.Endpoint)}
	if om.cfg.OTLP.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(om.cfg.OTLP.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(om.cfg.OTLP.Headers))
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(om.cfg.Metrics.CollectionInterval)), nil
}

// HTTPMiddleware wraps a handler with otelhttp server instrumentation.
func (om *Manager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.cfg.Enabled || om.tracerProvider == nil && om.meterProvider == nil {
		return func(h http.Handler) http.Handler { return h }
	}
	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}
	if om.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(om.tracerProvider))
	}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.cfg.ServiceName, opts...)
}

// MetricsHandler serves the Prometheus exposition, or nil when Prometheus
// export is off.
func (om *Manager) MetricsHandler() http.Handler {
	return om.prometheus
}

// Tracer returns a named tracer, a no-op one when tracing is off.
func (om *Manager) Tracer(name string) oteltrace.Tracer {
	if om.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops every exporter, returning all errors joined.
func (om *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(om.shutdownFuncs) - 1; i >= 0; i-- {
		if err := om.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	om.shutdownFuncs = nil
	return stderrors.Join(errs...)
}

type noOpSpanExporter struct{}

func (noOpSpanExporter) ExportSpans(context.Context, []trace.ReadOnlySpan) error { return nil }
func (noOpSpanExporter) Shutdown(context.Context) error                         { return nil }
