package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/hospintel/hospintel_backend/config"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	Tracing TracingOptions
	// Registerer receives the prometheus collector. Nil uses the default
	// registry served on the metrics route.
	Registerer promclient.Registerer
}

type TracingOptions struct {
	Enabled bool
	// Endpoint is host:port of an OTLP/HTTP collector. Empty keeps spans
	// in-process.
	Endpoint     string
	Insecure     bool
	SamplingRate float64
}

// Provider owns the gateway's meter provider and, when tracing is on, its
// tracer provider.
type Provider struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
}

// Tracing reports whether spans are being produced.
func (p *Provider) Tracing() bool { return p != nil && p.TracerProvider != nil }

// InitTelemetry installs the global meter provider backed by a prometheus
// exporter, plus a tracer provider when tracing is enabled.
func InitTelemetry(ctx context.Context, cfg Config) (*Provider, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes("",
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	var promOpts []prometheus.Option
	if cfg.Registerer != nil {
		promOpts = append(promOpts, prometheus.WithRegisterer(cfg.Registerer))
	}
	exporter, err := prometheus.New(promOpts...)
	if err != nil {
		return nil, fmt.Errorf("prometheus exporter: %w", err)
	}
	p := &Provider{
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithResource(res), sdkmetric.WithReader(exporter)),
	}
	otel.SetMeterProvider(p.MeterProvider)

	if cfg.Tracing.Enabled {
		tp, err := newTracerProvider(ctx, res, cfg.Tracing)
		if err != nil {
			_ = p.MeterProvider.Shutdown(ctx)
			return nil, err
		}
		p.TracerProvider = tp
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}
	return p, nil
}

func newTracerProvider(ctx context.Context, res *resource.Resource, opts TracingOptions) (*sdktrace.TracerProvider, error) {
	rate := opts.SamplingRate
	if rate <= 0 {
		rate = 1.0
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)
	if opts.Endpoint == "" {
		return tp, nil
	}

	clientOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("otlp trace exporter: %w", err)
	}
	tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exp))
	return tp, nil
}

// Shutdown flushes and stops both providers within five seconds.
func (p *Provider) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if err := p.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider: %w", err))
	}
	return errors.Join(errs...)
}

func FromCentralConfig(cfg *config.Config) Config {
	tc := cfg.Observability.Tracing
	return Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		Tracing: TracingOptions{
			Enabled:      tc.Enabled,
			Endpoint:     tc.OTLPEndpoint,
			Insecure:     tc.OTLPInsecure,
			SamplingRate: tc.SamplingRate,
		},
	}
}
