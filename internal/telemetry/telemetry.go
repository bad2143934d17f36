// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

// Package telemetry provides OpenTelemetry initialization and management
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Provider manages OpenTelemetry providers and their lifecycle
type Provider struct {
	traceProvider  *sdktrace.TracerProvider
	metricProvider *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	resource       *resource.Resource
	config         *Config
}

// Config holds the telemetry configuration
type Config struct {
	Enabled            bool
	ServiceName        string
	ServiceVersion     string
	OTLPEndpoint       string
	OTLPHeaders        map[string]string
	OTLPInsecure       bool
	PrometheusEnabled  bool
	PrometheusEndpoint string
	PrometheusAppOnly  bool
	TracingEnabled     bool
	TracingSampleRate  float64
	MetricsEnabled     bool
	ResourceAttributes map[string]string
}

// NewProvider creates a new telemetry provider with the given configuration.
// Enabled providers are installed as the global tracer and meter providers.
func NewProvider(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		return nil, errors.New("telemetry config cannot be nil")
	}

	provider := &Provider{
		config: config,
	}

	if !config.Enabled {
		return provider, nil
	}

	res, err := provider.createResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	provider.resource = res

	if config.TracingEnabled {
		tp, err := provider.createTraceProvider(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace provider: %w", err)
		}
		provider.traceProvider = tp
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	if config.MetricsEnabled {
		mp, err := provider.createMetricProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create metric provider: %w", err)
		}
		provider.metricProvider = mp
		otel.SetMeterProvider(mp)
	}

	return provider, nil
}

// Shutdown gracefully shuts down all telemetry providers
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || !p.IsEnabled() {
		return nil
	}

	var errs []error

	if p.traceProvider != nil {
		if err := p.traceProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown trace provider: %w", err))
		}
	}

	if p.metricProvider != nil {
		if err := p.metricProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown metric provider: %w", err))
		}
	}

	return errors.Join(errs...)
}

// GetTracer returns a tracer for the given name
func (p *Provider) GetTracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if p == nil || p.traceProvider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return p.traceProvider.Tracer(name, opts...)
}

// GetTracerProvider returns the tracer provider, falling back to the global one
func (p *Provider) GetTracerProvider() trace.TracerProvider {
	if p == nil || p.traceProvider == nil {
		return otel.GetTracerProvider()
	}
	return p.traceProvider
}

// GetMeter returns a meter for the given name. Without a metric provider it
// returns a no-op meter.
func (p *Provider) GetMeter(name string, opts ...metric.MeterOption) metric.Meter {
	if p == nil || p.metricProvider == nil {
		return noop.NewMeterProvider().Meter(name, opts...)
	}
	return p.metricProvider.Meter(name, opts...)
}

// IsEnabled returns whether telemetry is enabled
func (p *Provider) IsEnabled() bool {
	return p != nil && p.config != nil && p.config.Enabled
}

// TracingEnabled reports whether spans are exported
func (p *Provider) TracingEnabled() bool {
	return p != nil && p.traceProvider != nil
}

// MetricsEnabled reports whether a meter provider is installed
func (p *Provider) MetricsEnabled() bool {
	return p != nil && p.metricProvider != nil
}

// Config returns the configuration the provider was built with
func (p *Provider) Config() *Config {
	return p.config
}

// GetResource returns the telemetry resource
func (p *Provider) GetResource() *resource.Resource {
	return p.resource
}

// Gatherer returns the Prometheus registry backing the metrics endpoint, or
// nil when the Prometheus exporter is not enabled.
func (p *Provider) Gatherer() prometheus.Gatherer {
	if p == nil || p.registry == nil {
		return nil
	}
	return p.registry
}

// WithShutdownTimeout creates a context with a timeout for shutdown operations
func WithShutdownTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// createTraceProvider creates and configures the trace provider
func (p *Provider) createTraceProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	factory := NewExporterFactory(p.config)

	exporters, err := factory.CreateTraceExporters(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporters: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(p.resource),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.config.TracingSampleRate))),
	}

	for _, exporter := range exporters {
		opts = append(opts, sdktrace.WithBatcher(
			exporter,
			sdktrace.WithBatchTimeout(5*time.Second),
			sdktrace.WithMaxExportBatchSize(512),
			sdktrace.WithMaxQueueSize(2048),
		))
	}

	return sdktrace.NewTracerProvider(opts...), nil
}

// createMetricProvider creates the meter provider and its Prometheus registry
func (p *Provider) createMetricProvider() (*sdkmetric.MeterProvider, error) {
	p.registry = prometheus.NewRegistry()
	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := NewExporterFactory(p.config)
	readers, err := factory.CreateMetricReaders(p.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric readers: %w", err)
	}

	opts := []sdkmetric.Option{
		sdkmetric.WithResource(p.resource),
	}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	for _, view := range defaultViews() {
		opts = append(opts, sdkmetric.WithView(view))
	}

	return sdkmetric.NewMeterProvider(opts...), nil
}

// defaultViews sets histogram buckets for the duration instruments
func defaultViews() []sdkmetric.View {
	return []sdkmetric.View{
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "http_request_duration_ms"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
				},
			},
		),
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "otp_render_duration_ms"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
				},
			},
		),
		sdkmetric.NewView(
			sdkmetric.Instrument{Name: "otp_image_size_bytes"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{256, 512, 768, 1024, 1536, 2048, 4096},
				},
			},
		),
	}
}
