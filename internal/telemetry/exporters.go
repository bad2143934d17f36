// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package telemetry

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ExporterFactory creates exporters based on configuration
type ExporterFactory struct {
	config *Config
}

// NewExporterFactory creates a new exporter factory
func NewExporterFactory(config *Config) *ExporterFactory {
	return &ExporterFactory{config: config}
}

// CreateTraceExporters creates trace exporters based on configuration
func (f *ExporterFactory) CreateTraceExporters(ctx context.Context) ([]sdktrace.SpanExporter, error) {
	if f.config.OTLPEndpoint == "" {
		return nil, errors.New("no trace exporters configured")
	}

	exporter, err := f.createOTLPTraceExporter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return []sdktrace.SpanExporter{exporter}, nil
}

// CreateMetricReaders creates the metric readers. The Prometheus reader
// registers its collector with reg.
func (f *ExporterFactory) CreateMetricReaders(reg promclient.Registerer) ([]metric.Reader, error) {
	if !f.config.PrometheusEnabled {
		return nil, errors.New("no metric readers configured")
	}

	reader, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus reader: %w", err)
	}

	return []metric.Reader{reader}, nil
}

// createOTLPTraceExporter creates an OTLP HTTP trace exporter
func (f *ExporterFactory) createOTLPTraceExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(f.config.OTLPEndpoint),
	}

	if len(f.config.OTLPHeaders) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(f.config.OTLPHeaders))
	}

	if f.config.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	} else {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
		}))
	}

	return otlptracehttp.New(ctx, opts...)
}

// ValidateExporterConfig validates the exporter configuration
func ValidateExporterConfig(config *Config) error {
	if !config.Enabled {
		return nil
	}

	if config.TracingEnabled && config.OTLPEndpoint == "" {
		return errors.New("tracing is enabled but no OTLP endpoint is configured")
	}

	if config.MetricsEnabled && !config.PrometheusEnabled {
		return errors.New("metrics are enabled but the Prometheus exporter is disabled")
	}

	// otlptracehttp expects host:port, the scheme comes from OTLPInsecure
	if config.OTLPEndpoint != "" {
		if strings.Contains(config.OTLPEndpoint, "://") {
			return fmt.Errorf("OTLP endpoint must be host:port without a scheme, got %q", config.OTLPEndpoint)
		}
		if !strings.Contains(config.OTLPEndpoint, ":") {
			return fmt.Errorf("OTLP endpoint must include a port, got %q", config.OTLPEndpoint)
		}
	}

	if config.PrometheusEnabled && !strings.HasPrefix(config.PrometheusEndpoint, "/") {
		return fmt.Errorf("prometheus endpoint must be an absolute path, got %q", config.PrometheusEndpoint)
	}

	if config.TracingSampleRate < 0.0 || config.TracingSampleRate > 1.0 {
		return fmt.Errorf("tracing sample rate must be between 0.0 and 1.0, got %f", config.TracingSampleRate)
	}

	return nil
}
