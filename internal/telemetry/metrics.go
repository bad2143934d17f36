// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrPrometheusDisabled is returned when the metrics endpoint is requested
// without an enabled Prometheus exporter.
var ErrPrometheusDisabled = errors.New("prometheus metrics not enabled")

// MetricsHandler serves the Prometheus registry of a Provider
type MetricsHandler struct {
	gatherer prometheus.Gatherer
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(provider *Provider) (*MetricsHandler, error) {
	if !provider.IsEnabled() || !provider.config.PrometheusEnabled {
		return nil, ErrPrometheusDisabled
	}

	gatherer := provider.Gatherer()
	if gatherer == nil {
		return nil, fmt.Errorf("metric provider not initialized in telemetry provider")
	}

	if provider.config.PrometheusAppOnly {
		gatherer = FilterGatherer(gatherer, NewApplicationMetricsFilter())
	}

	return &MetricsHandler{gatherer: gatherer}, nil
}

// Handler returns the HTTP handler for Prometheus metrics
func (h *MetricsHandler) Handler() http.Handler {
	return promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Timeout:           5 * time.Second,
	})
}

// EchoHandler returns an Echo handler for Prometheus metrics
func (h *MetricsHandler) EchoHandler() echo.HandlerFunc {
	return echo.WrapHandler(h.Handler())
}

// RegisterMetricsEndpoint mounts the metrics endpoint on e. It does nothing
// when Prometheus is not enabled.
func RegisterMetricsEndpoint(e *echo.Echo, provider *Provider) error {
	if !provider.IsEnabled() || !provider.config.PrometheusEnabled {
		return nil
	}

	metricsHandler, err := NewMetricsHandler(provider)
	if err != nil {
		return fmt.Errorf("failed to create metrics handler: %w", err)
	}

	e.GET(provider.config.PrometheusEndpoint, metricsHandler.EchoHandler())
	return nil
}

// HealthMetrics provides health-related metrics
type HealthMetrics struct {
	healthCounter metric.Int64Counter
	startTime     time.Time
}

// NewHealthMetrics creates health-related metrics
func NewHealthMetrics(meter metric.Meter, serviceName, serviceVersion string) (*HealthMetrics, error) {
	healthCounter, err := meter.Int64Counter(
		"health_checks_total",
		metric.WithDescription("Total number of health checks"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health counter: %w", err)
	}

	uptimeGauge, err := meter.Float64ObservableGauge(
		"uptime_seconds",
		metric.WithDescription("Service uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	versionInfo, err := meter.Int64ObservableGauge(
		"version_info",
		metric.WithDescription("Service version information"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create version info gauge: %w", err)
	}

	hm := &HealthMetrics{
		healthCounter: healthCounter,
		startTime:     time.Now(),
	}

	_, err = meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			o.ObserveFloat64(uptimeGauge, time.Since(hm.startTime).Seconds())
			o.ObserveInt64(versionInfo, 1,
				metric.WithAttributes(
					attribute.String("service", serviceName),
					attribute.String("version", serviceVersion),
				),
			)
			return nil
		},
		uptimeGauge,
		versionInfo,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register health callbacks: %w", err)
	}

	return hm, nil
}

// RecordHealthCheck records a health check metric
func (hm *HealthMetrics) RecordHealthCheck(ctx context.Context, status string) {
	if hm == nil {
		return
	}
	hm.healthCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}
