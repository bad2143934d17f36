// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

// Package metrics provides OTP rendering metrics collection
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTPMetrics holds all OTP image related metric instruments
type OTPMetrics struct {
	renders          metric.Int64Counter
	renderDuration   metric.Float64Histogram
	decodeFailures   metric.Int64Counter
	codeRemaining    metric.Float64Histogram
	imageSize        metric.Int64Histogram
	serviceAttribute attribute.KeyValue
}

// OTPMetricsConfig holds configuration for OTP metrics
type OTPMetricsConfig struct {
	Meter       metric.Meter
	ServiceName string
}

// NewOTPMetrics creates a new OTP metrics collector
func NewOTPMetrics(config OTPMetricsConfig) (*OTPMetrics, error) {
	if config.Meter == nil {
		return nil, fmt.Errorf("meter cannot be nil")
	}

	if config.ServiceName == "" {
		config.ServiceName = "otpsvg"
	}

	metrics := &OTPMetrics{
		serviceAttribute: attribute.String("service", config.ServiceName),
	}

	var err error
	metrics.renders, err = config.Meter.Int64Counter(
		"otp_renders_total",
		metric.WithDescription("Total number of rendered OTP images"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create renders counter: %w", err)
	}

	metrics.renderDuration, err = config.Meter.Float64Histogram(
		"otp_render_duration_ms",
		metric.WithDescription("Time to compute and render an OTP image in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create render duration histogram: %w", err)
	}

	metrics.decodeFailures, err = config.Meter.Int64Counter(
		"otp_decode_failures_total",
		metric.WithDescription("Total number of secrets that were not valid base32"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create decode failures counter: %w", err)
	}

	metrics.codeRemaining, err = config.Meter.Float64Histogram(
		"otp_code_remaining_seconds",
		metric.WithDescription("Seconds a rendered code stays current"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create code remaining histogram: %w", err)
	}

	metrics.imageSize, err = config.Meter.Int64Histogram(
		"otp_image_size_bytes",
		metric.WithDescription("Size of rendered OTP images in bytes"),
		metric.WithUnit("bytes"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create image size histogram: %w", err)
	}

	return metrics, nil
}

// RecordRender records a finished render. success is false for error images.
func (m *OTPMetrics) RecordRender(ctx context.Context, success bool, duration time.Duration, size int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		m.serviceAttribute,
		attribute.String("result", getResultString(success)),
	)

	m.renders.Add(ctx, 1, attrs)
	m.renderDuration.Record(ctx, float64(duration.Nanoseconds())/1e6, attrs)
	m.imageSize.Record(ctx, int64(size), attrs)
}

// RecordDecodeFailure records a secret that could not be decoded
func (m *OTPMetrics) RecordDecodeFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}

	m.decodeFailures.Add(ctx, 1, metric.WithAttributes(
		m.serviceAttribute,
		attribute.String("failure_reason", reason),
	))
}

// RecordCodeRemaining records how long a rendered code remains valid
func (m *OTPMetrics) RecordCodeRemaining(ctx context.Context, remaining time.Duration) {
	if m == nil {
		return
	}

	m.codeRemaining.Record(ctx, remaining.Seconds(), metric.WithAttributes(m.serviceAttribute))
}

// getResultString converts a boolean result to a string
func getResultString(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
