// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package middlewares

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPInstrumentationConfig holds configuration for HTTP instrumentation middleware
type HTTPInstrumentationConfig struct {
	// Skipper defines a function to skip middleware
	Skipper func(echo.Context) bool
	// Meter is the OpenTelemetry meter for creating instruments
	Meter metric.Meter
	// ServiceName is used for metric labeling
	ServiceName string
}

// httpInstruments holds all the metric instruments for HTTP requests
type httpInstruments struct {
	requestDuration metric.Float64Histogram
	requestCounter  metric.Int64Counter
	responseSize    metric.Int64Histogram
	activeRequests  metric.Int64UpDownCounter
}

// DefaultHTTPInstrumentationConfig provides default configuration
var DefaultHTTPInstrumentationConfig = HTTPInstrumentationConfig{
	Skipper:     func(echo.Context) bool { return false },
	ServiceName: "otpsvg",
}

// HTTPInstrumentation returns a middleware that instruments HTTP requests with OpenTelemetry metrics
func HTTPInstrumentation(meter metric.Meter, serviceName string) echo.MiddlewareFunc {
	return HTTPInstrumentationWithConfig(HTTPInstrumentationConfig{
		Meter:       meter,
		ServiceName: serviceName,
	})
}

// HTTPInstrumentationWithConfig returns a middleware with custom configuration.
// Requests are labelled by route template, never by raw path.
func HTTPInstrumentationWithConfig(config HTTPInstrumentationConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultHTTPInstrumentationConfig.Skipper
	}
	if config.ServiceName == "" {
		config.ServiceName = DefaultHTTPInstrumentationConfig.ServiceName
	}

	instruments, err := createHTTPInstruments(config.Meter)
	if err != nil {
		// No meter, no metrics
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			ctx := c.Request().Context()
			start := time.Now()

			inFlight := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", SafePath(c)),
				attribute.String("service", config.ServiceName),
			)
			instruments.activeRequests.Add(ctx, 1, inFlight)
			defer instruments.activeRequests.Add(ctx, -1, inFlight)

			err := next(c)

			res := c.Response()
			status := res.Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("route", SafePath(c)),
				attribute.String("status", strconv.Itoa(status)),
				attribute.String("status_class", getStatusClass(status)),
				attribute.String("service", config.ServiceName),
			)

			instruments.requestDuration.Record(ctx, float64(time.Since(start).Nanoseconds())/1e6, attrs)
			instruments.requestCounter.Add(ctx, 1, attrs)
			if res.Size > 0 {
				instruments.responseSize.Record(ctx, res.Size, attrs)
			}

			return err
		}
	}
}

// createHTTPInstruments creates all the metric instruments needed for HTTP instrumentation
func createHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	if meter == nil {
		return nil, fmt.Errorf("meter cannot be nil")
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	requestCounter, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &httpInstruments{
		requestDuration: requestDuration,
		requestCounter:  requestCounter,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// getStatusClass returns the status class (1xx, 2xx, 3xx, 4xx, 5xx) for a given status code
func getStatusClass(status int) string {
	if status < 100 || status >= 600 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
