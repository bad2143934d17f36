// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package middlewares

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HTTPTracingConfig holds configuration for HTTP tracing middleware
type HTTPTracingConfig struct {
	// Skipper defines a function to skip middleware
	Skipper func(echo.Context) bool
	// TracerProvider is the OpenTelemetry tracer provider
	TracerProvider trace.TracerProvider
	// ServiceName is used for span naming and attributes
	ServiceName string
	// Propagator is used for trace context propagation
	Propagator propagation.TextMapPropagator
}

// DefaultHTTPTracingConfig provides default configuration
var DefaultHTTPTracingConfig = HTTPTracingConfig{
	Skipper:     func(echo.Context) bool { return false },
	ServiceName: "otpsvg",
}

// HTTPTracing returns a middleware that opens a server span per request with
// otelecho and decorates it. Path attributes are replaced by the route
// template so the secret never reaches the exporter.
func HTTPTracing(tracerProvider trace.TracerProvider, serviceName string) echo.MiddlewareFunc {
	return HTTPTracingWithConfig(HTTPTracingConfig{
		TracerProvider: tracerProvider,
		ServiceName:    serviceName,
	})
}

// HTTPTracingWithConfig returns a middleware with custom configuration
func HTTPTracingWithConfig(config HTTPTracingConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultHTTPTracingConfig.Skipper
	}
	if config.ServiceName == "" {
		config.ServiceName = DefaultHTTPTracingConfig.ServiceName
	}
	if config.Propagator == nil {
		config.Propagator = otel.GetTextMapPropagator()
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}

	base := otelecho.Middleware(
		config.ServiceName,
		otelecho.WithTracerProvider(config.TracerProvider),
		otelecho.WithPropagators(config.Propagator),
		otelecho.WithSkipper(config.Skipper),
	)

	enhance := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			span := trace.SpanFromContext(c.Request().Context())
			if !span.IsRecording() {
				return next(c)
			}

			decorateRequestSpan(c, span, config.ServiceName)
			addTraceInfoToContext(c, span)

			err := next(c)

			addResponseAttributes(c, span)
			if err != nil {
				recordErrorInSpan(span, err)
			}

			return err
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return base(enhance(next))
	}
}

// decorateRequestSpan names the span after the route and overwrites every
// attribute that could carry the raw request path.
func decorateRequestSpan(c echo.Context, span trace.Span, serviceName string) {
	req := c.Request()
	route := SafePath(c)

	span.SetName(fmt.Sprintf("HTTP %s %s", req.Method, route))
	span.SetAttributes(
		attribute.String("service.name", serviceName),
		attribute.String("service.component", "http"),
		attribute.String("http.route", route),
		attribute.String("http.target", route),
		attribute.String("url.path", route),
		attribute.String("http.request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		attribute.String("http.client_ip", c.RealIP()),
		attribute.String("http.protocol", req.Proto),
	)

	if queryParams := req.URL.Query(); len(queryParams) > 0 {
		span.SetAttributes(attribute.Int("http.request.query_params_count", len(queryParams)))
	}
}

// addResponseAttributes adds response attributes to the span
func addResponseAttributes(c echo.Context, span trace.Span) {
	res := c.Response()

	span.SetAttributes(attribute.Int("http.response.status_code", res.Status))

	if contentType := res.Header().Get(echo.HeaderContentType); contentType != "" {
		span.SetAttributes(attribute.String("http.response.content_type", contentType))
	}
	if res.Size > 0 {
		span.SetAttributes(attribute.Int64("http.response.content_length", res.Size))
	}
	if cacheControl := res.Header().Get(echo.HeaderCacheControl); cacheControl != "" {
		span.SetAttributes(attribute.String("http.response.cache_control", cacheControl))
	}
}

// addTraceInfoToContext exposes the trace ID to the client
func addTraceInfoToContext(c echo.Context, span trace.Span) {
	spanContext := span.SpanContext()
	if !spanContext.IsValid() {
		return
	}

	c.Response().Header().Set("X-Trace-Id", spanContext.TraceID().String())
}

// recordErrorInSpan records an error in the span with appropriate status
func recordErrorInSpan(span trace.Span, err error) {
	span.RecordError(err)

	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) {
		span.SetStatus(codes.Error, err.Error())
		return
	}

	span.SetAttributes(attribute.Int("http.status_code", echoErr.Code))
	// 4xx responses are not span errors
	if echoErr.Code >= 500 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d: %v", echoErr.Code, echoErr.Message))
	} else {
		span.SetStatus(codes.Unset, "")
	}
}
