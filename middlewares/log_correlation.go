// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package middlewares

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

// loggerKey is the echo context key holding the request logger
const loggerKey = "logger"

// LogCorrelationConfig holds configuration for log correlation middleware
type LogCorrelationConfig struct {
	// Skipper defines a function to skip middleware
	Skipper func(echo.Context) bool
	// Logger is the base logger to enhance with trace context
	Logger *slog.Logger
	// IncludeRequestDetails adds request details to log context
	IncludeRequestDetails bool
}

// LogCorrelation returns a middleware that stores a trace-aware logger in the
// echo context and logs one line per completed request.
func LogCorrelation(logger *slog.Logger) echo.MiddlewareFunc {
	return LogCorrelationWithConfig(LogCorrelationConfig{Logger: logger})
}

// LogCorrelationWithConfig returns a middleware with custom configuration
func LogCorrelationWithConfig(config LogCorrelationConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = func(echo.Context) bool { return false }
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			start := time.Now()
			logger := createTraceAwareLogger(c, config.Logger, config.IncludeRequestDetails)
			c.Set(loggerKey, logger)

			err := next(c)

			logRequestCompletion(c, logger, err, time.Since(start))
			return err
		}
	}
}

// createTraceAwareLogger creates a logger with trace context and request details
func createTraceAwareLogger(c echo.Context, baseLogger *slog.Logger, includeRequestDetails bool) *slog.Logger {
	logger := baseLogger

	if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
		logger = logger.With("requestID", requestID)
	}

	span := trace.SpanFromContext(c.Request().Context())
	if sc := span.SpanContext(); sc.IsValid() {
		logger = logger.With(
			"traceID", sc.TraceID().String(),
			"spanID", sc.SpanID().String(),
		)
		if sc.TraceFlags().IsSampled() {
			logger = logger.With("traceSampled", true)
		}
	}

	if includeRequestDetails {
		req := c.Request()
		logger = logger.With(
			"method", req.Method,
			"route", SafePath(c),
			"userAgent", req.UserAgent(),
			"clientIP", c.RealIP(),
		)
	}

	return logger
}

// logRequestCompletion logs the completion of a request. Only the route
// template is logged, never the request path.
func logRequestCompletion(c echo.Context, logger *slog.Logger, err error, elapsed time.Duration) {
	res := c.Response()

	attrs := []any{
		"method", c.Request().Method,
		"route", SafePath(c),
		"status", res.Status,
		"size", res.Size,
		"duration", elapsed,
	}

	switch {
	case err != nil:
		attrs = append(attrs, "error", err)
		logger.Error("Request completed with error", attrs...)
	case res.Status >= 500:
		logger.Error("Request completed with server error", attrs...)
	case res.Status >= 400:
		logger.Warn("Request completed with client error", attrs...)
	default:
		logger.Info("Request completed successfully", attrs...)
	}
}

// GetLoggerFromContext retrieves the trace-aware logger from Echo context
func GetLoggerFromContext(c echo.Context) *slog.Logger {
	if logger, ok := c.Get(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return createTraceAwareLogger(c, slog.Default(), false)
}
