// SPDX-License-Identifier: MIT
// SPDX-FileCopyRightText: Copyright (c) 2023 UnderNET

// Package routes defines the routes for the echo server.
package routes

import (
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/undernetirc/otpsvg/controllers"
	"github.com/undernetirc/otpsvg/internal/config"
	"github.com/undernetirc/otpsvg/internal/helper"
	"github.com/undernetirc/otpsvg/internal/telemetry"
	"github.com/undernetirc/otpsvg/middlewares"
)

// RouteService is a struct that holds the echo instance, the OTP image
// service and the optional telemetry provider
type RouteService struct {
	e                 *echo.Echo
	otpService        controllers.OTPImageService
	version           string
	logger            *slog.Logger
	telemetryProvider *telemetry.Provider
}

// NewRouteService creates a new RouteService
func NewRouteService(
	e *echo.Echo,
	otpService controllers.OTPImageService,
	version string,
	logger *slog.Logger,
) *RouteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RouteService{
		e:          e,
		otpService: otpService,
		version:    version,
		logger:     logger,
	}
}

// NewRouteServiceWithTelemetry creates a new RouteService with telemetry provider
func NewRouteServiceWithTelemetry(
	e *echo.Echo,
	otpService controllers.OTPImageService,
	version string,
	logger *slog.Logger,
	telemetryProvider *telemetry.Provider,
) *RouteService {
	r := NewRouteService(e, otpService, version, logger)
	r.telemetryProvider = telemetryProvider
	return r
}

// NewEcho returns an echo instance with the base middlewares. Request logging
// is left to LogCorrelation, which never logs the request path.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetOutput(os.Stdout)
	if config.ServiceDevMode.GetBool() {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.INFO)
	}
	e.Validator = helper.NewValidator()

	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	return e
}

// LoadRoutes loads the routes for the echo server
func LoadRoutes(r *RouteService) error {
	return LoadRoutesWithOptions(r, true)
}

// LoadRoutesWithOptions loads the routes for the echo server with additional options
func LoadRoutesWithOptions(r *RouteService, startServer bool) error {
	// Tracing first so the log correlation and metrics middlewares see the span
	if r.telemetryProvider.TracingEnabled() {
		r.e.Use(middlewares.HTTPTracing(r.telemetryProvider.GetTracerProvider(), r.serviceName()))
	}

	r.e.Use(middlewares.LogCorrelationWithConfig(middlewares.LogCorrelationConfig{
		Logger:                r.logger,
		IncludeRequestDetails: true,
	}))

	if r.telemetryProvider.MetricsEnabled() {
		meter := r.telemetryProvider.GetMeter("otpsvg-http")
		r.e.Use(middlewares.HTTPInstrumentation(meter, r.serviceName()))
	}

	// Register metrics endpoint if telemetry is enabled
	if r.telemetryProvider.IsEnabled() && r.telemetryProvider.Config().PrometheusEnabled {
		if err := telemetry.RegisterMetricsEndpoint(r.e, r.telemetryProvider); err != nil {
			log.Warnf("Failed to register metrics endpoint: %v", err)
		}
	}

	// Load routes using reflection by looking for methods ending in "Routes"
	reflType := reflect.TypeOf(r)
	for i := 0; i < reflType.NumMethod(); i++ {
		method := reflType.Method(i)
		if strings.HasSuffix(method.Name, "Routes") {
			reflect.ValueOf(r).MethodByName(method.Name).Call(nil)
		}
	}

	// Start echo server if requested
	if startServer {
		if err := r.e.Start(config.GetServerAddress()); err != nil {
			return err
		}
	}

	return nil
}

func (r *RouteService) serviceName() string {
	if r.telemetryProvider.IsEnabled() && r.telemetryProvider.Config().ServiceName != "" {
		return r.telemetryProvider.Config().ServiceName
	}
	return config.TelemetryServiceName.GetString()
}
