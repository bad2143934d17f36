// SPDX-License-Identifier: MIT
// SPDX-FileCopyRightText: Copyright (c) 2023 UnderNET

// Package routes defines the routes for the echo server.
package routes

import (
	"github.com/labstack/gommon/log"

	"github.com/undernetirc/otpsvg/controllers"
	"github.com/undernetirc/otpsvg/internal/telemetry"
)

// HealthCheckRoutes Adds health check endpoint to determine if the service is up (useful for load balancers or k8s)
func (r *RouteService) HealthCheckRoutes() {
	log.Info("Loading health check routes")

	var recorder controllers.HealthRecorder
	if r.telemetryProvider.MetricsEnabled() {
		hm, err := telemetry.NewHealthMetrics(
			r.telemetryProvider.GetMeter("otpsvg-health"),
			r.serviceName(),
			r.version,
		)
		if err != nil {
			log.Warnf("Failed to create health metrics: %v", err)
		} else {
			recorder = hm
		}
	}

	c := controllers.NewHealthCheckController(r.version, recorder)
	r.e.GET("/health-check", c.HealthCheck)
}
