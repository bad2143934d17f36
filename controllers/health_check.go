// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 UnderNET

package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthRecorder defines the interface for recording health check results
type HealthRecorder interface {
	RecordHealthCheck(ctx context.Context, status string)
}

type HealthCheckController struct {
	version  string
	recorder HealthRecorder
}

// NewHealthCheckController returns a health check controller. recorder may be nil.
func NewHealthCheckController(version string, recorder HealthRecorder) *HealthCheckController {
	return &HealthCheckController{version: version, recorder: recorder}
}

type HealthCheckResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// HealthCheck reports that the service is up. The service has no backing
// stores, so a response is always OK.
func (ctr *HealthCheckController) HealthCheck(c echo.Context) error {
	resp := &HealthCheckResponse{
		Status:  "OK",
		Version: ctr.version,
	}

	if ctr.recorder != nil {
		ctr.recorder.RecordHealthCheck(c.Request().Context(), resp.Status)
	}

	return c.JSON(http.StatusOK, resp)
}
