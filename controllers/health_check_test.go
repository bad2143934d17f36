// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 UnderNET

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockHealthRecorder is a mock implementation of HealthRecorder
type MockHealthRecorder struct {
	mock.Mock
}

func (m *MockHealthRecorder) RecordHealthCheck(ctx context.Context, status string) {
	m.Called(ctx, status)
}

func TestHealthCheck(t *testing.T) {
	// Setup
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health-check", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	recorder := new(MockHealthRecorder)
	recorder.On("RecordHealthCheck", mock.Anything, "OK").Return()

	controller := NewHealthCheckController("1.2.3", recorder)

	// Execute
	err := controller.HealthCheck(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","version":"1.2.3"}`, rec.Body.String())

	recorder.AssertExpectations(t)
}

func TestHealthCheck_WithoutRecorder(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health-check", nil), rec)

	controller := NewHealthCheckController("", nil)

	assert.NoError(t, controller.HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK"}`, rec.Body.String())
}
