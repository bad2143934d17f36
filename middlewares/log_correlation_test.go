// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package middlewares

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tp := sdktrace.NewTracerProvider()

	e := echo.New()
	e.Use(middleware.RequestID())
	e.Use(HTTPTracing(tp, "otpsvg-test"))
	e.Use(LogCorrelationWithConfig(LogCorrelationConfig{
		Logger:                logger,
		IncludeRequestDetails: true,
	}))

	e.GET("/*", func(c echo.Context) error {
		GetLoggerFromContext(c).Info("Rendering image")
		return c.Blob(http.StatusOK, "image/svg+xml", []byte("<svg/>"))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+testSecret, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, buf.String(), testSecret)

	entries := decodeLogLines(t, &buf)
	require.Len(t, entries, 2)

	handlerEntry := entries[0]
	assert.Equal(t, "Rendering image", handlerEntry["msg"])
	assert.Equal(t, "/*", handlerEntry["route"])
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), handlerEntry["requestID"])
	assert.NotEmpty(t, handlerEntry["traceID"])
	assert.NotEmpty(t, handlerEntry["spanID"])

	completion := entries[1]
	assert.Equal(t, "INFO", completion["level"])
	assert.Equal(t, "Request completed successfully", completion["msg"])
	assert.Equal(t, "/*", completion["route"])
	assert.Equal(t, float64(http.StatusOK), completion["status"])
	assert.Equal(t, float64(len("<svg/>")), completion["size"])
}

func TestLogCorrelationLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(LogCorrelation(logger))
	e.GET("/missing", func(c echo.Context) error {
		return c.String(http.StatusNotFound, "nope")
	})
	e.GET("/broken", func(c echo.Context) error {
		return c.String(http.StatusInternalServerError, "broken")
	})
	e.GET("/failed", func(echo.Context) error {
		return errors.New("render failed")
	})

	tests := []struct {
		path  string
		level string
		msg   string
	}{
		{"/missing", "WARN", "Request completed with client error"},
		{"/broken", "ERROR", "Request completed with server error"},
		{"/failed", "ERROR", "Request completed with error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			buf.Reset()
			e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			entries := decodeLogLines(t, &buf)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0]["level"])
			assert.Equal(t, tt.msg, entries[0]["msg"])
			assert.Equal(t, tt.path, entries[0]["route"])
		})
	}

	assert.Contains(t, buf.String(), "render failed")
}

func TestLogCorrelationSkipper(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(LogCorrelationWithConfig(LogCorrelationConfig{
		Logger: logger,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health-check"
		},
	}))
	e.GET("/health-check", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health-check", nil))
	assert.Empty(t, buf.String())
}

func TestGetLoggerFromContext(t *testing.T) {
	e := echo.New()

	t.Run("stored logger", func(t *testing.T) {
		stored := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(loggerKey, stored)
		assert.Same(t, stored, GetLoggerFromContext(c))
	})

	t.Run("fallback", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.NotNil(t, GetLoggerFromContext(c))
	})
}

func TestSafePath(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+testSecret, nil), httptest.NewRecorder())
	assert.Equal(t, UnknownRoute, SafePath(c))

	c.SetPath("/*")
	assert.Equal(t, "/*", SafePath(c))
}
