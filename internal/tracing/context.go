// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

// Package tracing wraps OpenTelemetry spans for service operations.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/undernetirc/otpsvg/internal/auth/oath"
)

// TracerName is the instrumentation scope used by StartSpan when no tracer is given.
const TracerName = "github.com/undernetirc/otpsvg"

// TracedContext wraps a context and span to provide convenient tracing methods
// This eliminates the need for repeated trace.SpanFromContext() calls
type TracedContext struct {
	context.Context
	span trace.Span
}

// StartSpan starts a span named name. A nil tracer uses the global provider.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) *TracedContext {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return &TracedContext{Context: ctx, span: span}
}

// Span returns the underlying span
func (tc *TracedContext) Span() trace.Span {
	return tc.span
}

// End ends the span.
func (tc *TracedContext) End() {
	if tc.span != nil {
		tc.span.End()
	}
}

// AddAttrs adds multiple attributes to the span at once
func (tc *TracedContext) AddAttrs(attrs map[string]interface{}) {
	if !tc.recording() {
		return
	}

	converted := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		converted = append(converted, convertToAttribute(key, value))
	}
	tc.span.SetAttributes(converted...)
}

// AddStringAttr adds a string attribute (convenience method)
func (tc *TracedContext) AddStringAttr(key, value string) {
	if tc.recording() {
		tc.span.SetAttributes(attribute.String(key, value))
	}
}

// AddIntAttr adds an int attribute (convenience method)
func (tc *TracedContext) AddIntAttr(key string, value int) {
	if tc.recording() {
		tc.span.SetAttributes(attribute.Int(key, value))
	}
}

// AddBoolAttr adds a bool attribute (convenience method)
func (tc *TracedContext) AddBoolAttr(key string, value bool) {
	if tc.recording() {
		tc.span.SetAttributes(attribute.Bool(key, value))
	}
}

// RecordError records an error in the span with its category
func (tc *TracedContext) RecordError(err error) {
	if !tc.recording() || err == nil {
		return
	}

	tc.span.RecordError(err)
	tc.span.SetStatus(codes.Error, err.Error())
	tc.span.SetAttributes(
		attribute.String("error.category", categorizeError(err)),
		attribute.String("error.type", fmt.Sprintf("%T", err)),
	)
}

// MarkSuccess marks the current operation as successful
func (tc *TracedContext) MarkSuccess() {
	if tc.recording() {
		tc.span.SetStatus(codes.Ok, "")
		tc.span.SetAttributes(attribute.Bool("operation.success", true))
	}
}

func (tc *TracedContext) recording() bool {
	return tc.span != nil && tc.span.IsRecording()
}

func categorizeError(err error) string {
	if errors.Is(err, oath.ErrInvalidEncoding) {
		return "validation"
	}
	return "internal"
}

// convertToAttribute converts a Go value to an OpenTelemetry attribute
func convertToAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case uint64:
		if v > math.MaxInt64 {
			return attribute.String(key, strconv.FormatUint(v, 10))
		}
		return attribute.Int64(key, int64(v))
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
