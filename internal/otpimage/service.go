// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

// Package otpimage turns a shared secret into a rendered one-time password image.
package otpimage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/undernetirc/otpsvg/internal/auth/oath"
	"github.com/undernetirc/otpsvg/internal/auth/oath/totp"
	"github.com/undernetirc/otpsvg/internal/metrics"
	"github.com/undernetirc/otpsvg/internal/render"
	"github.com/undernetirc/otpsvg/internal/tracing"
)

// Renderer is the subset of *render.Renderer used by the service.
type Renderer interface {
	Render(outcome render.Outcome, width, height int) render.Image
}

// Service computes the current code for a secret and renders it. It keeps no
// per-request state and is safe for concurrent use.
type Service struct {
	generator *totp.TOTP
	renderer  Renderer
	width     int
	height    int
	now       func() time.Time
	metrics   *metrics.OTPMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer replaces the image renderer.
func WithRenderer(r Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// WithSize sets the default image size.
func WithSize(width, height int) Option {
	return func(s *Service) { s.width, s.height = width, height }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records render metrics.
func WithMetrics(m *metrics.OTPMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer records a span per render.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLogger sets the logger used for decode failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service using generator for codes.
func NewService(generator *totp.TOTP, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		renderer:  render.New(),
		width:     render.DefaultWidth,
		height:    render.DefaultHeight,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render renders secret at the default size.
func (s *Service) Render(ctx context.Context, secret string) render.Image {
	return s.RenderSize(ctx, secret, s.width, s.height)
}

// RenderSize renders the current code for secret. It never fails: a secret that
// cannot be decoded produces the error image.
func (s *Service) RenderSize(ctx context.Context, secret string, width, height int) render.Image {
	start := time.Now()

	tc := tracing.StartSpan(ctx, s.tracer, "otp.render",
		attribute.Int("image.width", width),
		attribute.Int("image.height", height),
		attribute.Int("secret.length", len(secret)),
	)
	defer tc.End()

	outcome := s.outcome(tc, secret)
	img := s.renderer.Render(outcome, width, height)

	s.metrics.RecordRender(tc, outcome.OK(), time.Since(start), len(img.Data))
	tc.AddBoolAttr("otp.success", outcome.OK())
	tc.AddIntAttr("image.bytes", len(img.Data))

	return img
}

// Invalid renders the error image for reason, e.g. for malformed request parameters.
func (s *Service) Invalid(ctx context.Context, reason string) render.Image {
	start := time.Now()
	img := s.renderer.Render(render.Invalid(reason), s.width, s.height)
	s.metrics.RecordRender(ctx, false, time.Since(start), len(img.Data))
	return img
}

func (s *Service) outcome(tc *tracing.TracedContext, secret string) render.Outcome {
	now := s.now().UTC()

	code, err := s.generator.Compute(secret, now)
	if err != nil {
		reason := err.Error()
		var decodeErr *oath.DecodeError
		if errors.As(err, &decodeErr) {
			reason = decodeErr.Reason
		}

		tc.RecordError(err)
		tc.AddStringAttr("otp.reject_reason", reason)
		s.metrics.RecordDecodeFailure(tc, reason)
		s.logger.DebugContext(tc, "Rejected OTP secret", "reason", reason, "secretLength", len(secret))
		return render.Invalid(reason)
	}

	remaining := code.Remaining(now)
	tc.AddAttrs(map[string]interface{}{
		"otp.counter":           code.Counter,
		"otp.digits":            len(code.Value),
		"otp.remaining_seconds": remaining.Seconds(),
	})
	tc.MarkSuccess()
	s.metrics.RecordCodeRemaining(tc, remaining)

	return render.Success(code.Value)
}
