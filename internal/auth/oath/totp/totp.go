// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

// Package totp provides a time-based one-time password (TOTP) implementation.
package totp

import (
	"errors"
	"fmt"
	"time"

	"github.com/undernetirc/otpsvg/internal/auth/oath"
)

const (
	// DefaultPeriod is the RFC 6238 time step.
	DefaultPeriod = 30 * time.Second
	// DefaultDigits is the code length used by authenticator apps.
	DefaultDigits = 6
)

var (
	ErrInvalidPeriod = errors.New("totp period must be a positive whole number of seconds")
	ErrInvalidDigits = fmt.Errorf("totp digits must be between %d and %d", oath.MinDigits, oath.MaxDigits)
)

// TOTP represents a Time-based One-Time Password generator. It holds no key
// material and is safe for concurrent use.
type TOTP struct {
	period time.Duration
	digits int
}

// Option configures a TOTP.
type Option func(*TOTP)

// WithPeriod sets the time step.
func WithPeriod(period time.Duration) Option {
	return func(t *TOTP) { t.period = period }
}

// WithDigits sets the code length.
func WithDigits(digits int) Option {
	return func(t *TOTP) { t.digits = digits }
}

// New creates a new TOTP instance, defaulting to 30 second steps and 6 digits.
func New(opts ...Option) (*TOTP, error) {
	t := &TOTP{period: DefaultPeriod, digits: DefaultDigits}
	for _, opt := range opts {
		opt(t)
	}
	if err := validate(t.period, t.digits); err != nil {
		return nil, err
	}
	return t, nil
}

// Period returns the configured time step.
func (t *TOTP) Period() time.Duration {
	return t.period
}

// Digits returns the configured code length.
func (t *TOTP) Digits() int {
	return t.digits
}

// Code is a generated one-time password and the window it belongs to.
type Code struct {
	Value      string
	Counter    uint64
	ValidFrom  time.Time
	ValidUntil time.Time
}

// Remaining returns how long the code stays current after now.
func (c Code) Remaining(now time.Time) time.Duration {
	d := c.ValidUntil.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// String returns the code digits.
func (c Code) String() string {
	return c.Value
}

// Generate computes the current code for secret.
func (t *TOTP) Generate(secret string) (Code, error) {
	return t.Compute(secret, time.Now().UTC())
}

// Compute computes the code for secret at now. The only error it returns is a
// *oath.DecodeError for a secret that is not valid base32.
func (t *TOTP) Compute(secret string, now time.Time) (Code, error) {
	otp, err := oath.New(secret, t.digits)
	if err != nil {
		return Code{}, err
	}

	step := uint64(t.period / time.Second)
	counter := Counter(now, t.period)
	// nolint:gosec // counter*step is bounded by the unix time it was derived from
	from := time.Unix(int64(counter*step), 0).UTC()

	return Code{
		Value:      otp.GenerateOTP(counter),
		Counter:    counter,
		ValidFrom:  from,
		ValidUntil: from.Add(t.period),
	}, nil
}

// Compute is a one-shot form of New(WithPeriod(period), WithDigits(digits)).Compute.
func Compute(secret string, now time.Time, period time.Duration, digits int) (Code, error) {
	t, err := New(WithPeriod(period), WithDigits(digits))
	if err != nil {
		return Code{}, err
	}
	return t.Compute(secret, now)
}

// Counter returns floor(unix(now) / period). Times before the epoch map to 0.
func Counter(now time.Time, period time.Duration) uint64 {
	step := int64(period / time.Second)
	if step <= 0 {
		return 0
	}
	unix := now.UTC().Unix()
	if unix < 0 {
		return 0
	}
	return uint64(unix / step) // nolint:gosec // unix is non-negative
}

func validate(period time.Duration, digits int) error {
	if period < time.Second || period%time.Second != 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidPeriod, period)
	}
	if digits < oath.MinDigits || digits > oath.MaxDigits {
		return fmt.Errorf("%w, got %d", ErrInvalidDigits, digits)
	}
	return nil
}
