// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

package totp

import (
	"crypto/rand"
	"encoding/base32"
	"testing"
	"time"

	"github.com/pquerna/otp"
	ptotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undernetirc/otpsvg/internal/auth/oath"
)

var rfcSecret = base32.StdEncoding.EncodeToString([]byte("12345678901234567890"))

// Interop tests taken from https://tools.ietf.org/html/rfc6238#appendix-B,
// we only support sha1 right now
func TestGenerateTotp(t *testing.T) {
	totp, err := New(WithDigits(8))
	require.NoError(t, err)

	tests := []struct {
		timestamp int64
		otp       string
	}{
		{59, "94287082"},
		{1111111109, "07081804"},
		{1111111111, "14050471"},
		{1234567890, "89005924"},
		{2000000000, "69279037"},
		{20000000000, "65353130"},
	}

	for _, tt := range tests {
		code, err := totp.Compute(rfcSecret, time.Unix(tt.timestamp, 0).UTC())
		require.NoError(t, err)
		assert.Equal(t, tt.otp, code.Value, "timestamp %d", tt.timestamp)
		assert.Len(t, code.Value, 8)
	}
}

func TestComputeKnownAnswer(t *testing.T) {
	code, err := Compute(rfcSecret, time.Unix(59, 0), 30*time.Second, 8)
	require.NoError(t, err)
	assert.Equal(t, "94287082", code.Value)
	assert.Equal(t, uint64(1), code.Counter)
}

func TestComputeDeterministicWithinWindow(t *testing.T) {
	first, err := Compute(rfcSecret, time.Unix(1200, 0), DefaultPeriod, DefaultDigits)
	require.NoError(t, err)
	second, err := Compute(rfcSecret, time.Unix(1229, 0), DefaultPeriod, DefaultDigits)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeIgnoresTimeZone(t *testing.T) {
	now := time.Unix(1234567890, 0)
	tokyo := time.FixedZone("JST", 9*60*60)

	utc, err := Compute(rfcSecret, now.UTC(), DefaultPeriod, DefaultDigits)
	require.NoError(t, err)
	local, err := Compute(rfcSecret, now.In(tokyo), DefaultPeriod, DefaultDigits)
	require.NoError(t, err)

	assert.Equal(t, utc.Value, local.Value)
	assert.Equal(t, utc.Counter, local.Counter)
}

func TestComputeWindowChange(t *testing.T) {
	now := time.Unix(1700000000, 0)
	before, err := Compute(rfcSecret, now, DefaultPeriod, DefaultDigits)
	require.NoError(t, err)
	after, err := Compute(rfcSecret, now.Add(31*time.Second), DefaultPeriod, DefaultDigits)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, after.Counter-before.Counter, uint64(1))
}

func TestComputeValidityWindow(t *testing.T) {
	now := time.Unix(59, 0)
	code, err := Compute(rfcSecret, now, DefaultPeriod, DefaultDigits)
	require.NoError(t, err)

	assert.Equal(t, time.Unix(30, 0).UTC(), code.ValidFrom)
	assert.Equal(t, time.Unix(60, 0).UTC(), code.ValidUntil)
	assert.Equal(t, time.Second, code.Remaining(now))
	assert.Equal(t, time.Duration(0), code.Remaining(time.Unix(90, 0)))
}

func TestComputeInvalidSecret(t *testing.T) {
	for _, secret := range []string{"", "not base32!!"} {
		code, err := Compute(secret, time.Now(), DefaultPeriod, DefaultDigits)
		assert.ErrorIs(t, err, oath.ErrInvalidEncoding, "secret %q", secret)
		assert.Empty(t, code.Value)
	}
}

func TestNewRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want error
	}{
		{"zero period", []Option{WithPeriod(0)}, ErrInvalidPeriod},
		{"negative period", []Option{WithPeriod(-30 * time.Second)}, ErrInvalidPeriod},
		{"fractional period", []Option{WithPeriod(1500 * time.Millisecond)}, ErrInvalidPeriod},
		{"zero digits", []Option{WithDigits(0)}, ErrInvalidDigits},
		{"too many digits", []Option{WithDigits(11)}, ErrInvalidDigits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totp, err := New(tt.opts...)
			assert.Nil(t, totp)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewDefaults(t *testing.T) {
	totp, err := New()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, totp.Period())
	assert.Equal(t, 6, totp.Digits())
}

func TestCounter(t *testing.T) {
	assert.Equal(t, uint64(0), Counter(time.Unix(29, 0), DefaultPeriod))
	assert.Equal(t, uint64(1), Counter(time.Unix(30, 0), DefaultPeriod))
	assert.Equal(t, uint64(2), Counter(time.Unix(60, 0), DefaultPeriod))
	assert.Equal(t, uint64(0), Counter(time.Unix(-100, 0), DefaultPeriod))
	assert.Equal(t, uint64(100), Counter(time.Unix(6000, 0), time.Minute))
}

func TestComputeMatchesPquerna(t *testing.T) {
	raw := make([]byte, 20)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)

	for _, ts := range []int64{0, 59, 1111111109, 1700000000, 2000000000} {
		now := time.Unix(ts, 0).UTC()

		want, err := ptotp.GenerateCodeCustom(secret, now, ptotp.ValidateOpts{
			Period:    30,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})
		require.NoError(t, err)

		got, err := Compute(secret, now, DefaultPeriod, DefaultDigits)
		require.NoError(t, err)
		assert.Equal(t, want, got.Value, "timestamp %d", ts)
	}
}
