// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKTypeMethods(t *testing.T) {
	// Reset viper before each test
	viper.Reset()

	tests := []struct {
		name     string
		key      K
		setValue interface{}
		getFunc  func(K) interface{}
		want     interface{}
	}{
		{
			name:     "GetString",
			key:      ServiceHost,
			setValue: "test-host",
			getFunc:  func(k K) interface{} { return k.GetString() },
			want:     "test-host",
		},
		{
			name:     "GetBool",
			key:      ServiceDevMode,
			setValue: true,
			getFunc:  func(k K) interface{} { return k.GetBool() },
			want:     true,
		},
		{
			name:     "GetInt",
			key:      ServicePort,
			setValue: 8080,
			getFunc:  func(k K) interface{} { return k.GetInt() },
			want:     8080,
		},
		{
			name:     "GetUint",
			key:      ServicePort,
			setValue: uint(8080),
			getFunc:  func(k K) interface{} { return k.GetUint() },
			want:     uint(8080),
		},
		{
			name:     "GetFloat64",
			key:      TelemetryTracingSampleRate,
			setValue: 0.25,
			getFunc:  func(k K) interface{} { return k.GetFloat64() },
			want:     0.25,
		},
		{
			name:     "GetDuration",
			key:      ServiceShutdownTimeout,
			setValue: "3s",
			getFunc:  func(k K) interface{} { return k.GetDuration() },
			want:     3 * time.Second,
		},
		{
			name:     "GetStringMapString",
			key:      TelemetryOTLPHeaders,
			setValue: map[string]string{"authorization": "token"},
			getFunc:  func(k K) interface{} { return k.GetStringMapString() },
			want:     map[string]string{"authorization": "token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.key.Set(tt.setValue)
			got := tt.getFunc(tt.key)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	viper.Reset()
	DefaultConfig()

	assert.Equal(t, "localhost", ServiceHost.GetString())
	assert.Equal(t, 5003, ServicePort.GetInt())
	assert.False(t, ServiceDevMode.GetBool())
	assert.Equal(t, 10*time.Second, ServiceShutdownTimeout.GetDuration())
	assert.Equal(t, 30, OTPPeriod.GetInt())
	assert.Equal(t, 6, OTPDigits.GetInt())
	assert.Equal(t, 300, ImageWidth.GetInt())
	assert.Equal(t, 160, ImageHeight.GetInt())
	assert.Equal(t, "info", LogLevel.GetString())
	assert.Equal(t, "text", LogFormat.GetString())
	assert.False(t, TelemetryEnabled.GetBool())
	assert.Equal(t, "otpsvg", TelemetryServiceName.GetString())
	assert.Equal(t, "/metrics", TelemetryPrometheusEndpoint.GetString())
	assert.Equal(t, 1.0, TelemetryTracingSampleRate.GetFloat64())
	assert.False(t, TelemetryPrometheusAppOnly.GetBool())
	assert.Equal(t, 30*time.Second, GetOTPPeriod())
}

func TestInitConfig(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "config.yaml")
	configContent := []byte(`
service:
  host: "test-host"
  port: 9090
otp:
  digits: 8
image:
  width: 600
`)
	require.NoError(t, os.WriteFile(path, configContent, 0o644))

	InitConfig(path)

	assert.Equal(t, "test-host", ServiceHost.GetString())
	assert.Equal(t, 9090, ServicePort.GetInt())
	assert.Equal(t, 8, OTPDigits.GetInt())
	assert.Equal(t, 600, ImageWidth.GetInt())
	// untouched keys keep their defaults
	assert.Equal(t, 160, ImageHeight.GetInt())
	assert.Equal(t, 30, OTPPeriod.GetInt())
}

func TestInitConfigDirectory(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("log:\n  level: debug\n"), 0o644))

	InitConfig(dir)

	assert.Equal(t, "debug", LogLevel.GetString())
}

func TestInitConfigEnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("OTPSVG_OTP_PERIOD", "60")
	t.Setenv("OTPSVG_SERVICE_HOST", "0.0.0.0")

	InitConfig("")

	assert.Equal(t, 60, OTPPeriod.GetInt())
	assert.Equal(t, 60*time.Second, GetOTPPeriod())
	assert.Equal(t, "0.0.0.0", ServiceHost.GetString())
}

func TestGetServerAddress(t *testing.T) {
	viper.Reset()

	ServiceHost.Set("test-host")
	ServicePort.Set("8080")

	assert.Equal(t, "test-host:8080", GetServerAddress())

	ServiceHost.Set("::1")
	assert.Equal(t, "[::1]:8080", GetServerAddress())
}

type validatorFunc func(i interface{}) error

func (f validatorFunc) Validate(i interface{}) error {
	return f(i)
}

func TestValidate(t *testing.T) {
	viper.Reset()
	DefaultConfig()
	LogLevel.Set("DEBUG")

	var got Settings
	err := Validate(validatorFunc(func(i interface{}) error {
		got = i.(Settings)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Port:        5003,
		OTPPeriod:   30,
		OTPDigits:   6,
		ImageWidth:  300,
		ImageHeight: 160,
		LogLevel:    "debug",
		LogFormat:   "text",
	}, got)

	err = Validate(validatorFunc(func(interface{}) error {
		return errors.New("otp.digits must be 10 or less")
	}))
	require.Error(t, err)
	assert.Equal(t, "invalid configuration: otp.digits must be 10 or less", err.Error())
}
