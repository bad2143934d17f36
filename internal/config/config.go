// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

// Package config provides typed access to the viper configuration.
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// K is a configuration key.
type K string

const (
	ServiceHost            K = `service.host`
	ServicePort            K = `service.port`
	ServiceDevMode         K = `service.dev_mode`
	ServiceShutdownTimeout K = `service.shutdown_timeout`

	OTPPeriod K = `otp.period`
	OTPDigits K = `otp.digits`

	ImageWidth  K = `image.width`
	ImageHeight K = `image.height`

	LogLevel  K = `log.level`
	LogFormat K = `log.format`

	TelemetryEnabled            K = `telemetry.enabled`
	TelemetryServiceName        K = `telemetry.service_name`
	TelemetryServiceVersion     K = `telemetry.service_version`
	TelemetryOTLPEndpoint       K = `telemetry.otlp_endpoint`
	TelemetryOTLPHeaders        K = `telemetry.otlp_headers`
	TelemetryOTLPInsecure       K = `telemetry.otlp_insecure`
	TelemetryPrometheusEnabled  K = `telemetry.prometheus.enabled`
	TelemetryPrometheusEndpoint K = `telemetry.prometheus.endpoint`
	TelemetryPrometheusAppOnly  K = `telemetry.prometheus.application_only`
	TelemetryTracingEnabled     K = `telemetry.tracing.enabled`
	TelemetryTracingSampleRate  K = `telemetry.tracing.sample_rate`
	TelemetryMetricsEnabled     K = `telemetry.metrics.enabled`
	TelemetryResourceAttributes K = `telemetry.resource_attributes`
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// OTPSVG_SERVICE_PORT for service.port.
const EnvPrefix = "OTPSVG"

// Get returns the raw value for the key
func (k K) Get() interface{} {
	return viper.Get(string(k))
}

// GetString returns the value of the key as a string
func (k K) GetString() string {
	return viper.GetString(string(k))
}

// GetStringMapString returns the value of the key as a map of strings
func (k K) GetStringMapString() map[string]string {
	return viper.GetStringMapString(string(k))
}

// GetBool returns the value of the key as a boolean
func (k K) GetBool() bool {
	return viper.GetBool(string(k))
}

// GetInt returns the value of the key as an int
func (k K) GetInt() int {
	return viper.GetInt(string(k))
}

// GetUint returns the value of the key as an uint
func (k K) GetUint() uint {
	return viper.GetUint(string(k))
}

// GetFloat64 returns the value of the key as a float64
func (k K) GetFloat64() float64 {
	return viper.GetFloat64(string(k))
}

// GetDuration returns the value of the key as a time.Duration
func (k K) GetDuration() time.Duration {
	return viper.GetDuration(string(k))
}

// Set sets the value of the key
func (k K) Set(value interface{}) {
	viper.Set(string(k), value)
}

// DefaultConfig sets the default configuration values
func DefaultConfig() {
	viper.SetDefault(string(ServiceHost), "localhost")
	viper.SetDefault(string(ServicePort), 5003)
	viper.SetDefault(string(ServiceDevMode), false)
	viper.SetDefault(string(ServiceShutdownTimeout), "10s")

	viper.SetDefault(string(OTPPeriod), 30)
	viper.SetDefault(string(OTPDigits), 6)

	viper.SetDefault(string(ImageWidth), 300)
	viper.SetDefault(string(ImageHeight), 160)

	viper.SetDefault(string(LogLevel), "info")
	viper.SetDefault(string(LogFormat), "text")

	viper.SetDefault(string(TelemetryEnabled), false)
	viper.SetDefault(string(TelemetryServiceName), "otpsvg")
	viper.SetDefault(string(TelemetryServiceVersion), "0.0.1-dev")
	viper.SetDefault(string(TelemetryOTLPEndpoint), "")
	viper.SetDefault(string(TelemetryOTLPHeaders), map[string]string{})
	viper.SetDefault(string(TelemetryOTLPInsecure), false)
	viper.SetDefault(string(TelemetryPrometheusEnabled), false)
	viper.SetDefault(string(TelemetryPrometheusEndpoint), "/metrics")
	viper.SetDefault(string(TelemetryPrometheusAppOnly), false)
	viper.SetDefault(string(TelemetryTracingEnabled), false)
	viper.SetDefault(string(TelemetryTracingSampleRate), 1.0)
	viper.SetDefault(string(TelemetryMetricsEnabled), false)
	viper.SetDefault(string(TelemetryResourceAttributes), map[string]string{})
}

// InitConfig loads defaults, the configuration file and environment overrides.
// path may be a directory containing config.yml or a file. An empty path searches
// the working directory and /etc/otpsvg; a missing file is not an error there.
func InitConfig(path string) {
	DefaultConfig()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	switch {
	case path == "":
		viper.SetConfigName("config")
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/otpsvg")
	case strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml"):
		viper.SetConfigFile(path)
	default:
		viper.SetConfigName("config")
		viper.SetConfigType("yml")
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			log.Fatalf("failed to read config: %s", err)
		}
	}
}

// GetServerAddress returns the address the HTTP server listens on
func GetServerAddress() string {
	return net.JoinHostPort(ServiceHost.GetString(), ServicePort.GetString())
}

// GetOTPPeriod returns the configured TOTP time step
func GetOTPPeriod() time.Duration {
	return time.Duration(OTPPeriod.GetInt()) * time.Second
}

// Settings is a validated snapshot of the settings the service depends on.
type Settings struct {
	Port        int    `json:"service.port" validate:"min=1,max=65535"`
	OTPPeriod   int    `json:"otp.period" validate:"min=1,max=3600"`
	OTPDigits   int    `json:"otp.digits" validate:"min=1,max=10"`
	ImageWidth  int    `json:"image.width" validate:"min=50,max=2000"`
	ImageHeight int    `json:"image.height" validate:"min=50,max=2000"`
	LogLevel    string `json:"log.level" validate:"oneof=debug info warn error"`
	LogFormat   string `json:"log.format" validate:"oneof=text json"`
}

// Validator validates a struct using its validate tags.
type Validator interface {
	Validate(i interface{}) error
}

// CurrentSettings reads the current values into a Settings snapshot.
func CurrentSettings() Settings {
	return Settings{
		Port:        ServicePort.GetInt(),
		OTPPeriod:   OTPPeriod.GetInt(),
		OTPDigits:   OTPDigits.GetInt(),
		ImageWidth:  ImageWidth.GetInt(),
		ImageHeight: ImageHeight.GetInt(),
		LogLevel:    strings.ToLower(LogLevel.GetString()),
		LogFormat:   strings.ToLower(LogFormat.GetString()),
	}
}

// Validate checks the current configuration with v.
func Validate(v Validator) error {
	if err := v.Validate(CurrentSettings()); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
