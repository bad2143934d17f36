// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

package telemetry

import (
	"fmt"

	"github.com/undernetirc/otpsvg/internal/config"
)

// LoadConfigFromViper loads telemetry configuration from Viper
func LoadConfigFromViper() (*Config, error) {
	cfg := &Config{
		Enabled:            config.TelemetryEnabled.GetBool(),
		ServiceName:        config.TelemetryServiceName.GetString(),
		ServiceVersion:     config.TelemetryServiceVersion.GetString(),
		OTLPEndpoint:       config.TelemetryOTLPEndpoint.GetString(),
		OTLPHeaders:        config.TelemetryOTLPHeaders.GetStringMapString(),
		OTLPInsecure:       config.TelemetryOTLPInsecure.GetBool(),
		PrometheusEnabled:  config.TelemetryPrometheusEnabled.GetBool(),
		PrometheusEndpoint: config.TelemetryPrometheusEndpoint.GetString(),
		PrometheusAppOnly:  config.TelemetryPrometheusAppOnly.GetBool(),
		TracingEnabled:     config.TelemetryTracingEnabled.GetBool(),
		TracingSampleRate:  config.TelemetryTracingSampleRate.GetFloat64(),
		MetricsEnabled:     config.TelemetryMetricsEnabled.GetBool(),
		ResourceAttributes: config.TelemetryResourceAttributes.GetStringMapString(),
	}

	if err := ValidateExporterConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	return cfg, nil
}
