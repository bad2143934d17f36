// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultShutdownTimeout is the default timeout for telemetry shutdown
const DefaultShutdownTimeout = 10 * time.Second

// Initialize sets up OpenTelemetry from the viper configuration
func Initialize(ctx context.Context, logger *slog.Logger) (*Provider, error) {
	cfg, err := LoadConfigFromViper()
	if err != nil {
		return nil, fmt.Errorf("failed to load telemetry configuration: %w", err)
	}
	return InitializeWithConfig(ctx, cfg, logger)
}

// InitializeWithConfig sets up OpenTelemetry with a custom configuration
func InitializeWithConfig(ctx context.Context, cfg *Config, logger *slog.Logger) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("telemetry config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := ValidateExporterConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	if cfg.Enabled {
		logger.Info("Initializing OpenTelemetry",
			"service", cfg.ServiceName,
			"version", cfg.ServiceVersion,
			"tracing", cfg.TracingEnabled,
			"metrics", cfg.MetricsEnabled,
			"sampleRate", cfg.TracingSampleRate)
	} else {
		logger.Info("OpenTelemetry is disabled")
	}

	provider, err := NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry provider: %w", err)
	}

	return provider, nil
}

// ShutdownWithTimeout gracefully shuts down the telemetry provider
func ShutdownWithTimeout(provider *Provider, timeout time.Duration, logger *slog.Logger) error {
	if provider == nil || !provider.IsEnabled() {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	ctx, cancel := WithShutdownTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("Shutting down OpenTelemetry", "timeout", timeout)

	if err := provider.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown telemetry", "error", err)
		return err
	}

	logger.Info("OpenTelemetry shutdown completed")
	return nil
}
