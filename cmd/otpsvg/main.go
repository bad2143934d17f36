// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

// Command otpsvg serves the current one-time password of a secret as an SVG image.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"

	"github.com/undernetirc/otpsvg/internal/auth/oath/totp"
	"github.com/undernetirc/otpsvg/internal/config"
	"github.com/undernetirc/otpsvg/internal/helper"
	"github.com/undernetirc/otpsvg/internal/metrics"
	"github.com/undernetirc/otpsvg/internal/otpimage"
	"github.com/undernetirc/otpsvg/internal/telemetry"
	"github.com/undernetirc/otpsvg/internal/tracing"
	"github.com/undernetirc/otpsvg/routes"
)

var (
	Version     = "0.0.1-dev"
	BuildDate   string
	BuildCommit string
)

func init() {
	configPath := flag.String("config", "", "path to a configuration file or the directory holding config.yml")
	versionFlag := flag.Bool("version", false, "print version and exit")

	flag.Parse()

	if *versionFlag {
		if BuildCommit == "" {
			BuildCommit = "unknown"
		}

		fmt.Printf("Version %s %s %s\n", Version, BuildCommit, BuildDate)
		os.Exit(0)
	}

	config.InitConfig(*configPath)

	if err := config.Validate(helper.NewValidator()); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := helper.NewLogger(os.Stdout, config.LogLevel.GetString(), config.LogFormat.GetString())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	provider, err := telemetry.Initialize(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = telemetry.ShutdownWithTimeout(provider, config.ServiceShutdownTimeout.GetDuration(), logger)
	}()

	generator, err := totp.New(
		totp.WithPeriod(config.GetOTPPeriod()),
		totp.WithDigits(config.OTPDigits.GetInt()),
	)
	if err != nil {
		return fmt.Errorf("invalid OTP settings: %w", err)
	}

	opts := []otpimage.Option{
		otpimage.WithSize(config.ImageWidth.GetInt(), config.ImageHeight.GetInt()),
		otpimage.WithLogger(logger),
	}
	if provider.TracingEnabled() {
		opts = append(opts, otpimage.WithTracer(provider.GetTracer(tracing.TracerName)))
	}
	if provider.MetricsEnabled() {
		otpMetrics, err := metrics.NewOTPMetrics(metrics.OTPMetricsConfig{
			Meter:       provider.GetMeter("otpsvg-otp"),
			ServiceName: config.TelemetryServiceName.GetString(),
		})
		if err != nil {
			return fmt.Errorf("failed to create OTP metrics: %w", err)
		}
		opts = append(opts, otpimage.WithMetrics(otpMetrics))
	}
	service := otpimage.NewService(generator, opts...)

	e := routes.NewEcho()
	r := routes.NewRouteServiceWithTelemetry(e, service, Version, logger, provider)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting otpsvg",
			"address", config.GetServerAddress(),
			"version", Version,
			"period", config.GetOTPPeriod(),
			"digits", config.OTPDigits.GetInt())
		errCh <- routes.LoadRoutes(r)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server", "timeout", config.ServiceShutdownTimeout.GetDuration())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ServiceShutdownTimeout.GetDuration())
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
