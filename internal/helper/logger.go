// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 UnderNET

package helper

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	slogformatter "github.com/samber/slog-formatter"
)

// redacted replaces the value of any attribute named in SensitiveLogKeys.
const redacted = "********"

// SensitiveLogKeys are attribute keys whose values never reach the log output.
var SensitiveLogKeys = []string{"secret", "key"}

// ParseLogLevel converts a configured level name into a slog.Level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// NewLogger builds the process logger writing to w in text or json format.
// Sensitive attributes are redacted and error attributes are expanded.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	formatters := []slogformatter.Formatter{slogformatter.ErrorFormatter("error")}
	for _, key := range SensitiveLogKeys {
		formatters = append(formatters, slogformatter.FormatByKey(key, func(slog.Value) slog.Value {
			return slog.StringValue(redacted)
		}))
	}

	return slog.New(slogformatter.NewFormatterHandler(formatters...)(handler)), nil
}
