// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package middlewares

import (
	"github.com/labstack/echo/v4"
)

// UnknownRoute labels requests that did not match a registered route
const UnknownRoute = "unknown"

// SafePath returns the matched route template (e.g. "/*") instead of the
// request path. The OTP secret travels in the path, so telemetry and logs
// must only ever see the template.
func SafePath(c echo.Context) string {
	if route := c.Path(); route != "" {
		return route
	}
	return UnknownRoute
}
