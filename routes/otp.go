// SPDX-License-Identifier: MIT
// SPDX-FileCopyRightText: Copyright (c) 2025 UnderNET

package routes

import (
	"github.com/labstack/gommon/log"

	"github.com/undernetirc/otpsvg/controllers"
	"github.com/undernetirc/otpsvg/internal/config"
)

// IndexRoutes adds the preview page and the favicon
func (r *RouteService) IndexRoutes() {
	log.Info("Loading index routes")
	c := controllers.NewIndexController()
	r.e.GET("/", c.Index)
	r.e.GET("/favicon.ico", c.Favicon)
}

// OTPRoutes adds the catch-all route turning the request path into an OTP image
func (r *RouteService) OTPRoutes() {
	log.Info("Loading OTP image routes")
	c := controllers.NewOTPController(r.otpService, config.ImageWidth.GetInt(), config.ImageHeight.GetInt())
	r.e.GET("/*", c.GetOTPImage)
}
