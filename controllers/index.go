// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package controllers

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/undernetirc/otpsvg/internal/render"
)

//go:embed static/index.html
var indexHTML []byte

type IndexController struct {
	favicon render.Image
}

func NewIndexController() *IndexController {
	return &IndexController{favicon: render.Favicon()}
}

// Index serves the preview page where a secret can be typed in and the
// resulting image URL copied.
func (ctr *IndexController) Index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

// Favicon serves the site icon
func (ctr *IndexController) Favicon(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return c.Blob(http.StatusOK, ctr.favicon.ContentType, ctr.favicon.Data)
}
