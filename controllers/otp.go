// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package controllers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/undernetirc/otpsvg/internal/render"
	"github.com/undernetirc/otpsvg/middlewares"
)

// OTPImageService renders OTP images. Implemented by *otpimage.Service.
type OTPImageService interface {
	RenderSize(ctx context.Context, secret string, width, height int) render.Image
	Invalid(ctx context.Context, reason string) render.Image
}

type OTPController struct {
	s      OTPImageService
	width  int
	height int
}

// NewOTPController returns a controller rendering images of width x height
// unless the request asks for another size.
func NewOTPController(s OTPImageService, width, height int) *OTPController {
	return &OTPController{s: s, width: width, height: height}
}

// OTPImageRequest holds the optional image size of an OTP request
type OTPImageRequest struct {
	Width  int `query:"width"  validate:"min=50,max=2000"`
	Height int `query:"height" validate:"min=50,max=2000"`
}

// GetOTPImage returns the current one-time password for the secret in the
// request path as an SVG image. The response is always 200: a bad secret or
// size produces the error image.
func (ctr *OTPController) GetOTPImage(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middlewares.GetLoggerFromContext(c)

	secret := c.Param("*")
	if unescaped, err := url.PathUnescape(secret); err == nil {
		secret = unescaped
	}

	req := &OTPImageRequest{
		Width:  ctr.width,
		Height: ctr.height,
	}

	var img render.Image
	if reason := parseImageSize(c, req); reason != "" {
		logger.Debug("Rejected image size", "reason", reason)
		img = ctr.s.Invalid(ctx, reason)
	} else if err := c.Validate(req); err != nil {
		logger.Debug("Rejected image size", "reason", err.Error())
		img = ctr.s.Invalid(ctx, err.Error())
	} else {
		img = ctr.s.RenderSize(ctx, secret, req.Width, req.Height)
	}

	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Blob(http.StatusOK, img.ContentType, img.Data)
}

// parseImageSize reads width and height from the query string into req and
// returns a reason when either is not a number.
func parseImageSize(c echo.Context, req *OTPImageRequest) string {
	if widthParam := c.QueryParam("width"); widthParam != "" {
		width, err := strconv.Atoi(widthParam)
		if err != nil {
			return "width must be a number"
		}
		req.Width = width
	}

	if heightParam := c.QueryParam("height"); heightParam != "" {
		height, err := strconv.Atoi(heightParam)
		if err != nil {
			return "height must be a number"
		}
		req.Height = height
	}

	return ""
}
