// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

// Package render turns a one-time password into a self-contained SVG image.
package render

import (
	"encoding/xml"
	"strconv"
	"strings"
)

const (
	// ContentType is the MIME type of every rendered image.
	ContentType = "image/svg+xml"

	DefaultWidth  = 300
	DefaultHeight = 160

	labelText = "OTP"
	textColor = "#333333"

	errorBackground = "#ffebee"
	errorColor      = "#d32f2f"
	errorTitle      = "Invalid URL format"
	errorUsage      = "Use /secret_key"

	labelFonts = "'Hiragino Sans', 'Meiryo', sans-serif"
	codeFonts  = "'Courier New', monospace"
)

// Geometry at DefaultHeight. Baselines and font sizes scale with the height.
const (
	labelBaseline  = 45
	codeBaseline   = 110
	labelFontSize  = 20
	codeFontSize   = 36
	errorBaseline1 = 50
	errorBaseline2 = 70
	errorFontSize  = 16
	usageFontSize  = 14
)

// Image is a rendered document and its MIME type.
type Image struct {
	Data        []byte
	ContentType string
}

// Renderer builds OTP images. It is safe for concurrent use as long as its
// ColorSource is.
type Renderer struct {
	colors ColorSource
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithColorSource replaces the random source used for background colors.
func WithColorSource(src ColorSource) Option {
	return func(r *Renderer) {
		if src != nil {
			r.colors = src
		}
	}
}

// New returns a Renderer drawing background colors from math/rand/v2.
func New(opts ...Option) *Renderer {
	r := &Renderer{colors: globalSource{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = New()

// Render renders outcome with the default renderer.
func Render(outcome Outcome, width, height int) Image {
	return defaultRenderer.Render(outcome, width, height)
}

// Render produces the success or error document for outcome. Non-positive
// dimensions fall back to DefaultWidth x DefaultHeight.
func (r *Renderer) Render(outcome Outcome, width, height int) Image {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}

	var doc svgDocument
	if outcome.OK() {
		doc = r.codeDocument(outcome.Code(), width, height)
	} else {
		doc = errorDocument(outcome.Reason(), width, height)
	}

	return Image{Data: doc.bytes(), ContentType: ContentType}
}

func (r *Renderer) codeDocument(code string, width, height int) svgDocument {
	scale := float64(height) / DefaultHeight
	center := formatNumber(float64(width) / 2)

	return svgDocument{
		Width:  strconv.Itoa(width),
		Height: strconv.Itoa(height),
		Rect:   fullRect(PastelColor(r.colors).String()),
		Style: &svgStyle{Text: styleSheet(
			cssClass{name: "label", fonts: labelFonts, size: labelFontSize * scale, color: textColor},
			cssClass{name: "otp", fonts: codeFonts, size: codeFontSize * scale, color: textColor},
		)},
		Texts: []svgText{
			{X: center, Y: formatNumber(labelBaseline * scale), Class: "label", Value: labelText},
			{X: center, Y: formatNumber(codeBaseline * scale), Class: "otp", Value: code},
		},
	}
}

func errorDocument(reason string, width, height int) svgDocument {
	scale := float64(height) / DefaultHeight
	center := formatNumber(float64(width) / 2)

	return svgDocument{
		Width:  strconv.Itoa(width),
		Height: strconv.Itoa(height),
		Desc:   reason,
		Rect:   fullRect(errorBackground),
		Style: &svgStyle{Text: styleSheet(
			cssClass{name: "error", fonts: labelFonts, size: errorFontSize * scale, color: errorColor},
		)},
		Texts: []svgText{
			{X: center, Y: formatNumber(errorBaseline1 * scale), Class: "error", Value: errorTitle},
			{
				X:        center,
				Y:        formatNumber(errorBaseline2 * scale),
				Class:    "error",
				FontSize: formatNumber(usageFontSize * scale),
				Value:    errorUsage,
			},
		},
	}
}

type svgDocument struct {
	XMLName xml.Name  `xml:"http://www.w3.org/2000/svg svg"`
	Width   string    `xml:"width,attr,omitempty"`
	Height  string    `xml:"height,attr,omitempty"`
	ViewBox string    `xml:"viewBox,attr,omitempty"`
	Desc    string    `xml:"desc,omitempty"`
	Rect    *svgRect  `xml:"rect,omitempty"`
	Circle  *svgCirc  `xml:"circle,omitempty"`
	Style   *svgStyle `xml:"style,omitempty"`
	Texts   []svgText `xml:"text"`
}

type svgRect struct {
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
	Fill   string `xml:"fill,attr"`
}

type svgCirc struct {
	CX   string `xml:"cx,attr"`
	CY   string `xml:"cy,attr"`
	R    string `xml:"r,attr"`
	Fill string `xml:"fill,attr"`
}

type svgStyle struct {
	Text string `xml:",cdata"`
}

type svgText struct {
	X          string `xml:"x,attr"`
	Y          string `xml:"y,attr"`
	Class      string `xml:"class,attr,omitempty"`
	FontFamily string `xml:"font-family,attr,omitempty"`
	FontSize   string `xml:"font-size,attr,omitempty"`
	TextAnchor string `xml:"text-anchor,attr,omitempty"`
	Fill       string `xml:"fill,attr,omitempty"`
	Value      string `xml:",chardata"`
}

func fullRect(fill string) *svgRect {
	return &svgRect{Width: "100%", Height: "100%", Fill: fill}
}

// bytes never fails: every field is a string and the element tree is fixed.
func (d svgDocument) bytes() []byte {
	out, err := xml.Marshal(d)
	if err != nil {
		panic("render: marshal svg: " + err.Error())
	}
	return out
}

type cssClass struct {
	name  string
	fonts string
	size  float64
	color string
}

func styleSheet(classes ...cssClass) string {
	var b strings.Builder
	for _, c := range classes {
		b.WriteString(".")
		b.WriteString(c.name)
		b.WriteString(" { font-family: ")
		b.WriteString(c.fonts)
		b.WriteString("; font-size: ")
		b.WriteString(formatNumber(c.size))
		b.WriteString("px; font-weight: bold; fill: ")
		b.WriteString(c.color)
		b.WriteString("; text-anchor: middle; } ")
	}
	return strings.TrimSpace(b.String())
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
