// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package render

const (
	faviconColor = "#4caf50"
	faviconGlyph = "\U0001F511" // key
)

// Favicon returns the site icon: a key on a green circle.
func Favicon() Image {
	doc := svgDocument{
		ViewBox: "0 0 100 100",
		Circle:  &svgCirc{CX: "50", CY: "50", R: "40", Fill: faviconColor},
		Texts: []svgText{{
			X:          "50",
			Y:          "60",
			FontFamily: "Arial",
			FontSize:   "40",
			TextAnchor: "middle",
			Fill:       "white",
			Value:      faviconGlyph,
		}},
	}
	return Image{Data: doc.bytes(), ContentType: ContentType}
}
