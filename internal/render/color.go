// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package render

import (
	"fmt"
	"math/rand/v2"
)

const (
	pastelMin = 180
	pastelMax = 255
)

// ColorSource yields uniform integers in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type ColorSource interface {
	IntN(n int) int
}

// globalSource draws from the math/rand/v2 top-level generator, which is safe
// for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// RGB is an sRGB color.
type RGB struct {
	R, G, B uint8
}

// String formats the color as a CSS rgb() value.
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// PastelColor samples each channel independently and uniformly from [180, 255].
func PastelColor(src ColorSource) RGB {
	return RGB{R: pastelChannel(src), G: pastelChannel(src), B: pastelChannel(src)}
}

func pastelChannel(src ColorSource) uint8 {
	return uint8(pastelMin + src.IntN(pastelMax-pastelMin+1)) // nolint:gosec // at most 255
}
