// Package colour provides semantic colour extraction from sampled pixels.
package colour

import (
	"math"
)

// HSL represents a colour in HSL space.
// H is in degrees [0, 360), S and L are in [0, 1].
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// ToHSL converts RGB to HSL colour space.
//
// When two channels share the maximum the hue branch is chosen by
// precedence: red, then green, then blue.
func ToHSL(rgb RGB) HSL {
	r := float64(rgb.R) / 255.0
	g := float64(rgb.G) / 255.0
	b := float64(rgb.B) / 255.0

	maxVal := math.Max(r, math.Max(g, b))
	minVal := math.Min(r, math.Min(g, b))
	delta := maxVal - minVal

	// Lightness.
	l := (maxVal + minVal) / 2.0

	// Achromatic.
	if delta == 0 {
		return HSL{H: 0, S: 0, L: l}
	}

	s := delta / (1 - math.Abs(2*l-1))

	// Hue, in sixths of the wheel.
	var h float64
	switch maxVal {
	case r:
		h = math.Mod((g-b)/delta, 6)
	case g:
		h = (b-r)/delta + 2
	case b:
		h = (r-g)/delta + 4
	}

	h *= 60
	if h < 0 {
		h += 360
	}

	return HSL{H: h, S: s, L: l}
}

// IsSkinTone reports whether a colour falls in the skin tone band
// (hue strictly between 10 and 45 degrees, unsaturated, not dark).
func IsSkinTone(hsl HSL) bool {
	return hsl.H > 10 && hsl.H < 45 && hsl.S < 0.6 && hsl.L > 0.3
}

// accentScore rewards saturation and penalises distance from mid lightness.
func accentScore(hsl HSL) float64 {
	saturationScore := hsl.S
	contrastScore := 1 - math.Abs(hsl.L-0.5)
	return saturationScore*0.7 + contrastScore*0.3
}
