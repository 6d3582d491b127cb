package colour

import (
	"fmt"
	"slices"
)

// Mode selects a semantic picking variant.
type Mode string

const (
	// ModeDefault is the general purpose heuristic.
	ModeDefault Mode = "default"

	// ModeMusic is reserved for album art. It currently behaves like
	// ModeDefault.
	ModeMusic Mode = "music"
)

// ValidModes returns the accepted mode names.
func ValidModes() []Mode {
	return []Mode{ModeDefault, ModeMusic}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return slices.Contains(ValidModes(), m)
}

// ParseMode converts a string to a Mode. An empty string is ModeDefault.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeDefault, nil
	}
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid mode: %s (valid: %v)", s, ValidModes())
	}
	return m, nil
}

// Lightness thresholds for the light and dark roles.
const (
	lightThreshold = 0.85
	darkThreshold  = 0.2
)

// sample pairs an RGB value with its HSL.
type sample struct {
	rgb RGB
	hsl HSL
}

// Pick derives accent, light, dark and palette colours from samples.
// Every role has a defined fallback, so Pick never fails.
// All modes currently share one heuristic.
func Pick(samples []RGB, mode Mode) ExtractedColors {
	if len(samples) == 0 {
		return EmptyColors()
	}

	colours := make([]sample, len(samples))
	for i, rgb := range samples {
		colours[i] = sample{rgb: rgb, hsl: ToHSL(rgb)}
	}

	// The palette is resolved first; accent falls back to its first entry.
	palette := pickPalette(colours)

	result := ExtractedColors{
		Accent:  Black,
		Light:   White,
		Dark:    Black,
		Palette: palette,
	}

	if accent, ok := pickAccent(colours); ok {
		result.Accent = accent.Hex()
	} else if len(palette) > 0 {
		result.Accent = palette[0]
	}

	if light, ok := pickLight(colours); ok {
		result.Light = light.Hex()
	}
	if dark, ok := pickDark(colours); ok {
		result.Dark = dark.Hex()
	}

	return result
}

// pickPalette returns up to MaxPaletteSize colours, most saturated first.
func pickPalette(colours []sample) []string {
	sorted := slices.Clone(colours)
	slices.SortStableFunc(sorted, func(a, b sample) int {
		return compareDesc(a.hsl.S, b.hsl.S)
	})

	n := min(len(sorted), MaxPaletteSize)
	palette := make([]string, n)
	for i := 0; i < n; i++ {
		palette[i] = sorted[i].rgb.Hex()
	}
	return palette
}

// isAccentCandidate reports whether a colour is saturated, mid-lightness
// and not a skin tone.
func isAccentCandidate(hsl HSL) bool {
	return hsl.S > 0.35 &&
		hsl.L > 0.25 &&
		hsl.L < 0.75 &&
		!IsSkinTone(hsl)
}

// pickAccent returns the highest scoring accent candidate.
func pickAccent(colours []sample) (RGB, bool) {
	var candidates []sample
	for _, c := range colours {
		if isAccentCandidate(c.hsl) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return RGB{}, false
	}

	slices.SortStableFunc(candidates, func(a, b sample) int {
		return compareDesc(accentScore(a.hsl), accentScore(b.hsl))
	})
	return candidates[0].rgb, true
}

// pickLight returns the lightest colour above the light threshold.
// Ties keep the earliest sample.
func pickLight(colours []sample) (RGB, bool) {
	var best *sample
	for i := range colours {
		c := &colours[i]
		if c.hsl.L <= lightThreshold {
			continue
		}
		if best == nil || c.hsl.L > best.hsl.L {
			best = c
		}
	}
	if best == nil {
		return RGB{}, false
	}
	return best.rgb, true
}

// pickDark returns the darkest colour below the dark threshold.
// Ties keep the earliest sample.
func pickDark(colours []sample) (RGB, bool) {
	var best *sample
	for i := range colours {
		c := &colours[i]
		if c.hsl.L >= darkThreshold {
			continue
		}
		if best == nil || c.hsl.L < best.hsl.L {
			best = c
		}
	}
	if best == nil {
		return RGB{}, false
	}
	return best.rgb, true
}

// compareDesc orders larger values first.
func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
