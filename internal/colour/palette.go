package colour

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RGB represents a sampled pixel colour in RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a lowercase hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// ToHex renders an RGB value as "#rrggbb".
func ToHex(rgb RGB) string {
	return rgb.Hex()
}

// ParseHex parses a "#rrggbb" or "rrggbb" string.
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("invalid hex colour %q: expected 6 digits", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}

	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// Sentinel colours used when no sample qualifies for a role.
const (
	Black = "#000000"
	White = "#ffffff"
)

// MaxPaletteSize is the maximum number of palette entries.
const MaxPaletteSize = 6

// ExtractedColors holds the semantic colours picked from an image.
type ExtractedColors struct {
	Accent  string   `json:"accent"`
	Light   string   `json:"light"`
	Dark    string   `json:"dark"`
	Palette []string `json:"palette"`
}

// EmptyColors returns the result used when there are no samples.
func EmptyColors() ExtractedColors {
	return ExtractedColors{
		Accent:  Black,
		Light:   White,
		Dark:    Black,
		Palette: []string{},
	}
}

// ToJSON converts the colours to indented JSON.
func (c ExtractedColors) ToJSON() ([]byte, error) {
	if c.Palette == nil {
		c.Palette = []string{}
	}
	return json.MarshalIndent(c, "", "  ")
}

// Roles returns the named roles in display order.
func (c ExtractedColors) Roles() []Role {
	return []Role{
		{Name: "accent", Hex: c.Accent},
		{Name: "light", Hex: c.Light},
		{Name: "dark", Hex: c.Dark},
	}
}

// Role pairs a semantic role name with its colour.
type Role struct {
	Name string
	Hex  string
}

// String returns a human-readable representation of the colours.
func (c ExtractedColors) String() string {
	var sb strings.Builder
	for _, r := range c.Roles() {
		fmt.Fprintf(&sb, "%-8s %s\n", r.Name+":", r.Hex)
	}
	if len(c.Palette) == 0 {
		sb.WriteString("palette: (empty)\n")
		return sb.String()
	}
	sb.WriteString("palette:\n")
	for i, hex := range c.Palette {
		fmt.Fprintf(&sb, "  %d: %s\n", i+1, hex)
	}
	return sb.String()
}
