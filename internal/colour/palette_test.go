package colour

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
)

var hexPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestRGBHex(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want string
	}{
		{
			name: "black",
			rgb:  RGB{R: 0, G: 0, B: 0},
			want: "#000000",
		},
		{
			name: "white",
			rgb:  RGB{R: 255, G: 255, B: 255},
			want: "#ffffff",
		},
		{
			name: "zero padded",
			rgb:  RGB{R: 1, G: 2, B: 3},
			want: "#010203",
		},
		{
			name: "saturated red",
			rgb:  RGB{R: 200, G: 50, B: 50},
			want: "#c83232",
		},
		{
			name: "lowercase digits",
			rgb:  RGB{R: 171, G: 205, B: 239},
			want: "#abcdef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rgb.Hex(); got != tt.want {
				t.Errorf("Hex() = %s, want %s", got, tt.want)
			}
			if got := ToHex(tt.rgb); got != tt.want {
				t.Errorf("ToHex() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHexWellFormed(t *testing.T) {
	for r := 0; r <= 255; r += 5 {
		for g := 0; g <= 255; g += 5 {
			for b := 0; b <= 255; b += 5 {
				rgb := RGB{R: uint8(r), G: uint8(g), B: uint8(b)}
				if hex := ToHex(rgb); !hexPattern.MatchString(hex) {
					t.Fatalf("ToHex(%v) = %q, not well formed", rgb, hex)
				}
			}
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    RGB
		wantErr bool
	}{
		{name: "with hash", input: "#c83232", want: RGB{R: 200, G: 50, B: 50}},
		{name: "without hash", input: "abcdef", want: RGB{R: 171, G: 205, B: 239}},
		{name: "uppercase", input: "#FFFFFF", want: RGB{R: 255, G: 255, B: 255}},
		{name: "too short", input: "#fff", wantErr: true},
		{name: "not hex", input: "#gggggg", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHex(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRGBString(t *testing.T) {
	rgb := RGB{R: 10, G: 20, B: 30}
	if got := rgb.String(); got != "rgb(10, 20, 30)" {
		t.Errorf("String() = %s, want rgb(10, 20, 30)", got)
	}
}

func TestExtractedColorsToJSON(t *testing.T) {
	t.Run("empty palette renders as array", func(t *testing.T) {
		data, err := ExtractedColors{Accent: Black, Light: White, Dark: Black}.ToJSON()
		if err != nil {
			t.Fatalf("ToJSON() error = %v", err)
		}
		if !strings.Contains(string(data), `"palette": []`) {
			t.Errorf("expected empty palette array, got %s", data)
		}
	})

	t.Run("fields", func(t *testing.T) {
		in := ExtractedColors{
			Accent:  "#c83232",
			Light:   "#f0f0fa",
			Dark:    "#14141e",
			Palette: []string{"#c83232", "#14141e"},
		}
		data, err := in.ToJSON()
		if err != nil {
			t.Fatalf("ToJSON() error = %v", err)
		}

		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		for _, key := range []string{"accent", "light", "dark", "palette"} {
			if _, ok := out[key]; !ok {
				t.Errorf("missing key %q in %s", key, data)
			}
		}
	})
}

func TestExtractedColorsString(t *testing.T) {
	s := EmptyColors().String()
	if !strings.Contains(s, "accent:  #000000") {
		t.Errorf("String() missing accent line:\n%s", s)
	}
	if !strings.Contains(s, "palette: (empty)") {
		t.Errorf("String() missing empty palette marker:\n%s", s)
	}

	s = ExtractedColors{Accent: "#c83232", Light: White, Dark: Black, Palette: []string{"#c83232"}}.String()
	if !strings.Contains(s, "  1: #c83232") {
		t.Errorf("String() missing palette entry:\n%s", s)
	}
}
