package cli_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/accent/internal/cli"
)

// writePNG writes a uniform w x h PNG into dir and returns its path.
func writePNG(t *testing.T, dir, name string, c color.NRGBA, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", name, err)
	}
	return path
}

// isolateEnv keeps the user's config file and ACCENT_* variables out of a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if key, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(key, "ACCENT_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

// run executes a fresh root command with args.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

var red = color.NRGBA{R: 200, G: 50, B: 50, A: 255}

func TestExtractCommand(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	imagePath := writePNG(t, dir, "red.png", red, 4, 4)

	t.Run("Hex", func(t *testing.T) {
		out, _, err := run(t, "extract", "-s", "1", imagePath)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		want := "#c83232\n#ffffff\n#000000\n#c83232\n"
		if out != want {
			t.Errorf("output = %q, want %q", out, want)
		}
	})

	t.Run("Text", func(t *testing.T) {
		out, _, err := run(t, "extract", "-s", "1", "-f", "text", imagePath)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		want := "Role       Hex\n" +
			"---------  -------\n" +
			"accent     #c83232\n" +
			"light      #ffffff\n" +
			"dark       #000000\n" +
			"palette 1  #c83232\n"
		if out != want {
			t.Errorf("output =\n%s\nwant:\n%s", out, want)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		out, _, err := run(t, "extract", "-s", "1", "--format", "json", imagePath)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", out, err)
		}
		if got["accent"] != "#c83232" || got["light"] != "#ffffff" || got["dark"] != "#000000" {
			t.Errorf("unexpected colours: %v", got)
		}
	})

	t.Run("PreviewWithoutTerminal", func(t *testing.T) {
		out, _, err := run(t, "extract", "-s", "1", "--preview", imagePath)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if strings.Contains(out, "\x1b[") {
			t.Errorf("Did not expect escape sequences when not writing to a terminal: %q", out)
		}
	})

	t.Run("OutputFile", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "colours.txt")
		out, _, err := run(t, "extract", "-s", "1", "-o", outPath, imagePath)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if out != "" {
			t.Errorf("Expected no stdout output, got %q", out)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("Failed to read output file: %v", err)
		}
		if !strings.HasPrefix(string(data), "#c83232\n") {
			t.Errorf("output file = %q", data)
		}
	})

	t.Run("Directory", func(t *testing.T) {
		out, _, err := run(t, "extract", "-s", "1", dir)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if !strings.HasPrefix(out, "#c83232\n") {
			t.Errorf("output = %q", out)
		}
	})
}

func TestExtractMultipleSources(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	first := writePNG(t, dir, "red.png", red, 2, 2)
	second := writePNG(t, dir, "white.png", color.NRGBA{R: 240, G: 240, B: 250, A: 255}, 2, 2)

	out, _, err := run(t, "extract", "-s", "1", "-f", "json", first, second)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	var got []struct {
		Source  string `json:"source"`
		Colours struct {
			Accent  string   `json:"accent"`
			Light   string   `json:"light"`
			Palette []string `json:"palette"`
		} `json:"colours"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(got))
	}
	if got[0].Source != first || got[1].Source != second {
		t.Errorf("sources = %q, %q", got[0].Source, got[1].Source)
	}
	if got[0].Colours.Accent != "#c83232" {
		t.Errorf("first accent = %s", got[0].Colours.Accent)
	}
	if got[1].Colours.Light != "#f0f0fa" {
		t.Errorf("second light = %s", got[1].Colours.Light)
	}

	out, _, err = run(t, "extract", "-s", "1", first, second)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(out, "# "+first+"\n") || !strings.Contains(out, "\n# "+second+"\n") {
		t.Errorf("Expected a header per source, got %q", out)
	}
}

func TestExtractErrors(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	imagePath := writePNG(t, dir, "red.png", red, 2, 2)
	bogus := filepath.Join(dir, "bogus.png")
	if err := os.WriteFile(bogus, []byte("dummy image data"), 0o600); err != nil {
		t.Fatalf("Failed to create dummy image file: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "NoArgs", args: []string{"extract"}, wantErr: "requires at least 1 arg"},
		{name: "MissingFile", args: []string{"extract", filepath.Join(dir, "missing.png")}, wantErr: "not found"},
		{name: "InvalidImage", args: []string{"extract", bogus}, wantErr: "unsupported or invalid image format"},
		{name: "InvalidFormat", args: []string{"extract", "-f", "yaml", imagePath}, wantErr: "unsupported format"},
		{name: "InvalidMode", args: []string{"extract", "-m", "video", imagePath}, wantErr: "invalid configuration"},
		{name: "InvalidResampler", args: []string{"extract", "--resampler", "lanczos", imagePath}, wantErr: "unknown resampler"},
		{name: "ZeroSampleSize", args: []string{"extract", "-s", "0", imagePath}, wantErr: "sample size"},
		{name: "InvalidCrossOrigin", args: []string{"extract", "--cross-origin", "same-origin", imagePath}, wantErr: "cross-origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestExtractSettingsPrecedence(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	imagePath := writePNG(t, dir, "red.png", red, 2, 2)
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte("resampler = \"lanczos\"\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, _, err := run(t, "--config", configPath, "extract", imagePath); err == nil {
		t.Error("Expected the config file value to be rejected")
	}

	t.Setenv("ACCENT_RESAMPLER", "nearest")
	if _, _, err := run(t, "--config", configPath, "extract", imagePath); err != nil {
		t.Errorf("Expected the environment to override the config file: %v", err)
	}

	t.Setenv("ACCENT_RESAMPLER", "lanczos")
	if _, _, err := run(t, "--config", configPath, "extract", "--resampler", "box", imagePath); err != nil {
		t.Errorf("Expected the flag to override the environment: %v", err)
	}
}

func TestVerboseLogging(t *testing.T) {
	isolateEnv(t)
	imagePath := writePNG(t, t.TempDir(), "red.png", red, 2, 2)

	_, stderr, err := run(t, "-v", "extract", imagePath)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(stderr, "loading image") {
		t.Errorf("Expected debug output on stderr, got %q", stderr)
	}

	_, stderr, err = run(t, "extract", imagePath)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if strings.Contains(stderr, "loading image") {
		t.Errorf("Did not expect debug output without --verbose, got %q", stderr)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "accent version ") {
		t.Errorf("output = %q", out)
	}
}
