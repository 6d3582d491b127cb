package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/accent/internal/colour"
)

// Output formats accepted by --format.
const (
	formatHex  = "hex"
	formatJSON = "json"
	formatText = "text"
)

func validFormats() []string {
	return []string{formatHex, formatJSON, formatText}
}

func validateFormat(format string) error {
	switch format {
	case formatHex, formatJSON, formatText:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(validFormats(), ", "))
	}
}

// sourceColours pairs a source with the colours extracted from it.
type sourceColours struct {
	Source  string                 `json:"source"`
	Colours colour.ExtractedColors `json:"colours"`
}

// formatResults renders results in format. A single result in JSON is
// the bare colours object; several results form an array.
func formatResults(results []sourceColours, format string, p previewer) (string, error) {
	if err := validateFormat(format); err != nil {
		return "", err
	}

	if format == formatJSON {
		if len(results) == 1 {
			data, err := results[0].Colours.ToJSON()
			if err != nil {
				return "", fmt.Errorf("failed to convert to JSON: %w", err)
			}
			return string(data) + "\n", nil
		}

		out := make([]sourceColours, len(results))
		for i, r := range results {
			out[i] = r
			if out[i].Colours.Palette == nil {
				out[i].Colours.Palette = []string{}
			}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	}

	var sb strings.Builder
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "# %s\n", r.Source)
		}
		if format == formatHex {
			sb.WriteString(formatHexColours(r.Colours, p))
		} else {
			sb.WriteString(formatTextColours(r.Colours, p))
		}
	}
	return sb.String(), nil
}

// formatHexColours lists accent, light, dark and the palette, one per line.
func formatHexColours(c colour.ExtractedColors, p previewer) string {
	var sb strings.Builder
	line := func(hex string) {
		if s := p.swatch(hex); s != "" {
			sb.WriteString(s + " ")
		}
		sb.WriteString(hex + "\n")
	}

	for _, r := range c.Roles() {
		line(r.Hex)
	}
	for _, hex := range c.Palette {
		line(hex)
	}
	return sb.String()
}

// formatTextColours renders the colours as a role table.
func formatTextColours(c colour.ExtractedColors, p previewer) string {
	headers := []string{"Role", "Hex"}
	if p.enabled {
		headers = append(headers, "Preview")
	}
	table := NewTable(headers)

	row := func(name, hex string) {
		table.AddRow([]string{name, hex, p.swatch(hex)})
	}

	for _, r := range c.Roles() {
		row(r.Name, r.Hex)
	}
	if len(c.Palette) == 0 {
		table.AddRow([]string{"palette", "-"})
	}
	for i, hex := range c.Palette {
		row("palette "+strconv.Itoa(i+1), hex)
	}

	return table.Render()
}
