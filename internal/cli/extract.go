package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/accent/internal/config"
	"github.com/jmylchreest/accent/internal/extract"
	"github.com/jmylchreest/accent/internal/image"
)

// outputFlags control how results are printed.
type outputFlags struct {
	format  string
	output  string
	preview bool
}

func newExtractCmd(global *globalOptions) *cobra.Command {
	settings := &settingsFlags{}
	out := &outputFlags{}

	cmd := &cobra.Command{
		Use:   "extract <image|url>...",
		Short: "Extract semantic colours from images",
		Long: `Extract an accent colour, a light colour, a dark colour and a palette
of up to six colours from one or more images.

Supported image formats: JPEG, PNG, GIF, WebP

Settings are read from the config file, then ACCENT_* environment
variables, then flags; later sources win.

Examples:
  # Extract colours from a wallpaper
  accent extract wallpaper.jpg

  # Show a table with colour swatches
  accent extract --format text --preview wallpaper.png

  # Extract from a remote image as JSON
  accent extract -f json https://example.com/cover.jpg

  # Extract from a random image in a directory using a smaller grid
  accent extract -s 32 ~/Pictures/wallpapers`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, global, settings, out)
		},
	}

	settings.register(cmd.Flags())
	cmd.Flags().StringVarP(&out.format, "format", "f", formatHex, "output format (hex, json, text)")
	cmd.Flags().StringVarP(&out.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&out.preview, "preview", false, "show colour swatches in the terminal")

	return cmd
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, args []string, global *globalOptions, settings *settingsFlags, out *outputFlags) error {
	if err := validateFormat(out.format); err != nil {
		return err
	}

	logger := global.logger(cmd.ErrOrStderr())

	cfg, err := resolveConfig(global.configPath, cmd.Flags(), settings, envLookup)
	if err != nil {
		return err
	}

	extractor, err := newExtractor(cfg, logger)
	if err != nil {
		return err
	}

	results := make([]sourceColours, 0, len(args))
	for _, arg := range args {
		if err := image.ValidateImagePath(arg); err != nil {
			return fmt.Errorf("invalid image path: %w", err)
		}

		source, err := image.ResolveImagePath(arg)
		if err != nil {
			return fmt.Errorf("failed to resolve image path: %w", err)
		}
		if source != arg {
			logger.Info("selected image from directory", "dir", arg, "image", source)
		}

		colours, err := extractor.Extract(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("failed to extract colours from %s: %w", source, err)
		}
		logger.Debug("extracted colours", "source", source, "accent", colours.Accent)

		results = append(results, sourceColours{Source: source, Colours: colours})
	}

	// Swatches are only drawn on a terminal, never into files.
	p := previewer{}
	if out.output == "" {
		p = newPreviewer(cmd.OutOrStdout(), out.preview)
	}

	output, err := formatResults(results, out.format, p)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if out.output != "" {
		logger.Debug("writing output", "path", out.output)
		if err := os.WriteFile(out.output, []byte(output), 0o644); err != nil { // #nosec G306 - output is not sensitive
			return fmt.Errorf("failed to write output file: %w", err)
		}
		logger.Info("wrote colours", "path", out.output)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// newExtractor builds an extractor backed by the smart loader.
func newExtractor(cfg config.Config, logger hclog.Logger) (*extract.Extractor, error) {
	loader := image.NewSmartLoader(cfg.LoaderOptions(logger))

	extractor, err := extract.New(loader, cfg.ExtractOptions(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	return extractor, nil
}
