package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/accent/internal/extract"
	"github.com/jmylchreest/accent/internal/image"
)

func newWatchCmd(global *globalOptions) *cobra.Command {
	settings := &settingsFlags{}
	out := &outputFlags{}

	cmd := &cobra.Command{
		Use:   "watch <image>",
		Short: "Re-extract colours whenever an image changes",
		Long: `Watch an image file and print its semantic colours every time it is
written or replaced. A change that arrives while an extraction is still
running supersedes it. Stop with Ctrl+C.

Examples:
  # Follow the current wallpaper
  accent watch ~/.cache/wallpaper.png

  # Print JSON for a status bar
  accent watch -f json ~/.cache/wallpaper.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], global, settings, out)
		},
	}

	settings.register(cmd.Flags())
	cmd.Flags().StringVarP(&out.format, "format", "f", formatHex, "output format (hex, json, text)")
	cmd.Flags().BoolVar(&out.preview, "preview", false, "show colour swatches in the terminal")

	return cmd
}

// runWatch executes the watch command.
func runWatch(cmd *cobra.Command, path string, global *globalOptions, settings *settingsFlags, out *outputFlags) error {
	if err := validateFormat(out.format); err != nil {
		return err
	}
	if image.IsURL(path) {
		return fmt.Errorf("watch requires a local file: %s", path)
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	return watchFile(ctx, path, extractor, logger, w, out.format, newPreviewer(w, out.preview))
}

// watchFile extracts path once and again on every write or create event
// until ctx is done. Results are written to w as they arrive.
func watchFile(ctx context.Context, path string, extractor extract.ColourExtractor, logger hclog.Logger, w io.Writer, format string, p previewer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory so the file is still seen after being replaced.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	watcher := extract.NewWatcher(extractor, logger)
	defer watcher.Close()

	logger.Info("watching image", "path", abs)
	watcher.Watch(ctx, abs)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debug("image changed", "path", abs, "op", event.Op.String())
				watcher.Watch(ctx, abs)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)

		case res, ok := <-watcher.Updates():
			if !ok {
				return nil
			}
			if res.Err != nil {
				logger.Error("failed to extract colours", "path", res.Source, "error", res.Err)
				continue
			}
			output, err := formatResults([]sourceColours{{Source: res.Source, Colours: res.Colours}}, format, p)
			if err != nil {
				return err
			}
			fmt.Fprint(w, output)
		}
	}
}
