// Package extract composes image loading, pixel sampling and semantic
// colour picking into a single call.
package extract

import (
	"context"
	"fmt"
	stdimage "image"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/accent/internal/colour"
	"github.com/jmylchreest/accent/internal/image"
)

// Options configures an Extractor.
type Options struct {
	// SampleSize is the side length of the downscaled sampling grid.
	SampleSize int

	// Mode selects the semantic picking variant.
	Mode colour.Mode

	// Resampler names the downscaling filter (see image.ValidResamplers).
	Resampler string

	// Logger receives debug output. Nil discards it.
	Logger hclog.Logger
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		SampleSize: colour.DefaultSampleSize,
		Mode:       colour.ModeDefault,
		Resampler:  image.ResamplerBox,
	}
}

// Validate validates the options.
func (o Options) Validate() error {
	if o.SampleSize < 1 {
		return fmt.Errorf("sample size must be at least 1, got %d", o.SampleSize)
	}
	if !o.Mode.Valid() {
		return fmt.Errorf("invalid mode: %s (valid: %v)", o.Mode, colour.ValidModes())
	}
	if _, err := image.NewResampler(o.Resampler); err != nil {
		return err
	}
	return nil
}

// Extractor loads images and derives their semantic colours.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	loader  image.Loader
	sampler *colour.Sampler
	opts    Options
	logger  hclog.Logger
}

// New creates an Extractor that acquires images through loader.
func New(loader image.Loader, opts Options) (*Extractor, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	resampler, err := image.NewResampler(opts.Resampler)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Extractor{
		loader:  loader,
		sampler: colour.NewSampler(resampler),
		opts:    opts,
		logger:  logger.Named("extract"),
	}, nil
}

// Extract loads source and returns its semantic colours.
// Load failures are returned wrapped and are not retried.
func (e *Extractor) Extract(ctx context.Context, source string) (colour.ExtractedColors, error) {
	e.logger.Debug("loading image", "source", source)

	img, err := e.loader.Load(ctx, source)
	if err != nil {
		return colour.ExtractedColors{}, err
	}
	if img == nil {
		return colour.ExtractedColors{}, fmt.Errorf("%w: loader returned no image for %s", image.ErrCapability, source)
	}

	b := img.Bounds()
	e.logger.Debug("image loaded", "source", source, "width", b.Dx(), "height", b.Dy())

	return e.ExtractImage(img)
}

// ExtractImage derives semantic colours from an already decoded image.
func (e *Extractor) ExtractImage(img stdimage.Image) (colour.ExtractedColors, error) {
	buf, err := image.ToBuffer(img)
	if err != nil {
		return colour.ExtractedColors{}, err
	}

	samples := e.sampler.Sample(buf, e.opts.SampleSize)
	colours := colour.Pick(samples, e.opts.Mode)

	e.logger.Debug("picked semantic colours",
		"samples", len(samples),
		"accent", colours.Accent,
		"light", colours.Light,
		"dark", colours.Dark,
		"palette", len(colours.Palette),
	)

	return colours, nil
}
