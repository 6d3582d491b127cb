package cli

import (
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/accent/internal/colour"
	"github.com/jmylchreest/accent/internal/config"
	"github.com/jmylchreest/accent/internal/image"
)

// settingsFlags are the extraction flags shared by extract and watch.
type settingsFlags struct {
	sampleSize  int
	mode        string
	crossOrigin string
	resampler   string
	timeout     string
	cache       bool
}

func (f *settingsFlags) register(fs *pflag.FlagSet) {
	def := config.Default()

	modes := make([]string, 0, len(colour.ValidModes()))
	for _, m := range colour.ValidModes() {
		modes = append(modes, string(m))
	}
	origins := make([]string, 0, len(image.ValidCrossOrigins()))
	for _, c := range image.ValidCrossOrigins() {
		origins = append(origins, string(c))
	}

	fs.IntVarP(&f.sampleSize, "sample-size", "s", def.SampleSize, "side length of the downscaled sampling grid")
	fs.StringVarP(&f.mode, "mode", "m", def.Mode, "picking mode ("+strings.Join(modes, ", ")+")")
	fs.StringVar(&f.crossOrigin, "cross-origin", def.CrossOrigin, "credentials policy for URLs ("+strings.Join(origins, ", ")+")")
	fs.StringVar(&f.resampler, "resampler", def.Resampler, "downscaling filter ("+strings.Join(image.ValidResamplers(), ", ")+")")
	fs.StringVar(&f.timeout, "timeout", def.Timeout, "HTTP request timeout")
	fs.BoolVar(&f.cache, "cache", def.Cache.Enabled, "cache downloaded images on disk")
}

// apply copies flags the user set explicitly onto cfg.
func (f *settingsFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("sample-size") {
		cfg.SampleSize = f.sampleSize
	}
	if fs.Changed("mode") {
		cfg.Mode = f.mode
	}
	if fs.Changed("cross-origin") {
		cfg.CrossOrigin = f.crossOrigin
	}
	if fs.Changed("resampler") {
		cfg.Resampler = f.resampler
	}
	if fs.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if fs.Changed("cache") {
		cfg.Cache.Enabled = f.cache
	}
}

// resolveConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order, and validates the result.
func resolveConfig(configPath string, fs *pflag.FlagSet, f *settingsFlags, lookup func(string) (string, bool)) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, err
	}

	f.apply(fs, &cfg)

	return cfg, cfg.Validate()
}

// envLookup reads the process environment.
func envLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}
