// Package config loads extraction settings from config files and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/accent/internal/colour"
	"github.com/jmylchreest/accent/internal/extract"
	"github.com/jmylchreest/accent/internal/image"
	httputil "github.com/jmylchreest/accent/internal/util/http"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "ACCENT_"

// Config holds extraction settings.
type Config struct {
	SampleSize  int               `toml:"sample_size" yaml:"sample_size"`
	Mode        string            `toml:"mode" yaml:"mode"`
	CrossOrigin string            `toml:"cross_origin" yaml:"cross_origin"`
	Resampler   string            `toml:"resampler" yaml:"resampler"`
	Timeout     string            `toml:"timeout" yaml:"timeout"`
	Cache       CacheConfig       `toml:"cache" yaml:"cache"`
	Credentials map[string]string `toml:"credentials" yaml:"credentials"`
}

// CacheConfig controls on-disk caching of remote images.
type CacheConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		SampleSize:  colour.DefaultSampleSize,
		Mode:        string(colour.ModeDefault),
		CrossOrigin: string(image.CrossOriginAnonymous),
		Resampler:   image.ResamplerBox,
		Timeout:     httputil.DefaultTimeout.String(),
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	return filepath.Join(dir, "accent", "config.toml"), nil
}

// Load reads the config file at path over the defaults. An empty path uses
// DefaultPath and is skipped when the file does not exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified config path, intended to be read
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := decode(path, data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// decode parses data by file extension, rejecting unknown keys.
func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported config format: %s (supported: .toml, .yaml, .yml)", filepath.Ext(path))
	}
}

// ApplyEnv overrides fields from ACCENT_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "SAMPLE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sSAMPLE_SIZE: %w", ErrInvalid, EnvPrefix, err)
		}
		c.SampleSize = n
	}
	if v, ok := lookup(EnvPrefix + "MODE"); ok {
		c.Mode = v
	}
	if v, ok := lookup(EnvPrefix + "CROSS_ORIGIN"); ok {
		c.CrossOrigin = v
	}
	if v, ok := lookup(EnvPrefix + "RESAMPLER"); ok {
		c.Resampler = v
	}
	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		c.Timeout = v
	}
	if v, ok := lookup(EnvPrefix + "CACHE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE: %w", ErrInvalid, EnvPrefix, err)
		}
		c.Cache.Enabled = b
	}
	if v, ok := lookup(EnvPrefix + "CACHE_DIR"); ok {
		c.Cache.Dir = v
	}
	if v, ok := lookup(EnvPrefix + "AUTH_HEADER"); ok {
		if c.Credentials == nil {
			c.Credentials = make(map[string]string)
		}
		c.Credentials["Authorization"] = v
	}
	return nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.SampleSize < 1 {
		return fmt.Errorf("%w: sample size must be a positive integer, got %d", ErrInvalid, c.SampleSize)
	}
	if _, err := colour.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := image.ParseCrossOrigin(c.CrossOrigin); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := image.NewResampler(c.Resampler); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses the HTTP timeout. An empty value is the default.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return httputil.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout: %w", ErrInvalid, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalid, c.Timeout)
	}
	return d, nil
}

// ExtractOptions returns the extractor options for a validated config.
func (c Config) ExtractOptions(logger hclog.Logger) extract.Options {
	mode, _ := colour.ParseMode(c.Mode)
	return extract.Options{
		SampleSize: c.SampleSize,
		Mode:       mode,
		Resampler:  c.Resampler,
		Logger:     logger,
	}
}

// LoaderOptions returns the image loader options for a validated config.
func (c Config) LoaderOptions(logger hclog.Logger) image.SmartLoaderOptions {
	crossOrigin, _ := image.ParseCrossOrigin(c.CrossOrigin)
	timeout, _ := c.TimeoutDuration()
	return image.SmartLoaderOptions{
		CrossOrigin: crossOrigin,
		Credentials: c.Credentials,
		Timeout:     timeout,
		Cache:       c.Cache.Enabled,
		CacheDir:    c.Cache.Dir,
		Logger:      logger,
	}
}
