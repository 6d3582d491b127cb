// Package imagecache provides utilities for downloading and caching remote images.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	httputil "github.com/jmylchreest/accent/internal/util/http"
)

// CacheOptions configures image caching behavior.
type CacheOptions struct {
	// CacheDir is the directory where images will be cached.
	// If empty, defaults to ~/.cache/accent/images
	CacheDir string

	// Filename is the filename to use for the cached image.
	// If empty, uses a hash of the URL + original extension.
	Filename string

	// AllowOverwrite determines if existing cached files can be overwritten.
	// Default: false (reuse existing cached files).
	AllowOverwrite bool

	// Fetch configures the download request (timeout, headers).
	Fetch httputil.FetchOptions

	// Scope partitions the cache. An entry written under one scope is
	// never returned for another, so responses fetched with credentials
	// stay separate from anonymous ones.
	Scope string

	// Validate checks downloaded bytes before they are cached.
	// A nil Validate caches any successful response.
	Validate func(data []byte) error
}

// DefaultCacheDir returns the default cache directory path.
func DefaultCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		// Fallback to home directory if cache dir not available.
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "accent", "images"), nil
	}
	return filepath.Join(cacheDir, "accent", "images"), nil
}

// generateFilename creates a deterministic filename from a scope and URL.
// Uses SHA256 hash of scope + URL + original file extension.
func generateFilename(scope, url string) string {
	hash := sha256.Sum256([]byte(scope + "\x00" + url))
	hashStr := hex.EncodeToString(hash[:16]) // Use first 16 bytes (32 hex chars)

	// Extract extension from URL (if present).
	ext := filepath.Ext(url)
	// Remove query parameters from extension.
	if idx := strings.IndexByte(ext, '?'); idx != -1 {
		ext = ext[:idx]
	}
	// Default to .jpg if no extension found.
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}

	return hashStr + ext
}

// CachedPath returns the path url is cached at for opts, whether or not
// the file exists yet.
func CachedPath(url string, opts CacheOptions) (string, error) {
	cacheDir := opts.CacheDir
	if cacheDir == "" {
		defaultDir, err := DefaultCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		cacheDir = defaultDir
	}

	filename := opts.Filename
	if filename == "" {
		filename = generateFilename(opts.Scope, url)
	}

	return filepath.Join(cacheDir, filename), nil
}

// Remove deletes a cached file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cached image: %w", err)
	}
	return nil
}

// DownloadAndCache downloads a remote image and saves it to the cache directory.
// Returns the local file path where the image was saved.
func DownloadAndCache(ctx context.Context, url string, opts CacheOptions) (string, error) {
	// Validate URL.
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	cachedPath, err := CachedPath(url, opts)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(cachedPath), 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Check if file already exists.
	if !opts.AllowOverwrite {
		if _, err := os.Stat(cachedPath); err == nil {
			// File exists - return cached path.
			return cachedPath, nil
		}
	}

	// Download the image.
	data, err := httputil.Fetch(ctx, url, opts.Fetch)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	if opts.Validate != nil {
		if err := opts.Validate(data); err != nil {
			return "", fmt.Errorf("refusing to cache %s: %w", url, err)
		}
	}

	// Write to cache file.
	if err := os.WriteFile(cachedPath, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}

	return cachedPath, nil
}
