// Package image provides utilities for loading images and rendering them
// into pixel buffers for sampling.
package image

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"math/big"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	_ "golang.org/x/image/webp" // Register WebP format

	httputil "github.com/jmylchreest/accent/internal/util/http"
	"github.com/jmylchreest/accent/internal/util/imagecache"
)

var (
	// ErrLoad is returned when an image source cannot be fetched or decoded.
	ErrLoad = errors.New("failed to load image")

	// ErrCapability is returned when a decoded image cannot be rendered
	// into a pixel buffer.
	ErrCapability = errors.New("image cannot be rendered")
)

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given source.
	Load(ctx context.Context, source string) (image.Image, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func (l *FileLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: image path cannot be empty", ErrLoad)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: image file not found: %s", ErrLoad, path)
		}
		return nil, fmt.Errorf("%w: failed to stat image file: %w", ErrLoad, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: path is a directory, not a file: %s", ErrLoad, path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open image file: %w", ErrLoad, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image (format: %s): %w", ErrLoad, format, err)
	}

	return img, nil
}

// IsURL reports whether source is an HTTP(S) URL.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// SmartLoaderOptions configures remote image loading.
type SmartLoaderOptions struct {
	// CrossOrigin controls whether credential headers are sent.
	CrossOrigin CrossOrigin

	// Credentials are request headers sent only in use-credentials mode.
	Credentials map[string]string

	// Timeout is the HTTP request timeout. Zero uses the fetch default.
	Timeout time.Duration

	// Cache enables on-disk caching of remote images.
	Cache bool

	// CacheDir overrides the default cache directory.
	CacheDir string

	// Logger receives debug output. Nil discards it.
	Logger hclog.Logger
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
	opts       SmartLoaderOptions
	logger     hclog.Logger
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader(opts SmartLoaderOptions) *SmartLoader {
	if opts.CrossOrigin == "" {
		opts.CrossOrigin = CrossOriginAnonymous
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		opts:       opts,
		logger:     logger.Named("loader"),
	}
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, source string) (image.Image, error) {
	if IsURL(source) {
		return l.loadFromURL(ctx, source)
	}

	l.logger.Debug("loading image from file", "path", source)
	return l.fileLoader.Load(ctx, source)
}

// fetchOptions builds the HTTP options for the configured cross-origin mode.
func (l *SmartLoader) fetchOptions() httputil.FetchOptions {
	opts := httputil.FetchOptions{Timeout: l.opts.Timeout}
	if l.opts.CrossOrigin.SendsCredentials() && len(l.opts.Credentials) > 0 {
		opts.Headers = make(map[string]string, len(l.opts.Credentials))
		for k, v := range l.opts.Credentials {
			opts.Headers[k] = v
		}
	}
	return opts
}

// loadFromURL fetches and decodes an image from an HTTP(S) URL.
func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (image.Image, error) {
	fetchOpts := l.fetchOptions()
	l.logger.Debug("loading image from URL", "url", url, "cross_origin", l.opts.CrossOrigin, "cache", l.opts.Cache)

	if l.opts.Cache {
		return l.loadCached(ctx, url, fetchOpts)
	}

	data, err := httputil.Fetch(ctx, url, fetchOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch image from URL: %w", ErrLoad, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image (format: %s): %w", ErrLoad, format, err)
	}

	return img, nil
}

// cacheOptions keys the cache by the headers the request carries, so
// credentialed responses are never served to anonymous loads.
func (l *SmartLoader) cacheOptions(fetchOpts httputil.FetchOptions) imagecache.CacheOptions {
	return imagecache.CacheOptions{
		CacheDir: l.opts.CacheDir,
		Fetch:    fetchOpts,
		Scope:    headerScope(fetchOpts.Headers),
		Validate: func(data []byte) error {
			_, _, err := image.DecodeConfig(bytes.NewReader(data))
			return err
		},
	}
}

// headerScope returns "anonymous" for no headers and otherwise a digest of
// the sorted header pairs.
func headerScope(headers map[string]string) string {
	if len(headers) == 0 {
		return string(CrossOriginAnonymous)
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	h := sha256.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s\x00%s\n", k, headers[k])
	}
	return string(CrossOriginUseCredentials) + ":" + hex.EncodeToString(h.Sum(nil))
}

// loadCached loads url through the on-disk cache. An entry that fails to
// decode is removed so the next load fetches it again.
func (l *SmartLoader) loadCached(ctx context.Context, url string, fetchOpts httputil.FetchOptions) (image.Image, error) {
	path, err := imagecache.DownloadAndCache(ctx, url, l.cacheOptions(fetchOpts))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch image from URL: %w", ErrLoad, err)
	}
	l.logger.Debug("using cached image", "path", path)

	img, err := l.fileLoader.Load(ctx, path)
	if err != nil && ctx.Err() == nil {
		l.logger.Debug("removing unreadable cache entry", "path", path, "error", err)
		if rmErr := imagecache.Remove(path); rmErr != nil {
			l.logger.Warn("failed to remove cache entry", "path", path, "error", rmErr)
		}
	}
	return img, err
}

// ValidateImagePath checks if the given path is valid and points to a supported image file or directory.
// HTTP(S) URLs are only checked for format; they are fetched later.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}

	if IsURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file or directory not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}

	// Directories are scanned later.
	if info.IsDir() {
		return nil
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}

	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// isImageFile checks if a file has a supported image extension.
func isImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// ScanDirectoryForImages scans a directory and returns all valid image files.
// It does not recurse into subdirectories, but follows symlinks.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}
		if info.IsDir() {
			continue
		}

		if isImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}

	return imageFiles, nil
}

// SelectRandomImage selects a random image from a list of image paths.
func SelectRandomImage(imagePaths []string) (string, error) {
	if len(imagePaths) == 0 {
		return "", fmt.Errorf("image path list is empty")
	}

	maxIndex := big.NewInt(int64(len(imagePaths)))
	randomIndex, err := rand.Int(rand.Reader, maxIndex)
	if err != nil {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		index := int(binary.LittleEndian.Uint64(buf[:]) % uint64(len(imagePaths)))
		return imagePaths[index], nil
	}

	return imagePaths[randomIndex.Int64()], nil
}

// ResolveImagePath resolves a path that could be a file or directory.
// If the path is a directory, it scans for images and returns a random one.
// Files and HTTP(S) URLs are returned as-is.
func ResolveImagePath(path string) (string, error) {
	if IsURL(path) {
		return path, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return path, nil
	}

	imageFiles, err := ScanDirectoryForImages(path)
	if err != nil {
		return "", err
	}

	return SelectRandomImage(imageFiles)
}
