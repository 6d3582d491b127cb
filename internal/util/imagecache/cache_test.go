package imagecache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	httputil "github.com/jmylchreest/accent/internal/util/http"
)

func TestGenerateFilename(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantExt string
	}{
		{name: "png", url: "https://example.com/cover.png", wantExt: ".png"},
		{name: "query stripped", url: "https://example.com/cover.webp?size=large", wantExt: ".webp"},
		{name: "no extension", url: "https://example.com/cover", wantExt: ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateFilename("anonymous", tt.url)
			if !strings.HasSuffix(got, tt.wantExt) {
				t.Errorf("generateFilename(%q) = %q, want suffix %q", tt.url, got, tt.wantExt)
			}
			if got != generateFilename("anonymous", tt.url) {
				t.Error("generateFilename() is not deterministic")
			}
			if got == generateFilename("use-credentials:abc", tt.url) {
				t.Error("generateFilename() should differ between scopes")
			}
		})
	}
}

func TestDownloadAndCache(t *testing.T) {
	var hits atomic.Int32
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte("cover-art"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	opts := CacheOptions{
		CacheDir: dir,
		Fetch:    httputil.FetchOptions{Headers: map[string]string{"Cookie": "session=1"}},
	}

	path, err := DownloadAndCache(context.Background(), srv.URL+"/cover.png", opts)
	if err != nil {
		t.Fatalf("DownloadAndCache() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("cached path %q not in %q", path, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading cached file: %v", err)
	}
	if string(data) != "cover-art" {
		t.Errorf("cached data = %q, want cover-art", data)
	}
	if gotCookie != "session=1" {
		t.Errorf("Cookie = %q, want session=1", gotCookie)
	}

	// A second call reuses the cached file.
	if _, err := DownloadAndCache(context.Background(), srv.URL+"/cover.png", opts); err != nil {
		t.Fatalf("DownloadAndCache() second call error = %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}

	opts.AllowOverwrite = true
	if _, err := DownloadAndCache(context.Background(), srv.URL+"/cover.png", opts); err != nil {
		t.Fatalf("DownloadAndCache() overwrite error = %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits = %d, want 2", n)
	}
}

func TestDownloadAndCacheInvalidURL(t *testing.T) {
	_, err := DownloadAndCache(context.Background(), "ftp://example.com/a.png", CacheOptions{CacheDir: t.TempDir()})
	if err == nil {
		t.Error("DownloadAndCache() expected error for non-HTTP URL")
	}
}

func TestDownloadAndCacheScopes(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("cover-art"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	url := srv.URL + "/cover.png"

	anon, err := DownloadAndCache(context.Background(), url, CacheOptions{CacheDir: dir, Scope: "anonymous"})
	if err != nil {
		t.Fatalf("DownloadAndCache() error = %v", err)
	}
	creds, err := DownloadAndCache(context.Background(), url, CacheOptions{CacheDir: dir, Scope: "use-credentials:abc"})
	if err != nil {
		t.Fatalf("DownloadAndCache() error = %v", err)
	}

	if anon == creds {
		t.Errorf("scopes share cache path %q", anon)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits = %d, want 2", n)
	}
}

func TestDownloadAndCacheValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>captive portal</html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	errNotImage := errors.New("not an image")
	opts := CacheOptions{
		CacheDir: dir,
		Validate: func([]byte) error { return errNotImage },
	}

	if _, err := DownloadAndCache(context.Background(), srv.URL+"/cover.png", opts); !errors.Is(err, errNotImage) {
		t.Errorf("DownloadAndCache() error = %v, want validation error", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("cache dir has %d entries, want 0", len(entries))
	}
}

func TestCachedPathAndRemove(t *testing.T) {
	dir := t.TempDir()
	opts := CacheOptions{CacheDir: dir, Scope: "anonymous"}

	path, err := CachedPath("https://example.com/cover.png", opts)
	if err != nil {
		t.Fatalf("CachedPath() error = %v", err)
	}
	if filepath.Dir(path) != dir || filepath.Ext(path) != ".png" {
		t.Errorf("CachedPath() = %q", path)
	}

	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still present after Remove (stat err %v)", err)
	}
	if err := Remove(path); err != nil {
		t.Errorf("Remove() of a missing file error = %v", err)
	}
}
