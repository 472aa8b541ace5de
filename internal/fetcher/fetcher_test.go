package fetcher

import (
	"compress/gzip"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/landscout/landscout/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testClient(t *testing.T) *Client {
	t.Helper()
	cfg := config.Default()
	cfg.Crawler.RequestTimeout = 5 * time.Second
	c := New(cfg, testLogger())
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("ETag", `"abc123"`)
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer srv.Close()

	res := testClient(t).Get(context.Background(), srv.URL)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.StatusCode != 200 {
		t.Errorf("status = %d, want 200", res.StatusCode)
	}
	if !res.OK() {
		t.Error("OK() = false, want true")
	}
	if res.ContentType != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", res.ContentType)
	}
	if res.ETag != `"abc123"` {
		t.Errorf("etag = %q", res.ETag)
	}
	if string(res.Body) != "<html><body>hello</body></html>" {
		t.Errorf("body = %q", res.Body)
	}
}

func TestGetGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write([]byte("compressed payload"))
		gz.Close()
	}))
	defer srv.Close()

	res := testClient(t).Get(context.Background(), srv.URL)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if string(res.Body) != "compressed payload" {
		t.Errorf("body = %q, want decompressed payload", res.Body)
	}
}

func TestGetConnectionError(t *testing.T) {
	// Reserve a port then close it so nothing is listening.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := testClient(t).Get(context.Background(), url)
	if res.Err == nil {
		t.Fatal("expected an error for a closed port")
	}
	if res.StatusCode != 0 {
		t.Errorf("status = %d, want 0 for request-level failure", res.StatusCode)
	}
}

func TestGetRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	res := testClient(t).Get(context.Background(), srv.URL)
	if res.StatusCode != 429 {
		t.Fatalf("status = %d, want 429", res.StatusCode)
	}
	if res.RetryAfter != 7*time.Second {
		t.Errorf("retry after = %s, want 7s", res.RetryAfter)
	}
}

func TestMaxBodySize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Fetcher.MaxBodySize = 1024
	c := New(cfg, testLogger())
	defer c.Close()

	res := c.Get(context.Background(), srv.URL)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Body) != 1024 {
		t.Errorf("body size = %d, want truncated to 1024", len(res.Body))
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter(""); d != 5*time.Second {
		t.Errorf("empty header = %s, want 5s", d)
	}
	if d := parseRetryAfter("300"); d != 2*time.Minute {
		t.Errorf("large value = %s, want capped at 2m", d)
	}
}
