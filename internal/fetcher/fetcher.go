// Package fetcher provides the HTTP client used by the crawl engine, the
// archive fallback and the media analyzer. It handles compressed bodies
// (gzip, deflate, brotli), redirect policy and body size limits.
package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/landscout/landscout/internal/config"
)

// Result is the outcome of a single fetch. StatusCode 0 means the request
// never produced an HTTP response (DNS, TLS, timeout, refused connection);
// Err carries the cause.
type Result struct {
	URL           string
	FinalURL      string
	StatusCode    int
	Body          []byte
	ContentType   string
	ContentLength int64
	LastModified  *time.Time
	ETag          string
	RetryAfter    time.Duration
	Duration      time.Duration
	Err           error
}

// OK reports whether the fetch produced a 2xx response.
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client wraps net/http with the pipeline's fetch policy.
type Client struct {
	client *http.Client
	cfg    *config.FetcherSettings
	logger *slog.Logger
}

// New builds a pooled HTTP client from the fetcher settings.
func New(cfg *config.Settings, logger *slog.Logger) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Fetcher.MaxIdleConns / 2,
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Fetcher.TLSInsecure,
		},
		DisableCompression: true, // decompression is handled below, including brotli
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !cfg.Fetcher.FollowRedirects {
			return http.ErrUseLastResponse
		}
		if len(via) >= cfg.Fetcher.MaxRedirects {
			return fmt.Errorf("max redirects (%d) reached", cfg.Fetcher.MaxRedirects)
		}
		return nil
	}

	return &Client{
		client: &http.Client{
			Transport:     transport,
			Timeout:       cfg.Crawler.RequestTimeout,
			CheckRedirect: redirectPolicy,
		},
		cfg:    &cfg.Fetcher,
		logger: logger.With("component", "fetcher"),
	}
}

// Get fetches a URL. A non-nil Result always comes back; request-level
// failures set StatusCode 0 and Err, HTTP-level failures carry the status
// and whatever body arrived.
func (c *Client) Get(ctx context.Context, rawURL string) *Result {
	return c.get(ctx, rawURL, c.cfg.UserAgent)
}

// GetAs fetches a URL with an explicit User-Agent; the domain crawler uses
// it for its escalation rungs.
func (c *Client) GetAs(ctx context.Context, rawURL, userAgent string) *Result {
	return c.get(ctx, rawURL, userAgent)
}

func (c *Client) get(ctx context.Context, rawURL, userAgent string) *Result {
	result := &Result{URL: rawURL, FinalURL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		result.Err = fmt.Errorf("build request: %w", err)
		return result
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	resp, err := c.client.Do(req)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.FinalURL = resp.Request.URL.String()
	result.ContentType = resp.Header.Get("Content-Type")
	result.ETag = resp.Header.Get("ETag")
	if t, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
		result.LastModified = &t
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		result.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}

	var reader io.Reader = resp.Body
	if c.cfg.MaxBodySize > 0 {
		reader = io.LimitReader(reader, c.cfg.MaxBodySize)
	}
	reader, err = decompressReader(resp, reader)
	if err != nil {
		result.Err = fmt.Errorf("decompress: %w", err)
		return result
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		result.Err = fmt.Errorf("read body: %w", err)
		return result
	}
	result.Body = body
	result.ContentLength = int64(len(body))

	c.logger.Debug("fetch complete",
		"url", rawURL,
		"status", result.StatusCode,
		"size", len(body),
		"duration", result.Duration,
	)
	return result
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// decompressReader wraps a reader with the decompressor matching the
// response's Content-Encoding.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// parseRetryAfter parses Retry-After as integer seconds or HTTP-date,
// capped at 2 minutes.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil {
		if secs > 120 {
			secs = 120
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		d := time.Until(t)
		if d < 0 {
			return time.Second
		}
		if d > 2*time.Minute {
			return 2 * time.Minute
		}
		return d
	}
	return 5 * time.Second
}
