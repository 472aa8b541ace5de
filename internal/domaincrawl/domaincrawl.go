// Package domaincrawl fetches homepage metadata for a single domain through
// the same three-rung ladder as page extraction: primary extractor, web
// archive, then a raw GET that tolerates invalid certificates.
package domaincrawl

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/extract"
	"github.com/landscout/landscout/internal/fetcher"
)

// Source method tags are part of the external data model and stay French.
const (
	MethodDirect  = "extraction directe"
	MethodArchive = "archive web"
	MethodRaw     = "accès direct"
)

// Error codes carried on a failed (or degraded) result.
const (
	ErrTrafi           = "ERR_TRAFI"
	ErrTrafiDownload   = "ERR_TRAFI_DOWNLOAD"
	ErrArchiveNotFound = "ERR_ARCHIVE_NOTFOUND"
	ErrArchiveHTTP     = "ERR_ARCHIVE_HTTP"
	ErrArchive         = "ERR_ARCHIVE"
	ErrSSL             = "ERR_SSL"
	ErrTimeout         = "ERR_TIMEOUT"
	ErrConnection      = "ERR_CONNECTION"
	ErrHTTPUnknown     = "ERR_HTTP_UNKNOWN"
	ErrHTTPAll         = "ERR_HTTP_ALL"
)

// errHTTPCode builds the status-specific tag, e.g. ERR_HTTP_404.
func errHTTPCode(status int) string {
	return fmt.Sprintf("ERR_HTTP_%d", status)
}

// Result is what one domain crawl yields. It always comes back to the
// caller; failures are carried in ErrorCode/ErrorMessage, never raised.
type Result struct {
	Domain          string
	HTTPStatus      int
	Title           string
	Description     string
	Keywords        string
	Language        string
	Content         string
	SourceMethod    string
	FetchedAt       time.Time
	FetchDurationMS int64
	RetryCount      int
	ErrorCode       string
	ErrorMessage    string
}

// OK reports whether any rung produced usable metadata.
func (r *Result) OK() bool { return r.SourceMethod != "" }

// Crawler runs the domain ladder. The shared fetcher client serves rungs
// one and two; rung three uses its own client with certificate checks off.
type Crawler struct {
	cfg      *config.Settings
	client   *fetcher.Client
	insecure *http.Client
	logger   *slog.Logger
}

// New wires a domain crawler around the shared HTTP client.
func New(cfg *config.Settings, client *fetcher.Client, logger *slog.Logger) *Crawler {
	return &Crawler{
		cfg:    cfg,
		client: client,
		insecure: &http.Client{
			Timeout: cfg.Domain.Timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: logger.With("component", "domaincrawl"),
	}
}

// Crawl runs the ladder for one bare domain name and always returns a
// result. The homepage URL is https://{domain} with an automatic plain-HTTP
// fallback at every fetching rung.
func (c *Crawler) Crawl(ctx context.Context, domain string) *Result {
	start := time.Now()
	res := &Result{Domain: domain, FetchedAt: start.UTC()}
	defer func() { res.FetchDurationMS = time.Since(start).Milliseconds() }()

	pageURL := "https://" + domain

	// Rung 1: fetch the homepage and run the primary extractor.
	body, status, fetchErr := c.fetchHome(ctx, domain, res)
	if fetchErr != nil {
		res.ErrorCode = ErrTrafiDownload
		res.ErrorMessage = fetchErr.Error()
	} else {
		res.HTTPStatus = status
		summary := extract.Summarize(body, pageURL)
		if summary.Extracted {
			c.apply(res, summary, MethodDirect)
			return res
		}
		res.ErrorCode = ErrTrafi
		res.ErrorMessage = "primary extractor produced no article"
	}

	// Rung 2: archive snapshot through the availability API.
	if summary, code, msg := c.tryArchive(ctx, pageURL); summary != nil {
		c.apply(res, summary, MethodArchive)
		return res
	} else {
		res.RetryCount++
		res.ErrorCode = code
		res.ErrorMessage = msg
	}

	// Rung 3: raw GET with certificate checks off; DOM meta alone is enough
	// at this rung.
	summary, status, code, msg := c.tryRaw(ctx, domain)
	res.RetryCount++
	if status > 0 {
		res.HTTPStatus = status
	}
	if summary != nil {
		c.apply(res, summary, MethodRaw)
		return res
	}
	res.ErrorCode = code
	res.ErrorMessage = msg

	c.logger.Warn("domain crawl failed",
		"domain", domain, "code", res.ErrorCode, "status", res.HTTPStatus)
	return res
}

// apply copies a summary onto the result and clears the error trail left by
// earlier rungs.
func (c *Crawler) apply(res *Result, s *extract.Summary, method string) {
	res.Title = s.Title
	res.Description = s.Description
	res.Keywords = s.Keywords
	res.Language = s.Language
	res.Content = s.Content
	res.SourceMethod = method
	res.ErrorCode = ""
	res.ErrorMessage = ""
}

// fetchHome GETs https://{domain}, falling back to plain HTTP when HTTPS
// yields a transport error or an error status. Returns the best body seen.
func (c *Crawler) fetchHome(ctx context.Context, domain string, res *Result) (string, int, error) {
	var lastErr error
	for i, target := range []string{"https://" + domain, "http://" + domain} {
		if i > 0 {
			res.RetryCount++
		}
		reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Domain.Timeout)
		fetch := c.client.GetAs(reqCtx, target, c.cfg.Domain.UserAgent)
		cancel()

		if fetch.Err != nil {
			lastErr = fetch.Err
			continue
		}
		if fetch.StatusCode >= 400 {
			lastErr = fmt.Errorf("HTTP %d", fetch.StatusCode)
			res.HTTPStatus = fetch.StatusCode
			continue
		}
		return string(fetch.Body), fetch.StatusCode, nil
	}
	return "", 0, lastErr
}

// tryArchive looks up and downloads the closest snapshot, then runs the
// primary extractor on it. A nil summary means the rung missed; code/msg
// say why.
func (c *Crawler) tryArchive(ctx context.Context, pageURL string) (*extract.Summary, string, string) {
	snapshotURL, err := extract.LookupSnapshot(ctx, c.client, &c.cfg.Extract, pageURL)
	if err != nil {
		return nil, ErrArchive, err.Error()
	}
	if snapshotURL == "" {
		return nil, ErrArchiveNotFound, "no archived snapshot"
	}

	html, err := extract.FetchSnapshot(ctx, c.client, &c.cfg.Extract, snapshotURL)
	if err != nil {
		return nil, ErrArchiveHTTP, err.Error()
	}

	summary := extract.Summarize(html, pageURL)
	if !summary.Extracted {
		return nil, ErrArchive, "snapshot produced no article"
	}
	return summary, "", ""
}

// tryRaw GETs the homepage with certificate verification off, HTTPS then
// HTTP. Any non-empty summary counts, DOM metadata included.
func (c *Crawler) tryRaw(ctx context.Context, domain string) (*extract.Summary, int, string, string) {
	var (
		lastCode = ErrHTTPAll
		lastMsg  = "all direct fetches failed"
		lastStat int
	)
	for _, target := range []string{"https://" + domain, "http://" + domain} {
		body, status, err := c.rawGet(ctx, target)
		if err != nil {
			lastCode = classifyTransport(err)
			lastMsg = err.Error()
			continue
		}
		lastStat = status
		if status >= 400 {
			lastCode = errHTTPCode(status)
			lastMsg = fmt.Sprintf("HTTP %d", status)
			continue
		}
		summary := extract.Summarize(body, target)
		if summary.Empty() {
			lastCode = ErrTrafi
			lastMsg = "no usable content"
			continue
		}
		return summary, status, "", ""
	}
	if lastStat == 0 && lastCode != ErrHTTPAll && !strings.HasPrefix(lastCode, "ERR_HTTP_") {
		// Both schemes died in transport; the specific cause stands.
		return nil, 0, lastCode, lastMsg
	}
	return nil, lastStat, lastCode, lastMsg
}

func (c *Crawler) rawGet(ctx context.Context, target string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("User-Agent", c.cfg.Domain.UserAgent)

	resp, err := c.insecure.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	limit := c.cfg.Fetcher.MaxBodySize
	if limit <= 0 {
		limit = 10 << 20
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(body), resp.StatusCode, nil
}

// classifyTransport maps a request error onto the ladder's error codes.
func classifyTransport(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var (
		hostnameErr x509.HostnameError
		unknownCA   x509.UnknownAuthorityError
		certErr     x509.CertificateInvalidError
		recordErr   tls.RecordHeaderError
	)
	if errors.As(err, &hostnameErr) || errors.As(err, &unknownCA) ||
		errors.As(err, &certErr) || errors.As(err, &recordErr) {
		return ErrSSL
	}
	msg := err.Error()
	if strings.Contains(msg, "x509:") || strings.Contains(msg, "tls:") {
		return ErrSSL
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection
	}
	return ErrHTTPUnknown
}
