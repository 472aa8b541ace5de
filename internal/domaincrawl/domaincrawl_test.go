package domaincrawl

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/fetcher"
	"github.com/landscout/landscout/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

const homepageHTML = `<html lang="fr"><head>
<title>Société d'énergie</title>
<meta name="description" content="Production et distribution d'énergie renouvelable.">
<meta name="keywords" content="énergie, solaire, éolien">
</head><body><article>
<p>La société produit de l'énergie renouvelable depuis vingt ans et alimente
plusieurs régions. Les installations solaires et éoliennes couvrent une part
croissante de la consommation. Le réseau de distribution est modernisé chaque
année pour absorber la production variable des parcs.</p>
<p>Les investissements récents portent sur le stockage et sur l'adaptation du
réseau aux nouvelles sources décentralisées de production locale.</p>
</article></body></html>`

const metaOnlyHTML = `<html lang="fr"><head>
<title>Accueil</title>
<meta name="description" content="Site vitrine minimal.">
</head><body><p>ok</p></body></html>`

// hostOf strips the scheme from an httptest server URL so it can play the
// part of a bare domain name.
func hostOf(t *testing.T, serverURL string) string {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse %q: %v", serverURL, err)
	}
	return u.Host
}

func newCrawler(t *testing.T, archiveHandler http.HandlerFunc) *Crawler {
	t.Helper()
	if archiveHandler == nil {
		archiveHandler = func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"archived_snapshots": {}}`)
		}
	}
	archive := httptest.NewServer(archiveHandler)
	t.Cleanup(archive.Close)

	cfg := config.Default()
	cfg.Extract.ArchiveBaseURL = archive.URL

	client := fetcher.New(cfg, testLogger())
	t.Cleanup(func() { client.Close() })
	return New(cfg, client, testLogger())
}

func TestCrawlDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, homepageHTML)
	}))
	defer srv.Close()

	c := newCrawler(t, nil)
	res := c.Crawl(context.Background(), hostOf(t, srv.URL))

	if !res.OK() {
		t.Fatalf("crawl failed: %s %s", res.ErrorCode, res.ErrorMessage)
	}
	if res.SourceMethod != MethodDirect {
		t.Errorf("source_method = %q, want %q", res.SourceMethod, MethodDirect)
	}
	if res.HTTPStatus != http.StatusOK {
		t.Errorf("http_status = %d", res.HTTPStatus)
	}
	if !strings.Contains(res.Title, "énergie") {
		t.Errorf("title = %q", res.Title)
	}
	if res.Keywords == "" || res.Language != "fr" {
		t.Errorf("keywords = %q, language = %q", res.Keywords, res.Language)
	}
	if res.Content == "" {
		t.Error("content empty despite extracted article")
	}
	if res.ErrorCode != "" {
		t.Errorf("error_code = %q on success", res.ErrorCode)
	}
	// The HTTPS attempt against a plain HTTP port counts as a retry.
	if res.RetryCount < 1 {
		t.Errorf("retry_count = %d, want >= 1", res.RetryCount)
	}
}

func TestCrawlArchiveRescue(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	snapshot := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, homepageHTML)
	}))
	defer snapshot.Close()

	c := newCrawler(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"archived_snapshots": {"closest": {"url": %q, "available": true}}}`,
			snapshot.URL+"/snap")
	})
	res := c.Crawl(context.Background(), hostOf(t, down.URL))

	if !res.OK() {
		t.Fatalf("crawl failed: %s %s", res.ErrorCode, res.ErrorMessage)
	}
	if res.SourceMethod != MethodArchive {
		t.Errorf("source_method = %q, want %q", res.SourceMethod, MethodArchive)
	}
	if res.Title == "" || res.Content == "" {
		t.Errorf("title = %q, content len = %d", res.Title, len(res.Content))
	}
}

func TestCrawlRawMetaFallback(t *testing.T) {
	// Too little text for the extractor; DOM meta alone must carry rung 3.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, metaOnlyHTML)
	}))
	defer srv.Close()

	c := newCrawler(t, nil)
	res := c.Crawl(context.Background(), hostOf(t, srv.URL))

	if !res.OK() {
		t.Fatalf("crawl failed: %s %s", res.ErrorCode, res.ErrorMessage)
	}
	if res.Title != "Accueil" {
		t.Errorf("title = %q", res.Title)
	}
	if res.Description != "Site vitrine minimal." {
		t.Errorf("description = %q", res.Description)
	}
	if res.SourceMethod != MethodDirect && res.SourceMethod != MethodRaw {
		t.Errorf("source_method = %q", res.SourceMethod)
	}
}

func TestCrawlDeadDomain(t *testing.T) {
	// Grab a port that is guaranteed closed.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	dead := l.Addr().String()
	l.Close()

	c := newCrawler(t, nil)
	res := c.Crawl(context.Background(), dead)

	if res.OK() {
		t.Fatalf("crawl succeeded against closed port: %+v", res)
	}
	if res.ErrorCode == "" || res.ErrorMessage == "" {
		t.Errorf("error_code = %q, error_message = %q", res.ErrorCode, res.ErrorMessage)
	}
	if res.ErrorCode != ErrConnection && res.ErrorCode != ErrHTTPAll {
		t.Errorf("error_code = %q, want connection-class failure", res.ErrorCode)
	}
	if res.FetchDurationMS < 0 {
		t.Errorf("fetch_duration_ms = %d", res.FetchDurationMS)
	}
	if res.RetryCount == 0 {
		t.Error("retry_count = 0 after exhausting the ladder")
	}
}

func TestCrawlHTTPErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newCrawler(t, nil)
	res := c.Crawl(context.Background(), hostOf(t, srv.URL))

	if res.OK() {
		t.Fatalf("crawl succeeded against 404: %+v", res)
	}
	if res.HTTPStatus != http.StatusNotFound {
		t.Errorf("http_status = %d", res.HTTPStatus)
	}
	if res.ErrorCode != "ERR_HTTP_404" {
		t.Errorf("error_code = %q, want ERR_HTTP_404", res.ErrorCode)
	}
}

func TestClassifyTransport(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{context.DeadlineExceeded, ErrTimeout},
		{&net.DNSError{Err: "no such host", Name: "nope.invalid"}, ErrConnection},
		{x509.UnknownAuthorityError{}, ErrSSL},
		{errors.New("tls: first record does not look like a TLS handshake"), ErrSSL},
		{errors.New("boom"), ErrHTTPUnknown},
	}
	for _, tc := range cases {
		if got := classifyTransport(tc.err); got != tc.want {
			t.Errorf("classifyTransport(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRunnerSweep(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, homepageHTML)
	}))
	defer srv.Close()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	dead := l.Addr().String()
	l.Close()

	st, err := store.Open(":memory:", testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	land, err := st.CreateLand(ctx, "domains", "", []string{"fr"})
	if err != nil {
		t.Fatalf("create land: %v", err)
	}
	for _, name := range []string{hostOf(t, srv.URL), dead} {
		if _, err := st.UpsertDomain(ctx, land.ID, name); err != nil {
			t.Fatalf("upsert domain %q: %v", name, err)
		}
	}

	runner := NewRunner(st, newCrawler(t, nil), testLogger())
	processed, failures, err := runner.Run(ctx, land.ID, 10)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 1 || failures != 1 {
		t.Fatalf("processed=%d failures=%d, want 1/1", processed, failures)
	}

	// Both rows were stamped, so the next sweep has nothing left.
	rest, err := st.SelectUnfetchedDomains(ctx, land.ID, 10)
	if err != nil {
		t.Fatalf("select unfetched: %v", err)
	}
	if len(rest) != 0 {
		t.Errorf("%d domains still unfetched", len(rest))
	}
}
