package graph

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/extract"
	"github.com/landscout/landscout/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCanonicalizeIdempotent(t *testing.T) {
	urls := []string{
		"https://example.com/path",
		"https://example.com/path?id=42",
		"http://other.org/",
	}
	for _, u := range urls {
		once := Canonicalize("", u)
		twice := Canonicalize("", once)
		if once != twice {
			t.Errorf("canonicalize not idempotent: %q → %q → %q", u, once, twice)
		}
	}
}

func TestCanonicalizeTrackingStripped(t *testing.T) {
	withTracking := Canonicalize("", "https://x.com/p?utm_source=g&id=42&fbclid=Z")
	without := Canonicalize("", "https://x.com/p?id=42")
	if withTracking != without {
		t.Errorf("tracking params survived: %q vs %q", withTracking, without)
	}
	if withTracking != "https://x.com/p?id=42" {
		t.Errorf("canonical = %q, want https://x.com/p?id=42", withTracking)
	}
}

func TestCanonicalizeWPProxyUnwrap(t *testing.T) {
	got := Canonicalize("", "https://i0.wp.com/host/path?ssl=1")
	if got != "https://host/path" {
		t.Errorf("wp unwrap = %q, want https://host/path", got)
	}
}

func TestCanonicalizeRejects(t *testing.T) {
	base := "https://example.com/page"
	for _, href := range []string{
		"", "#section", "javascript:void(0)", "mailto:a@b.c", "tel:+123",
		"data:text/plain,x", "ftp://example.com/file",
	} {
		if got := Canonicalize(base, href); got != "" {
			t.Errorf("Canonicalize(%q) = %q, want rejection", href, got)
		}
	}
}

func TestCanonicalizeResolvesRelative(t *testing.T) {
	got := Canonicalize("https://example.com/dir/page", "../other")
	if got != "https://example.com/other" {
		t.Errorf("relative resolution = %q", got)
	}
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:", testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// seedSource creates a land with one crawled source expression.
func seedSource(t *testing.T, st *store.Store, url string, depth int) *store.Expression {
	t.Helper()
	ctx := context.Background()
	land, err := st.CreateLand(ctx, "graph-"+t.Name(), "", []string{"fr"})
	if err != nil {
		t.Fatalf("create land: %v", err)
	}
	domainID, err := st.UpsertDomain(ctx, land.ID, netloc(url))
	if err != nil {
		t.Fatalf("upsert domain: %v", err)
	}
	expr, err := st.UpsertExpression(ctx, land.ID, url, store.URLHash(url), &domainID, depth)
	if err != nil {
		t.Fatalf("upsert expression: %v", err)
	}
	return expr
}

func TestProcessPrimaryMarkdown(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	source := seedSource(t, st, "https://example.com/a", 0)
	b := NewBuilder(config.Default(), nil, testLogger())

	res := &extract.Result{
		SourceTag: extract.SourcePrimary,
		Readable: "Un article. [la suite](https://example.com/b) et " +
			"[ailleurs](https://other.org/c)\n![IMAGE](https://example.com/i.png)",
	}

	var stats Stats
	err := st.InTx(ctx, func(q *store.Queries) error {
		var err error
		stats, err = b.Process(ctx, q, source, res)
		return err
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if stats.ExpressionsCreated != 2 {
		t.Errorf("expressions created = %d, want 2", stats.ExpressionsCreated)
	}
	if stats.LinksCreated != 2 {
		t.Errorf("links created = %d, want 2", stats.LinksCreated)
	}
	if stats.MediaCreated != 1 {
		t.Errorf("media created = %d, want 1", stats.MediaCreated)
	}

	target, err := st.GetExpressionByHash(ctx, source.LandID, store.URLHash("https://example.com/b"))
	if err != nil {
		t.Fatalf("target lookup: %v", err)
	}
	if target.Depth != 1 {
		t.Errorf("target depth = %d, want 1", target.Depth)
	}

	links, err := st.OutgoingLinks(ctx, source.ID)
	if err != nil {
		t.Fatalf("outgoing links: %v", err)
	}
	byType := map[string]int{}
	for _, l := range links {
		byType[l.LinkType]++
	}
	if byType[store.LinkInternal] != 1 || byType[store.LinkExternal] != 1 {
		t.Errorf("link types = %v, want one internal and one external", byType)
	}
}

func TestProcessSkipsFailed(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	source := seedSource(t, st, "https://example.com/a", 0)
	b := NewBuilder(config.Default(), nil, testLogger())

	var stats Stats
	err := st.InTx(ctx, func(q *store.Queries) error {
		var err error
		stats, err = b.Process(ctx, q, source, &extract.Result{SourceTag: extract.SourceFailed})
		return err
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if stats.LinksCreated != 0 || stats.MediaCreated != 0 || stats.ExpressionsCreated != 0 {
		t.Errorf("failed extraction wrote rows: %+v", stats)
	}
}

func TestProcessDepthNeverDecreases(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	source := seedSource(t, st, "https://example.com/deep", 5)

	// Target already exists at depth 1.
	existing, err := st.UpsertExpression(ctx, source.LandID,
		"https://example.com/b", store.URLHash("https://example.com/b"), nil, 1)
	if err != nil {
		t.Fatalf("seed target: %v", err)
	}

	b := NewBuilder(config.Default(), nil, testLogger())
	res := &extract.Result{
		SourceTag: extract.SourcePrimary,
		Readable:  "[b](https://example.com/b)",
	}
	err = st.InTx(ctx, func(q *store.Queries) error {
		_, err := b.Process(ctx, q, source, res)
		return err
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	after, err := st.GetExpression(ctx, existing.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if after.Depth != 1 {
		t.Errorf("depth changed to %d, want 1 preserved", after.Depth)
	}
}

func TestProcessPairDedup(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	source := seedSource(t, st, "https://example.com/a", 0)
	b := NewBuilder(config.Default(), nil, testLogger())

	res := &extract.Result{
		SourceTag: extract.SourcePrimary,
		Readable:  "[b](https://example.com/b)",
	}
	run := func() Stats {
		var stats Stats
		err := st.InTx(ctx, func(q *store.Queries) error {
			var err error
			stats, err = b.Process(ctx, q, source, res)
			return err
		})
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		return stats
	}

	first := run()
	second := run()
	if first.LinksCreated != 1 {
		t.Errorf("first run links = %d, want 1", first.LinksCreated)
	}
	if second.LinksCreated != 0 {
		t.Errorf("second run links = %d, want 0 (pair already present)", second.LinksCreated)
	}
}

func TestProcessHeuristicDOM(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	source := seedSource(t, st, "https://example.com/a", 0)
	b := NewBuilder(config.Default(), nil, testLogger())

	res := &extract.Result{
		SourceTag: extract.SourceHeuristicSmart,
		FilteredHTML: `<div>
			<a href="/next" rel="nofollow">` + strings.Repeat("anchor ", 50) + `</a>
			<img data-src="/lazy.jpg">
			<video src="/clip.mp4"></video>
		</div>`,
	}
	err := st.InTx(ctx, func(q *store.Queries) error {
		_, err := b.Process(ctx, q, source, res)
		return err
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	links, err := st.OutgoingLinks(ctx, source.ID)
	if err != nil || len(links) != 1 {
		t.Fatalf("links = %v, err = %v", links, err)
	}
	if links[0].RelAttr == nil || *links[0].RelAttr != "nofollow" {
		t.Error("rel attribute lost")
	}
	if links[0].AnchorText == nil || len([]rune(*links[0].AnchorText)) > maxAnchorLen {
		t.Errorf("anchor not truncated to %d", maxAnchorLen)
	}

	medias, err := st.MediaForExpression(ctx, source.ID)
	if err != nil {
		t.Fatalf("media: %v", err)
	}
	types := map[string]int{}
	for _, m := range medias {
		types[m.Type]++
	}
	if types[store.MediaImage] != 1 || types[store.MediaVideo] != 1 {
		t.Errorf("media types = %v", types)
	}
}

func TestMediaTypeByExtension(t *testing.T) {
	cases := map[string]string{
		"https://e.com/a.png":       store.MediaImage,
		"https://e.com/v.mp4":       store.MediaVideo,
		"https://e.com/s.mp3":       store.MediaAudio,
		"https://e.com/file?x=1":    store.MediaImage,
		"https://e.com/a.jpg?w=300": store.MediaImage,
	}
	for u, want := range cases {
		if got := mediaTypeByExtension(u); got != want {
			t.Errorf("mediaTypeByExtension(%q) = %q, want %q", u, got, want)
		}
	}
}
