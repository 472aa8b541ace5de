package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/fetcher"
)

// Cascade drives the extraction rungs in order, first success wins. It owns
// the minimum-readable-length gates.
type Cascade struct {
	cfg    *config.ExtractSettings
	client *fetcher.Client
	logger *slog.Logger
}

// NewCascade builds the cascade; client is shared with the crawl engine.
func NewCascade(cfg *config.Settings, client *fetcher.Client, logger *slog.Logger) *Cascade {
	return &Cascade{
		cfg:    &cfg.Extract,
		client: client,
		logger: logger.With("component", "extract"),
	}
}

func (c *Cascade) minReadable() int {
	if c.cfg.MinReadable > 0 {
		return c.cfg.MinReadable
	}
	return minReadableDefault
}

// Extract runs the cascade over (pageURL, html). It always returns a
// non-nil Result; when every rung misses, SourceTag is SourceFailed and
// Content still carries the HTML that was seen.
func (c *Cascade) Extract(ctx context.Context, pageURL, html string) *Result {
	res := &Result{Content: html, SourceTag: SourceFailed}
	meta := parseMetadata(html)

	// Rung 1: primary extractor over the page's own HTML.
	if html != "" {
		if ok := c.tryPrimary(res, html, pageURL, SourcePrimary); ok {
			applyMetadata(res, meta, pageURL)
			return res
		}
	}

	// Rung 2: archive snapshot re-fed to the primary extractor. Media URLs
	// still resolve against the original page URL.
	if snapshot := c.tryArchive(ctx, pageURL); snapshot != "" {
		if ok := c.tryPrimary(res, snapshot, pageURL, SourceArchive); ok {
			applyMetadata(res, meta, pageURL)
			return res
		}
	}

	// Rung 3: largest content-selector subtree.
	if html != "" {
		if text, subtree, err := heuristicSmart(html); err == nil && len(text) >= minReadableSmart {
			res.Readable = text
			res.FilteredHTML = subtree
			res.SourceTag = SourceHeuristicSmart
			applyMetadata(res, meta, pageURL)
			return res
		} else if err != nil {
			c.logger.Debug("heuristic smart failed", "url", pageURL, "error", err)
		}
	}

	// Rung 4: strip chrome, take everything.
	if html != "" {
		if text, cleaned, err := heuristicBasic(html); err == nil && len(text) >= c.minReadable() {
			res.Readable = text
			res.FilteredHTML = cleaned
			res.SourceTag = SourceHeuristicBasic
			applyMetadata(res, meta, pageURL)
			return res
		} else if err != nil {
			c.logger.Debug("heuristic basic failed", "url", pageURL, "error", err)
		}
	}

	applyMetadata(res, meta, pageURL)
	c.logger.Debug("extraction failed", "url", pageURL)
	return res
}

// tryPrimary runs the primary extractor on html and, when the readable gate
// passes, fills res in place with the enriched markdown, media and links.
func (c *Cascade) tryPrimary(res *Result, html, pageURL, tag string) bool {
	pr, err := runPrimary(html, pageURL)
	if err != nil {
		c.logger.Debug("primary extraction failed", "url", pageURL, "tag", tag, "error", err)
		return false
	}
	if len(pr.markdown) < c.minReadable() {
		return false
	}

	enriched, media := enrichMedia(pr.markdown, pr.readableHTML, pageURL)
	res.Readable = enriched
	res.ReadableHTML = pr.readableHTML
	res.SourceTag = tag
	res.MediaList = media
	res.Links = markdownLinks(enriched)

	res.Title = pr.title
	res.Description = pr.description
	res.Language = normalizeLangTag(pr.language)
	if t := parsePublishedAt(pr.publishedAt); t != nil {
		res.PublishedAt = t
	}
	return true
}

// tryArchive looks up and downloads a snapshot; failures degrade to "no
// snapshot".
func (c *Cascade) tryArchive(ctx context.Context, pageURL string) string {
	snapshotURL, err := c.lookupSnapshot(ctx, pageURL)
	if err != nil {
		c.logger.Debug("archive lookup failed", "url", pageURL, "error", err)
		return ""
	}
	if snapshotURL == "" {
		return ""
	}
	snapshot, err := c.fetchSnapshot(ctx, snapshotURL)
	if err != nil {
		c.logger.Debug("archive fetch failed", "url", pageURL, "snapshot", snapshotURL, "error", err)
		return ""
	}
	if strings.TrimSpace(snapshot) == "" {
		return ""
	}
	return snapshot
}
