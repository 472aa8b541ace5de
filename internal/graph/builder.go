package graph

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/extract"
	"github.com/landscout/landscout/internal/media"
	"github.com/landscout/landscout/internal/store"
)

const maxAnchorLen = 200

// Stats reports what one Process call wrote.
type Stats struct {
	LinksCreated       int
	ExpressionsCreated int
	MediaCreated       int
}

// Builder turns extraction output into domain/expression/link/media rows.
// All writes go through the *store.Queries handed to Process, so the engine
// can run the whole per-expression step in one transaction.
type Builder struct {
	cfg      *config.Settings
	analyzer *media.Analyzer // nil when inline analysis is disabled
	logger   *slog.Logger
}

// NewBuilder creates a graph builder. analyzer may be nil; media rows are
// then left unprocessed for the batch analysis job.
func NewBuilder(cfg *config.Settings, analyzer *media.Analyzer, logger *slog.Logger) *Builder {
	return &Builder{
		cfg:      cfg,
		analyzer: analyzer,
		logger:   logger.With("component", "graph"),
	}
}

// candidate is a discovered outgoing link before canonicalization.
type candidate struct {
	href   string
	anchor string
	rel    *string
}

// Process discovers links and media from an extraction result and persists
// the neighborhood of source: domains, depth+1 expressions, edges and media
// rows. Failed extractions are skipped entirely.
func (b *Builder) Process(ctx context.Context, q *store.Queries, source *store.Expression, res *extract.Result) (Stats, error) {
	var stats Stats
	if res.SourceTag == extract.SourceFailed {
		return stats, nil
	}

	links, mediaRefs := b.discover(res)

	sourceNetloc := netloc(Canonicalize("", source.URL))
	if sourceNetloc == "" {
		sourceNetloc = netloc(source.URL)
	}

	for _, cand := range links {
		canonical := Canonicalize(source.URL, cand.href)
		if canonical == "" || canonical == source.URL {
			continue
		}
		targetNetloc := netloc(canonical)

		domainID, err := q.UpsertDomain(ctx, source.LandID, targetNetloc)
		if err != nil {
			return stats, err
		}
		hash := store.URLHash(canonical)
		_, lookupErr := q.GetExpressionByHash(ctx, source.LandID, hash)
		target, err := q.UpsertExpression(ctx, source.LandID, canonical, hash, &domainID, source.Depth+1)
		if err != nil {
			return stats, err
		}
		if errors.Is(lookupErr, store.ErrNotFound) {
			stats.ExpressionsCreated++
		}
		if target.ID == source.ID {
			continue
		}

		linkType := store.LinkExternal
		if targetNetloc == sourceNetloc {
			linkType = store.LinkInternal
		}
		wrote, err := q.InsertLink(ctx, &store.ExpressionLink{
			SourceID:   source.ID,
			TargetID:   target.ID,
			AnchorText: truncAnchor(cand.anchor),
			RelAttr:    cand.rel,
			LinkType:   linkType,
		})
		if err != nil {
			return stats, err
		}
		if wrote {
			stats.LinksCreated++
		}
	}

	for _, ref := range mediaRefs {
		created, err := b.persistMedia(ctx, q, source, ref)
		if err != nil {
			return stats, err
		}
		if created {
			stats.MediaCreated++
		}
	}
	return stats, nil
}

// discover picks the harvesting strategy by source tag: markdown parsing
// for primary/archive, a DOM walk of the filtered subtree for heuristics.
func (b *Builder) discover(res *extract.Result) ([]candidate, []extract.MediaRef) {
	switch res.SourceTag {
	case extract.SourcePrimary, extract.SourceArchive:
		var links []candidate
		for _, ref := range extract.MarkdownLinkRefs(res.Readable) {
			links = append(links, candidate{href: ref.URL, anchor: ref.Anchor})
		}
		return links, extract.MarkdownMedia(res.Readable)
	case extract.SourceHeuristicSmart, extract.SourceHeuristicBasic:
		return walkFilteredDOM(res.FilteredHTML)
	default:
		return nil, nil
	}
}

// mediaSrcAttrs are probed in order on DOM media elements; lazy-loading
// themes hide the real source behind data attributes.
var mediaSrcAttrs = []string{"src", "data-src", "data-original", "srcset"}

// walkFilteredDOM scans the pruned subtree for anchors and media sources.
func walkFilteredDOM(filteredHTML string) ([]candidate, []extract.MediaRef) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(filteredHTML))
	if err != nil {
		return nil, nil
	}

	var links []candidate
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		cand := candidate{href: href, anchor: strings.TrimSpace(s.Text())}
		if rel, ok := s.Attr("rel"); ok {
			cand.rel = &rel
		}
		links = append(links, cand)
	})

	var refs []extract.MediaRef
	seen := make(map[string]bool)
	collect := func(sel, kind string) {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			for _, attr := range mediaSrcAttrs {
				raw, ok := s.Attr(attr)
				if !ok || strings.TrimSpace(raw) == "" {
					continue
				}
				if attr == "srcset" {
					raw = firstSrcsetURL(raw)
				}
				if raw == "" || seen[raw] {
					break
				}
				seen[raw] = true
				refs = append(refs, extract.MediaRef{URL: raw, Type: kind})
				break
			}
		})
	}
	collect("img", extract.MediaImage)
	collect("video, video source", extract.MediaVideo)
	collect("audio, audio source", extract.MediaAudio)
	return links, refs
}

// persistMedia inserts one media row, resolving the URL against the source
// page and inferring the type from the extension when the reference came
// from a DOM walk. Inline analysis runs only for images when configured.
func (b *Builder) persistMedia(ctx context.Context, q *store.Queries, source *store.Expression, ref extract.MediaRef) (bool, error) {
	resolved := Canonicalize(source.URL, ref.URL)
	if resolved == "" {
		return false, nil
	}

	mediaType := ref.Type
	if byExt := mediaTypeByExtension(resolved); byExt != "" && ref.Type == extract.MediaImage {
		// Extension wins over the default image guess for DOM-walked refs.
		mediaType = byExt
	}

	id, created, err := q.InsertMedia(ctx, source.ID, resolved, store.URLHash(resolved), mediaType)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	if b.analyzer != nil && b.cfg.Media.AnalyzeMedia && mediaType == store.MediaImage {
		b.analyzeInline(ctx, q, id, resolved)
	}
	return true, nil
}

// analyzeInline runs the media analyzer and writes the result back; failures
// land in processing_error and never fail the crawl.
func (b *Builder) analyzeInline(ctx context.Context, q *store.Queries, mediaID int64, url string) {
	analysis := b.analyzer.Analyze(ctx, url)

	row := &store.Media{ID: mediaID}
	if analysis.Error != "" {
		row.ProcessingError = &analysis.Error
	} else {
		analysis.ApplyTo(row)
		row.IsProcessed = true
	}
	if err := q.UpdateMediaAnalysis(ctx, row); err != nil {
		b.logger.Warn("media analysis writeback failed", "media_id", mediaID, "error", err)
	}
}

// mediaTypeByExtension infers a media type from the URL path extension;
// unknown extensions read as image, matching the dominant case on the web.
func mediaTypeByExtension(rawURL string) string {
	ext := strings.ToLower(path.Ext(stripQuery(rawURL)))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".svg", ".avif", ".ico":
		return store.MediaImage
	case ".mp4", ".webm", ".ogv", ".mov", ".avi", ".mkv":
		return store.MediaVideo
	case ".mp3", ".wav", ".ogg", ".oga", ".flac", ".m4a", ".aac":
		return store.MediaAudio
	default:
		return store.MediaImage
	}
}

func stripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// firstSrcsetURL picks the first candidate of a srcset attribute.
func firstSrcsetURL(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(strings.TrimSpace(first))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func truncAnchor(anchor string) *string {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return nil
	}
	runes := []rune(anchor)
	if len(runes) > maxAnchorLen {
		anchor = string(runes[:maxAnchorLen])
	}
	return &anchor
}
