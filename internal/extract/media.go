package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// mdImageRe matches ![alt](url) image markers.
	mdImageRe = regexp.MustCompile(`!\[[^\]]*\]\(([^)\s]+)\)`)
	// mdLinkRe matches [text](url) not preceded by ! (those are images).
	mdLinkRe = regexp.MustCompile(`(^|[^!])\[([^\]]*)\]\(([^)\s]+)\)`)
	// mdVideoRe and mdAudioRe match the enrichment markers appended below.
	mdVideoRe = regexp.MustCompile(`\[VIDEO: ([^\]]+)\]`)
	mdAudioRe = regexp.MustCompile(`\[AUDIO: ([^\]]+)\]`)
)

// enrichMedia walks the readable HTML rendering, resolves every media source
// against baseURL (the original crawl URL, never the archive URL) and
// appends marker lines to the markdown. It also harvests image URLs already
// present as markdown markers; everything is deduplicated by resolved URL.
func enrichMedia(markdown, readableHTML, baseURL string) (string, []MediaRef) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return markdown, nil
	}

	seen := make(map[string]bool)
	var media []MediaRef
	add := func(raw, kind string) {
		resolved := resolveMediaURL(base, raw)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		media = append(media, MediaRef{URL: resolved, Type: kind})
	}

	for _, m := range mdImageRe.FindAllStringSubmatch(markdown, -1) {
		add(m[1], MediaImage)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(readableHTML)); err == nil {
		doc.Find("img").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				add(src, MediaImage)
			}
		})
		doc.Find("video").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				add(src, MediaVideo)
			}
			s.Find("source").Each(func(_ int, src *goquery.Selection) {
				if v, ok := src.Attr("src"); ok {
					add(v, MediaVideo)
				}
			})
		})
		doc.Find("audio").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				add(src, MediaAudio)
			}
		})
	}

	var b strings.Builder
	b.WriteString(markdown)
	for _, m := range media {
		switch m.Type {
		case MediaImage:
			fmt.Fprintf(&b, "\n![IMAGE](%s)", m.URL)
		case MediaVideo:
			fmt.Fprintf(&b, "\n[VIDEO: %s]", m.URL)
		case MediaAudio:
			fmt.Fprintf(&b, "\n[AUDIO: %s]", m.URL)
		}
	}
	return b.String(), media
}

// resolveMediaURL resolves a raw src against base, rejecting data: and
// other non-fetchable schemes.
func resolveMediaURL(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// markdownLinks scans enriched markdown for hyperlinks, skipping image
// markers, in document order and deduplicated.
func markdownLinks(markdown string) []string {
	seen := make(map[string]bool)
	var links []string
	for _, m := range mdLinkRe.FindAllStringSubmatch(markdown, -1) {
		u := strings.TrimSpace(m[3])
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		links = append(links, u)
	}
	return links
}

// markdownMedia re-harvests media markers from stored markdown; the graph
// builder uses it for primary/archive sourced expressions.
func markdownMedia(markdown string) []MediaRef {
	seen := make(map[string]bool)
	var media []MediaRef
	add := func(u, kind string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		media = append(media, MediaRef{URL: u, Type: kind})
	}
	for _, m := range mdImageRe.FindAllStringSubmatch(markdown, -1) {
		add(m[1], MediaImage)
	}
	for _, m := range mdVideoRe.FindAllStringSubmatch(markdown, -1) {
		add(m[1], MediaVideo)
	}
	for _, m := range mdAudioRe.FindAllStringSubmatch(markdown, -1) {
		add(m[1], MediaAudio)
	}
	return media
}

// LinkRef is a hyperlink with its anchor text, as harvested from markdown.
type LinkRef struct {
	URL    string
	Anchor string
}

// MarkdownLinkRefs harvests hyperlinks with anchor text, skipping image
// markers, deduplicated by URL.
func MarkdownLinkRefs(markdown string) []LinkRef {
	seen := make(map[string]bool)
	var refs []LinkRef
	for _, m := range mdLinkRe.FindAllStringSubmatch(markdown, -1) {
		u := strings.TrimSpace(m[3])
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		refs = append(refs, LinkRef{URL: u, Anchor: strings.TrimSpace(m[2])})
	}
	return refs
}

// MarkdownLinks exposes hyperlink harvesting to the graph builder.
func MarkdownLinks(markdown string) []string { return markdownLinks(markdown) }

// MarkdownMedia exposes media-marker harvesting to the graph builder.
func MarkdownMedia(markdown string) []MediaRef { return markdownMedia(markdown) }
