package extract

import (
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
)

// pageMetadata is what the DOM meta pass recovers from the raw page. Each
// field backs up the primary extractor per the priority rules in
// applyMetadata.
type pageMetadata struct {
	ogTitle          string
	twitterTitle     string
	htmlTitle        string
	ogDescription    string
	twitterDesc      string
	metaDescription  string
	metaKeywords     string
	htmlLang         string
	linkCanonical    string
	ogURL            string
	publishedTime    string
	datePublished    string
	dcDate           string
	metaDate         string
	metaPublishedRaw string
}

func parseMetadata(rawHTML string) *pageMetadata {
	meta := &pageMetadata{}
	doc, err := htmlquery.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return meta
	}

	metaContent := func(xpath string) string {
		if node := htmlquery.FindOne(doc, xpath); node != nil {
			return strings.TrimSpace(htmlquery.SelectAttr(node, "content"))
		}
		return ""
	}

	meta.ogTitle = metaContent(`//meta[@property='og:title']`)
	meta.twitterTitle = metaContent(`//meta[@name='twitter:title']`)
	meta.ogDescription = metaContent(`//meta[@property='og:description']`)
	meta.twitterDesc = metaContent(`//meta[@name='twitter:description']`)
	meta.metaDescription = metaContent(`//meta[@name='description']`)
	meta.metaKeywords = metaContent(`//meta[@name='keywords']`)
	meta.ogURL = metaContent(`//meta[@property='og:url']`)
	meta.publishedTime = metaContent(`//meta[@property='article:published_time']`)
	meta.datePublished = metaContent(`//meta[@itemprop='datePublished']`)
	meta.dcDate = metaContent(`//meta[@name='dc.date']`)
	meta.metaDate = metaContent(`//meta[@name='date']`)
	meta.metaPublishedRaw = metaContent(`//meta[@name='published_time']`)

	if node := htmlquery.FindOne(doc, `//title`); node != nil {
		meta.htmlTitle = strings.TrimSpace(htmlquery.InnerText(node))
	}
	if node := htmlquery.FindOne(doc, `//html`); node != nil {
		meta.htmlLang = normalizeLangTag(htmlquery.SelectAttr(node, "lang"))
	}
	if node := htmlquery.FindOne(doc, `//link[@rel='canonical']`); node != nil {
		meta.linkCanonical = strings.TrimSpace(htmlquery.SelectAttr(node, "href"))
	}

	return meta
}

// applyMetadata fills the result's metadata fields, first non-empty wins.
// The primary extractor's values (already on res) take precedence.
func applyMetadata(res *Result, meta *pageMetadata, pageURL string) {
	res.Title = firstNonEmpty(res.Title, meta.ogTitle, meta.twitterTitle, meta.htmlTitle, pageURL)
	res.Description = firstNonEmpty(res.Description, meta.ogDescription, meta.twitterDesc, meta.metaDescription)
	res.Keywords = firstNonEmpty(res.Keywords, meta.metaKeywords)
	res.Language = firstNonEmpty(res.Language, meta.htmlLang)
	res.CanonicalURL = firstNonEmpty(res.CanonicalURL, meta.linkCanonical, meta.ogURL)

	if res.PublishedAt == nil {
		raw := firstNonEmpty(meta.publishedTime, meta.datePublished, meta.dcDate, meta.metaDate, meta.metaPublishedRaw)
		if t := parsePublishedAt(raw); t != nil {
			res.PublishedAt = t
		}
	}
}

// publishedLayouts covers the date shapes seen in the wild, most specific
// first.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	time.RFC1123,
	time.RFC1123Z,
}

// parsePublishedAt parses a raw date string; nil when nothing matches.
func parsePublishedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// ParsePublishedAt exposes date parsing to the crawl engine.
func ParsePublishedAt(raw string) *time.Time { return parsePublishedAt(raw) }

// normalizeLangTag reduces a BCP-47 tag to its lowercase primary subtag.
func normalizeLangTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return tag
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
