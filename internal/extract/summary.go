package extract

// Summary is a page-level metadata digest: the primary extractor's output
// backed up by DOM meta tags, without the link/media enrichment the full
// cascade performs.
type Summary struct {
	Title       string
	Description string
	Keywords    string
	Language    string
	Content     string // markdown article body, empty when the extractor failed

	// Extracted reports whether the primary extractor produced an article;
	// false means only DOM metadata was recovered.
	Extracted bool
}

// Summarize runs the primary extractor over html and merges DOM-parsed meta
// tags underneath its output. It never fails: a page the extractor cannot
// read still yields whatever the meta tags carry.
func Summarize(html, pageURL string) *Summary {
	s := &Summary{}

	if primary, err := runPrimary(html, pageURL); err == nil {
		s.Extracted = true
		s.Content = primary.markdown
		s.Title = primary.title
		s.Description = primary.description
		s.Language = normalizeLangTag(primary.language)
	}

	meta := parseMetadata(html)
	s.Title = firstNonEmpty(s.Title, meta.ogTitle, meta.twitterTitle, meta.htmlTitle)
	s.Description = firstNonEmpty(s.Description, meta.ogDescription, meta.twitterDesc, meta.metaDescription)
	s.Keywords = firstNonEmpty(s.Keywords, meta.metaKeywords)
	s.Language = firstNonEmpty(s.Language, meta.htmlLang)
	return s
}

// Empty reports whether the summary recovered nothing usable.
func (s *Summary) Empty() bool {
	return !s.Extracted && s.Title == "" && s.Description == "" && s.Keywords == ""
}
