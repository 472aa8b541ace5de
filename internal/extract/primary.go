package extract

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
)

// primaryResult is what the primary rung yields before enrichment.
type primaryResult struct {
	markdown     string
	readableHTML string

	title       string
	description string
	language    string
	publishedAt string
	siteName    string
}

// runPrimary runs the readability extractor over html and converts the
// article body to markdown with links, images and tables preserved.
func runPrimary(html, pageURL string) (*primaryResult, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, fmt.Errorf("readability: empty article")
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(article.Content)
	if err != nil {
		return nil, fmt.Errorf("markdown conversion: %w", err)
	}

	res := &primaryResult{
		markdown:     strings.TrimSpace(markdown),
		readableHTML: article.Content,
		title:        strings.TrimSpace(article.Title),
		description:  strings.TrimSpace(article.Excerpt),
		language:     strings.TrimSpace(article.Language),
		siteName:     strings.TrimSpace(article.SiteName),
	}
	if article.PublishedTime != nil {
		res.publishedAt = article.PublishedTime.Format("2006-01-02T15:04:05Z07:00")
	}
	return res, nil
}
