package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/landscout/landscout/internal/textutil"
)

// contentSelectors is the priority list the smart rung probes, most specific
// first. The first selector whose largest match carries enough text wins.
var contentSelectors = []string{
	"article",
	"[role=main]",
	"main",
	".post-content",
	".entry-content",
	".article-content",
	".article-body",
	".content-body",
	"#content",
	".content",
}

// chromeSelectors is what the basic rung strips before taking all text.
var chromeSelectors = []string{"script", "style", "nav", "footer", "aside", "noscript", "iframe", "form"}

// heuristicSmart picks the largest subtree matching a content selector. It
// returns the normalized text and the subtree HTML for the graph builder.
func heuristicSmart(html string) (text, subtreeHTML string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	for _, sel := range contentSelectors {
		var best *goquery.Selection
		bestLen := 0
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if n := len(textutil.Normalize(s.Text())); n > bestLen {
				best, bestLen = s, n
			}
		})
		if best == nil || bestLen < minReadableSmart {
			continue
		}
		best.Find(strings.Join(chromeSelectors, ", ")).Remove()
		subtree, err := goquery.OuterHtml(best)
		if err != nil {
			return "", "", err
		}
		return textutil.Normalize(best.Text()), subtree, nil
	}
	return "", "", fmt.Errorf("no content selector matched")
}

// heuristicBasic strips page chrome and takes whatever text remains.
func heuristicBasic(html string) (text, cleanedHTML string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body.Find(strings.Join(chromeSelectors, ", ")).Remove()

	cleaned, err := goquery.OuterHtml(body)
	if err != nil {
		return "", "", err
	}
	return textutil.Normalize(body.Text()), cleaned, nil
}
