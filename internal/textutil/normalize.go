// Package textutil provides the language plumbing the pipeline leans on:
// normalization, tokenizing, stemming/lemmatization, keyword extraction and
// language detection for the land's accepted languages.
package textutil

import (
	"regexp"
	"strings"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	glyphReplacer = strings.NewReplacer(
		"‘", "'", "’", "'", "‚", "'", "′", "'",
		"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
		"–", "-", "—", "-", "−", "-",
		" ", " ", "…", "...",
	)
)

// Normalize strips markup, unifies quote and dash glyphs, and collapses
// whitespace. Diacritics are preserved; French text must survive intact.
func Normalize(text string) string {
	text = tagRe.ReplaceAllString(text, " ")
	text = glyphReplacer.Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
