package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// fallbackTokenRe matches alphabetic runs including accented Latin letters.
// It backs Tokenize in environments without further NLP resources; both
// paths are deterministic.
var fallbackTokenRe = regexp.MustCompile(`[a-zA-ZÀ-ÖØ-öø-ÿ]+`)

// Tokenize lowercases and splits text into alphabetic tokens. Apostrophes
// split French elisions (l'article → l, article) so lemmas match.
func Tokenize(text, lang string) []string {
	text = strings.ToLower(text)
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(tokens) == 0 {
		return FallbackTokenize(text)
	}
	return tokens
}

// FallbackTokenize extracts alphabetic runs with a plain regex.
func FallbackTokenize(text string) []string {
	return fallbackTokenRe.FindAllString(strings.ToLower(text), -1)
}

// WordCount counts alphabetic tokens; the crawl engine derives reading time
// from it.
func WordCount(text string) int {
	return len(Tokenize(text, ""))
}

// Keywords tokenizes text, drops stopwords and tokens shorter than 3 runes,
// maps each survivor to its lemma, and returns the first k distinct lemmas
// in first-seen order.
func Keywords(text, lang string, k int) []string {
	if k <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	for _, token := range Tokenize(text, lang) {
		if len([]rune(token)) < 3 || IsStopword(token, lang) {
			continue
		}
		lemma := Lemma(token, lang)
		if lemma == "" || seen[lemma] {
			continue
		}
		seen[lemma] = true
		out = append(out, lemma)
		if len(out) >= k {
			break
		}
	}
	return out
}
