package textutil

import (
	"strings"

	"github.com/kljensen/snowball/english"
	"github.com/kljensen/snowball/french"
)

// irregularEN maps irregular English forms to their dictionary lemma. The
// rule-based pass below handles the regular morphology; anything that still
// comes back unchanged falls through to the snowball stemmer.
var irregularEN = map[string]string{
	"am": "be", "is": "be", "are": "be", "was": "be", "were": "be", "been": "be",
	"has": "have", "had": "have", "having": "have",
	"does": "do", "did": "do", "done": "do",
	"goes": "go", "went": "go", "gone": "go",
	"children": "child", "men": "man", "women": "woman", "people": "person",
	"feet": "foot", "teeth": "tooth", "mice": "mouse", "geese": "goose",
	"better": "good", "best": "good", "worse": "bad", "worst": "bad",
	"said": "say", "made": "make", "took": "take", "taken": "take",
	"got": "get", "gotten": "get", "came": "come", "saw": "see", "seen": "see",
	"knew": "know", "known": "know", "gave": "give", "given": "give",
	"found": "find", "thought": "think", "brought": "bring", "wrote": "write",
	"written": "write", "left": "leave", "felt": "feel", "kept": "keep",
	"held": "hold", "told": "tell", "became": "become", "began": "begin",
	"begun": "begin", "ran": "run", "spoke": "speak", "spoken": "speak",
}

// Lemma returns the normalized matching form of a term for the given
// language. French uses snowball stemming; English tries lemmatization and
// falls back to the stemmer when the lemma equals the input; every other
// language lowercases.
func Lemma(term, lang string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ""
	}

	switch lang {
	case "fr":
		return french.Stem(term, true)
	case "en":
		lemma := lemmatizeEN(term)
		if lemma == term {
			return english.Stem(term, true)
		}
		return lemma
	default:
		return term
	}
}

// lemmatizeEN applies the irregular table then regular suffix rules.
func lemmatizeEN(term string) string {
	if lemma, ok := irregularEN[term]; ok {
		return lemma
	}
	if len(term) < 4 {
		return term
	}

	switch {
	case strings.HasSuffix(term, "ies") && len(term) > 4:
		return term[:len(term)-3] + "y" // cities → city
	case strings.HasSuffix(term, "sses"):
		return term[:len(term)-2] // classes → class
	case strings.HasSuffix(term, "ches"), strings.HasSuffix(term, "shes"),
		strings.HasSuffix(term, "xes"), strings.HasSuffix(term, "zes"):
		return term[:len(term)-2] // boxes → box
	case strings.HasSuffix(term, "s") && !strings.HasSuffix(term, "ss") && !strings.HasSuffix(term, "us"):
		return term[:len(term)-1] // dogs → dog
	}
	return term
}
