package textutil

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// detectorLangs is the closed set the statistical detector chooses from. It
// mirrors the languages a land may accept.
var detectorLangs = []lingua.Language{
	lingua.French,
	lingua.English,
	lingua.Spanish,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
}

func langDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectorLangs...).
			Build()
	})
	return detector
}

// frMarkers are high-frequency French function words used by the heuristic
// fallback when the statistical detector abstains.
var frMarkers = map[string]bool{
	"le": true, "la": true, "les": true, "des": true, "une": true,
	"est": true, "dans": true, "pour": true, "que": true, "qui": true,
	"avec": true, "sur": true, "pas": true, "ce": true, "cette": true,
	"mais": true, "nous": true, "vous": true, "sont": true, "être": true,
}

var enMarkers = map[string]bool{
	"the": true, "and": true, "of": true, "to": true, "in": true,
	"is": true, "that": true, "for": true, "with": true, "was": true,
	"are": true, "this": true, "have": true, "from": true, "not": true,
	"they": true, "will": true, "would": true, "which": true, "been": true,
}

// DetectLanguage returns the ISO 639-1 code of the dominant language of
// text, or "" when the text is too short to call. Order of preference:
// statistical detection, then a function-word heuristic, then "en" as the
// last resort for substantial text.
func DetectLanguage(text string) string {
	clean := Normalize(text)
	if len([]rune(clean)) < 10 {
		return ""
	}

	if lang, ok := langDetector().DetectLanguageOf(clean); ok {
		return strings.ToLower(lang.IsoCode639_1().String())
	}

	if lang := heuristicLanguage(clean); lang != "" {
		return lang
	}
	if len([]rune(clean)) >= 50 {
		return "en"
	}
	return ""
}

// heuristicLanguage votes on function words and falls back to accent
// density; accented Latin text without English markers reads as French here
// because French dominates the corpus.
func heuristicLanguage(text string) string {
	frHits, enHits, accented, letters := 0, 0, 0, 0
	for _, token := range Tokenize(text, "") {
		if frMarkers[token] {
			frHits++
		}
		if enMarkers[token] {
			enHits++
		}
	}
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letters++
		case r >= 'À' && r <= 'ÿ':
			letters++
			accented++
		}
	}

	switch {
	case frHits > enHits && frHits >= 2:
		return "fr"
	case enHits > frHits && enHits >= 2:
		return "en"
	case letters > 0 && float64(accented)/float64(letters) > 0.02:
		return "fr"
	}
	return ""
}
