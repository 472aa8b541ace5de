package dictionary

import (
	"strings"

	"github.com/landscout/landscout/internal/textutil"
)

// Variants generates morphological variants of a word for a language,
// deduplicated and including the bare stem. The rules over-generate by
// design: bogus forms never appear in page text so they never match, while a
// missed real form would cost relevance.
func Variants(word, lang string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	if len([]rune(word)) < 3 {
		return nil
	}

	var forms []string
	switch lang {
	case "fr":
		forms = frenchVariants(word)
	case "en":
		forms = englishVariants(word)
	}
	if stem := textutil.Lemma(word, lang); stem != "" {
		forms = append(forms, stem)
	}

	seen := make(map[string]bool, len(forms))
	var out []string
	for _, f := range forms {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// frenchVariants permutes gender, number and common verb endings.
func frenchVariants(word string) []string {
	var forms []string

	// Number.
	if !strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "x") {
		forms = append(forms, word+"s")
		if strings.HasSuffix(word, "eau") || strings.HasSuffix(word, "eu") {
			forms = append(forms, word+"x")
		}
	}
	if strings.HasSuffix(word, "al") {
		forms = append(forms, word[:len(word)-2]+"aux")
	}

	// Gender.
	switch {
	case strings.HasSuffix(word, "eur"):
		base := word[:len(word)-3]
		forms = append(forms, base+"euse", base+"euses", base+"rice", base+"rices")
	case strings.HasSuffix(word, "if"):
		base := word[:len(word)-1]
		forms = append(forms, base+"ve", base+"ves")
	case strings.HasSuffix(word, "e"):
		forms = append(forms, word+"s")
	default:
		forms = append(forms, word+"e", word+"es")
	}

	// First-group verb conjugation.
	if strings.HasSuffix(word, "er") {
		base := word[:len(word)-2]
		forms = append(forms,
			base+"e", base+"es", base+"ent",
			base+"ons", base+"ez",
			base+"é", base+"ée", base+"és", base+"ées",
			base+"ant", base+"ait", base+"aient",
		)
	}
	return forms
}

// englishVariants permutes pluralization, verb tense and comparatives.
func englishVariants(word string) []string {
	var forms []string

	// Plural.
	switch {
	case strings.HasSuffix(word, "y") && len(word) > 3 && !isVowel(word[len(word)-2]):
		forms = append(forms, word[:len(word)-1]+"ies")
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "ch"), strings.HasSuffix(word, "sh"):
		forms = append(forms, word+"es")
	default:
		forms = append(forms, word+"s")
	}

	// Verb tense.
	if strings.HasSuffix(word, "e") {
		base := word[:len(word)-1]
		forms = append(forms, word+"d", base+"ing")
	} else {
		forms = append(forms, word+"ed", word+"ing")
	}

	// Comparatives.
	if strings.HasSuffix(word, "e") {
		forms = append(forms, word+"r", word+"st")
	} else if strings.HasSuffix(word, "y") && len(word) > 3 {
		base := word[:len(word)-1]
		forms = append(forms, base+"ier", base+"iest")
	} else {
		forms = append(forms, word+"er", word+"est")
	}
	return forms
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
