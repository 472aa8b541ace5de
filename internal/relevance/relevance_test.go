package relevance

import (
	"testing"

	"github.com/landscout/landscout/internal/store"
	"github.com/landscout/landscout/internal/textutil"
)

func dict(lang string, words ...string) []store.DictionaryEntry {
	entries := make([]store.DictionaryEntry, 0, len(words))
	for i, w := range words {
		entries = append(entries, store.DictionaryEntry{
			WordID: int64(i + 1),
			Word:   w,
			Lemma:  textutil.Lemma(w, lang),
			Weight: 1.0,
		})
	}
	return entries
}

func TestScoreEmptyDictionary(t *testing.T) {
	if got := Score(nil, Input{Title: "anything", Readable: "anything"}, "en"); got != 0 {
		t.Errorf("empty dictionary score = %v, want 0", got)
	}
}

func TestScoreTitleMatch(t *testing.T) {
	d := dict("en", "climate")
	got := Score(d, Input{Title: "Climate report published today"}, "en")
	// Single match in the title: 1.0 × 10, no multi-term bonus.
	if got != 10 {
		t.Errorf("score = %v, want 10", got)
	}
}

func TestScoreBodyMatch(t *testing.T) {
	d := dict("en", "climate")
	got := Score(d, Input{Readable: "a long discussion about climate trends"}, "en")
	if got != 1 {
		t.Errorf("score = %v, want 1", got)
	}
}

func TestScoreMultiTermBonus(t *testing.T) {
	d := dict("en", "climate", "energy")
	got := Score(d, Input{
		Title:    "Climate outlook",
		Readable: "the energy transition continues",
	}, "en")
	// 10 (title) + 1 (body) + 0.5×2 bonus = 12.
	if got != 12 {
		t.Errorf("score = %v, want 12", got)
	}
}

func TestScoreFrenchBoost(t *testing.T) {
	d := dict("fr", "climat")
	got := Score(d, Input{Title: "Le climat en question"}, "fr")
	// 10 × 1.1 = 11.
	if got != 11 {
		t.Errorf("score = %v, want 11", got)
	}
}

func TestScoreNoDoubleCount(t *testing.T) {
	d := dict("en", "climate")
	got := Score(d, Input{
		Title:    "Climate climate climate",
		Readable: "climate climate",
	}, "en")
	if got != 10 {
		t.Errorf("repeated lemma scored %v, want 10", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	d := dict("fr", "climat", "énergie", "transition")
	in := Input{
		Title:    "La transition énergétique face au climat",
		Readable: "Un article sur l'énergie et le climat dans la transition actuelle.",
	}
	first := Score(d, in, "fr")
	for i := 0; i < 10; i++ {
		if got := Score(d, in, "fr"); got != first {
			t.Fatalf("run %d scored %v, first run scored %v", i, got, first)
		}
	}
	if first <= 0 {
		t.Errorf("expected a positive score, got %v", first)
	}
}
