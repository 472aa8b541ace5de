// Package relevance scores an expression's title and readable body against
// a land's weighted lemma dictionary. Pure computation, no I/O.
package relevance

import (
	"math"

	"github.com/landscout/landscout/internal/store"
	"github.com/landscout/landscout/internal/textutil"
)

const (
	titleKeywordLimit = 20
	bodyKeywordLimit  = 50
	titleWeight       = 10.0
	bodyWeight        = 1.0
	multiTermBonus    = 0.5
	frenchBoost       = 1.1
)

// Input is the read-only slice of an expression the scorer needs.
type Input struct {
	Title    string
	Readable string
}

// Score computes the relevance of an expression against a dictionary in the
// given language. Deterministic for identical arguments; an empty
// dictionary scores 0.
func Score(dictionary []store.DictionaryEntry, in Input, lang string) float64 {
	if len(dictionary) == 0 {
		return 0
	}

	weights := make(map[string]float64, len(dictionary))
	for _, entry := range dictionary {
		if _, ok := weights[entry.Lemma]; !ok {
			weights[entry.Lemma] = entry.Weight
		}
	}

	matched := make(map[string]bool)
	var score float64

	for _, lemma := range textutil.Keywords(in.Title, lang, titleKeywordLimit) {
		if w, ok := weights[lemma]; ok && !matched[lemma] {
			matched[lemma] = true
			score += w * titleWeight
		}
	}
	for _, lemma := range textutil.Keywords(in.Readable, lang, bodyKeywordLimit) {
		if w, ok := weights[lemma]; ok && !matched[lemma] {
			matched[lemma] = true
			score += w * bodyWeight
		}
	}

	if len(matched) >= 2 {
		score += multiTermBonus * float64(len(matched))
	}
	if lang == "fr" && len(matched) > 0 {
		score *= frenchBoost
	}
	return math.Round(score*100) / 100
}
