// Package dictionary materializes the per-land weighted lemma table the
// relevance engine matches against, including auto-generated morphological
// variants of the seed terms.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/landscout/landscout/internal/store"
	"github.com/landscout/landscout/internal/textutil"
)

const defaultWeight = 1.0

// Service maintains land dictionaries.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a dictionary service.
func New(st *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.With("component", "dictionary"),
	}
}

// PopulateResult reports what Populate did.
type PopulateResult struct {
	Skipped bool
	Count   int
}

// Populate builds the land's dictionary from seed terms, then expands every
// dictionary word with morphological variants sharing its lemma. Running it
// twice without forceRefresh is a no-op; running it twice with the same terms
// adds no rows the second time.
func (s *Service) Populate(ctx context.Context, land *store.Land, seedTerms []string, forceRefresh bool) (*PopulateResult, error) {
	count, err := s.store.CountDictionary(ctx, land.ID)
	if err != nil {
		return nil, fmt.Errorf("count dictionary: %w", err)
	}
	if count > 0 && !forceRefresh {
		return &PopulateResult{Skipped: true, Count: count}, nil
	}
	if forceRefresh {
		if err := s.store.ClearDictionary(ctx, land.ID); err != nil {
			return nil, fmt.Errorf("clear dictionary: %w", err)
		}
	}

	lang := primaryLanguage(land)

	err = s.store.InTx(ctx, func(q *store.Queries) error {
		for _, term := range seedTerms {
			if err := s.attachTerm(ctx, q, land.ID, lang, term); err != nil {
				return err
			}
		}

		// Expand what is now in the dictionary with variants.
		entries, err := q.LoadDictionary(ctx, land.ID)
		if err != nil {
			return fmt.Errorf("load dictionary: %w", err)
		}
		for _, entry := range entries {
			for _, variant := range Variants(entry.Word, lang) {
				if variant == entry.Word {
					continue
				}
				w, err := q.InsertWord(ctx, lang, variant, entry.Lemma)
				if err != nil {
					return err
				}
				if err := q.UpsertDictionaryEntry(ctx, land.ID, w.ID, entry.Weight); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	total, err := s.store.CountDictionary(ctx, land.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dictionary populated",
		"land_id", land.ID, "seed_terms", len(seedTerms), "entries", total)
	return &PopulateResult{Count: total}, nil
}

// attachTerm upserts one seed term. Matching tries the exact normalized word
// first, then any word sharing the lemma; a miss inserts a fresh row. Terms
// whose lemma comes back empty are skipped.
func (s *Service) attachTerm(ctx context.Context, q *store.Queries, landID int64, lang, term string) error {
	word := strings.ToLower(textutil.Normalize(term))
	lemma := textutil.Lemma(word, lang)
	if word == "" || lemma == "" || len(textutil.FallbackTokenize(word)) == 0 {
		s.logger.Debug("skipping empty term", "term", term)
		return nil
	}

	w, err := q.GetWord(ctx, lang, word)
	if errors.Is(err, store.ErrNotFound) {
		w, err = q.GetWordByLemma(ctx, lang, lemma)
	}
	if errors.Is(err, store.ErrNotFound) {
		w, err = q.InsertWord(ctx, lang, word, lemma)
	}
	if err != nil {
		return fmt.Errorf("upsert word %q: %w", word, err)
	}
	return q.UpsertDictionaryEntry(ctx, landID, w.ID, defaultWeight)
}

func primaryLanguage(land *store.Land) string {
	if len(land.Languages) > 0 {
		return land.Languages[0]
	}
	return "fr"
}
