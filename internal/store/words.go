package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetWord looks up a word by its exact `(language, word)` key.
func (q *Queries) GetWord(ctx context.Context, language, word string) (*Word, error) {
	var w Word
	err := q.db.QueryRowContext(ctx,
		`SELECT id, language, word, lemma, frequency FROM words WHERE language = ? AND word = ?`,
		language, word).Scan(&w.ID, &w.Language, &w.Word, &w.Lemma, &w.Frequency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWordByLemma returns the first word sharing the given lemma.
func (q *Queries) GetWordByLemma(ctx context.Context, language, lemma string) (*Word, error) {
	var w Word
	err := q.db.QueryRowContext(ctx,
		`SELECT id, language, word, lemma, frequency FROM words
		 WHERE language = ? AND lemma = ? ORDER BY id LIMIT 1`,
		language, lemma).Scan(&w.ID, &w.Language, &w.Word, &w.Lemma, &w.Frequency)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// InsertWord inserts a word, returning the existing row on conflict.
func (q *Queries) InsertWord(ctx context.Context, language, word, lemma string) (*Word, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO words (language, word, lemma) VALUES (?, ?, ?)
		 ON CONFLICT(language, word) DO NOTHING`,
		language, word, lemma)
	if err != nil {
		return nil, fmt.Errorf("insert word %q: %w", word, err)
	}
	return q.GetWord(ctx, language, word)
}

// UpsertDictionaryEntry attaches a word to a land's dictionary. Re-running
// with the same pair is a no-op and keeps the existing weight.
func (q *Queries) UpsertDictionaryEntry(ctx context.Context, landID, wordID int64, weight float64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO land_dictionaries (land_id, word_id, weight) VALUES (?, ?, ?)
		 ON CONFLICT(land_id, word_id) DO NOTHING`,
		landID, wordID, weight)
	if err != nil {
		return fmt.Errorf("upsert dictionary entry: %w", err)
	}
	return nil
}

// LoadDictionary returns every dictionary entry of a land.
func (q *Queries) LoadDictionary(ctx context.Context, landID int64) ([]DictionaryEntry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT w.id, w.word, w.lemma, d.weight
		FROM land_dictionaries d JOIN words w ON w.id = d.word_id
		WHERE d.land_id = ? ORDER BY w.lemma`, landID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DictionaryEntry
	for rows.Next() {
		var e DictionaryEntry
		if err := rows.Scan(&e.WordID, &e.Word, &e.Lemma, &e.Weight); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountDictionary returns the number of dictionary rows for a land.
func (q *Queries) CountDictionary(ctx context.Context, landID int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM land_dictionaries WHERE land_id = ?`, landID).Scan(&n)
	return n, err
}

// ClearDictionary removes all dictionary rows of a land. Words stay; they may
// be shared with other lands.
func (q *Queries) ClearDictionary(ctx context.Context, landID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM land_dictionaries WHERE land_id = ?`, landID)
	return err
}
