package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// CreateLand inserts a new land. Names are unique.
func (q *Queries) CreateLand(ctx context.Context, name, description string, languages []string) (*Land, error) {
	if len(languages) == 0 {
		languages = []string{"fr"}
	}
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO lands (name, description, languages) VALUES (?, ?, ?)`,
		name, description, strings.Join(languages, ","))
	if err != nil {
		return nil, fmt.Errorf("create land %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return q.GetLand(ctx, id)
}

// GetLand fetches a land by id.
func (q *Queries) GetLand(ctx context.Context, id int64) (*Land, error) {
	return q.scanLand(q.db.QueryRowContext(ctx,
		`SELECT id, name, description, languages, start_urls, created_at FROM lands WHERE id = ?`, id))
}

// GetLandByName fetches a land by its unique name.
func (q *Queries) GetLandByName(ctx context.Context, name string) (*Land, error) {
	return q.scanLand(q.db.QueryRowContext(ctx,
		`SELECT id, name, description, languages, start_urls, created_at FROM lands WHERE name = ?`, name))
}

func (q *Queries) scanLand(row *sql.Row) (*Land, error) {
	var l Land
	var langs, startURLs string
	err := row.Scan(&l.ID, &l.Name, &l.Description, &langs, &startURLs, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	for _, lang := range strings.Split(langs, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			l.Languages = append(l.Languages, lang)
		}
	}
	l.StartURLs = splitList(startURLs)
	return &l, nil
}

// ListLands returns all lands ordered by creation time.
func (q *Queries) ListLands(ctx context.Context) ([]*Land, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, description, languages, start_urls, created_at FROM lands ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lands []*Land
	for rows.Next() {
		var l Land
		var langs, startURLs string
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &langs, &startURLs, &l.CreatedAt); err != nil {
			return nil, err
		}
		for _, lang := range strings.Split(langs, ",") {
			if lang = strings.TrimSpace(lang); lang != "" {
				l.Languages = append(l.Languages, lang)
			}
		}
		l.StartURLs = splitList(startURLs)
		lands = append(lands, &l)
	}
	return lands, rows.Err()
}

// AddStartURLs appends seed URLs to a land, deduplicating against the
// existing list. The URLs are materialized as depth-0 expressions at the
// start of the next crawl.
func (q *Queries) AddStartURLs(ctx context.Context, landID int64, urls []string) error {
	land, err := q.GetLand(ctx, landID)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(land.StartURLs))
	merged := append([]string(nil), land.StartURLs...)
	for _, u := range land.StartURLs {
		seen[u] = true
	}
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		merged = append(merged, u)
	}
	_, err = q.db.ExecContext(ctx, `UPDATE lands SET start_urls = ? WHERE id = ?`,
		joinList(merged), landID)
	return err
}

// DeleteLand removes a land and, via cascade, everything it owns.
func (q *Queries) DeleteLand(ctx context.Context, landID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM lands WHERE id = ?`, landID)
	return err
}

// RepairApprovals re-projects the legacy approval policy for a land:
// approved_at is kept only where relevance > 0. The crawl pipeline itself
// approves on readable content regardless of relevance; this routine exists
// for operators that want the stricter historical view.
func (q *Queries) RepairApprovals(ctx context.Context, landID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
		UPDATE expressions SET approved_at = NULL
		WHERE land_id = ? AND approved_at IS NOT NULL
		  AND (relevance IS NULL OR relevance <= 0)`, landID)
	if err != nil {
		return 0, fmt.Errorf("repair approvals: %w", err)
	}
	return res.RowsAffected()
}

// nullTime converts a *time.Time for binding.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
