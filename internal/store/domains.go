package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertDomain inserts a domain for a land if absent and returns its id.
// The ON CONFLICT no-op makes concurrent upserts idempotent.
func (q *Queries) UpsertDomain(ctx context.Context, landID int64, name string) (int64, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO domains (land_id, name) VALUES (?, ?)
		 ON CONFLICT(name, land_id) DO NOTHING`,
		landID, name)
	if err != nil {
		return 0, fmt.Errorf("upsert domain %q: %w", name, err)
	}
	var id int64
	err = q.db.QueryRowContext(ctx,
		`SELECT id FROM domains WHERE land_id = ? AND name = ?`, landID, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("select domain %q: %w", name, err)
	}
	return id, nil
}

// GetDomain fetches a domain row by id.
func (q *Queries) GetDomain(ctx context.Context, id int64) (*Domain, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, land_id, name, title, description, keywords, language,
		       http_status, source_method, fetched_at, created_at
		FROM domains WHERE id = ?`, id)
	return scanDomain(row)
}

// SelectUnfetchedDomains returns domains of a land with no metadata yet.
func (q *Queries) SelectUnfetchedDomains(ctx context.Context, landID int64, limit int) ([]*Domain, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, land_id, name, title, description, keywords, language,
		       http_status, source_method, fetched_at, created_at
		FROM domains WHERE land_id = ? AND fetched_at IS NULL
		ORDER BY created_at LIMIT ?`, landID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []*Domain
	for rows.Next() {
		d, err := scanDomainRows(rows)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// UpdateDomainMetadata stores the result of a domain crawl.
func (q *Queries) UpdateDomainMetadata(ctx context.Context, d *Domain) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE domains SET title = ?, description = ?, keywords = ?, language = ?,
		       http_status = ?, source_method = ?, fetched_at = ?
		WHERE id = ?`,
		d.Title, d.Description, d.Keywords, d.Language,
		d.HTTPStatus, d.SourceMethod, nullTime(d.FetchedAt), d.ID)
	if err != nil {
		return fmt.Errorf("update domain %d: %w", d.ID, err)
	}
	return nil
}

func scanDomain(row *sql.Row) (*Domain, error) {
	var d Domain
	var fetchedAt sql.NullTime
	err := row.Scan(&d.ID, &d.LandID, &d.Name, &d.Title, &d.Description, &d.Keywords,
		&d.Language, &d.HTTPStatus, &d.SourceMethod, &fetchedAt, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if fetchedAt.Valid {
		t := fetchedAt.Time
		d.FetchedAt = &t
	}
	return &d, nil
}

func scanDomainRows(rows *sql.Rows) (*Domain, error) {
	var d Domain
	var fetchedAt sql.NullTime
	err := rows.Scan(&d.ID, &d.LandID, &d.Name, &d.Title, &d.Description, &d.Keywords,
		&d.Language, &d.HTTPStatus, &d.SourceMethod, &fetchedAt, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if fetchedAt.Valid {
		t := fetchedAt.Time
		d.FetchedAt = &t
	}
	return &d, nil
}
