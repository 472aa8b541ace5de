package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const expressionColumns = `
	id, land_id, domain_id, url, url_hash, depth,
	created_at, crawled_at, approved_at, readable_at, published_at, last_modified,
	http_status, content_type, content_length, etag,
	title, description, keywords, canonical_url, language, content, readable, source_tag,
	word_count, reading_time, relevance, quality_score,
	sentiment_score, sentiment_label, valid_llm, valid_model`

// CrawlFilter narrows the crawl batch selection.
type CrawlFilter struct {
	Depth      *int
	HTTPStatus *int
}

// UpsertExpression inserts an expression if the `(land_id, url_hash)` pair is
// new and returns the stored row either way. An existing row never has its
// depth increased or decreased by a rediscovery.
func (q *Queries) UpsertExpression(ctx context.Context, landID int64, url, urlHash string, domainID *int64, depth int) (*Expression, error) {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO expressions (land_id, domain_id, url, url_hash, depth)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(land_id, url_hash) DO NOTHING`,
		landID, domainID, url, urlHash, depth)
	if err != nil {
		return nil, fmt.Errorf("upsert expression %q: %w", url, err)
	}
	return q.GetExpressionByHash(ctx, landID, urlHash)
}

// GetExpression fetches an expression by id.
func (q *Queries) GetExpression(ctx context.Context, id int64) (*Expression, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT`+expressionColumns+` FROM expressions WHERE id = ?`, id)
	return scanExpressionRow(row)
}

// GetExpressionByHash fetches an expression by its land-scoped URL hash.
func (q *Queries) GetExpressionByHash(ctx context.Context, landID int64, urlHash string) (*Expression, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT`+expressionColumns+` FROM expressions WHERE land_id = ? AND url_hash = ?`,
		landID, urlHash)
	return scanExpressionRow(row)
}

// SelectCrawlBatch returns expressions still awaiting approval, lowest depth
// and oldest first. Rows whose fetch failed earlier (crawled_at set,
// approved_at still null) are re-selected so fetch failures retry.
func (q *Queries) SelectCrawlBatch(ctx context.Context, landID int64, limit int, filter CrawlFilter) ([]*Expression, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT` + expressionColumns + ` FROM expressions WHERE land_id = ? AND approved_at IS NULL`)
	args := []any{landID}
	if filter.Depth != nil {
		sb.WriteString(` AND depth = ?`)
		args = append(args, *filter.Depth)
	}
	if filter.HTTPStatus != nil {
		sb.WriteString(` AND http_status = ?`)
		args = append(args, *filter.HTTPStatus)
	}
	sb.WriteString(` ORDER BY depth ASC, created_at ASC LIMIT ?`)
	args = append(args, limit)

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exprs []*Expression
	for rows.Next() {
		e, err := scanExpressionRows(rows)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, rows.Err()
}

// CountCrawlable returns how many expressions of a land still await approval.
func (q *Queries) CountCrawlable(ctx context.Context, landID int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expressions WHERE land_id = ? AND approved_at IS NULL`,
		landID).Scan(&n)
	return n, err
}

// HasExpressions reports whether any expression exists for a land.
func (q *Queries) HasExpressions(ctx context.Context, landID int64) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM expressions WHERE land_id = ?)`, landID).Scan(&n)
	return n == 1, err
}

// UpdateExpression writes back every mutable column of an expression.
func (q *Queries) UpdateExpression(ctx context.Context, e *Expression) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE expressions SET
			domain_id = ?, depth = ?,
			crawled_at = ?, approved_at = ?, readable_at = ?, published_at = ?, last_modified = ?,
			http_status = ?, content_type = ?, content_length = ?, etag = ?,
			title = ?, description = ?, keywords = ?, canonical_url = ?, language = ?,
			content = ?, readable = ?, source_tag = ?,
			word_count = ?, reading_time = ?, relevance = ?, quality_score = ?,
			sentiment_score = ?, sentiment_label = ?, valid_llm = ?, valid_model = ?
		WHERE id = ?`,
		e.DomainID, e.Depth,
		nullTime(e.CrawledAt), nullTime(e.ApprovedAt), nullTime(e.ReadableAt),
		nullTime(e.PublishedAt), nullTime(e.LastModified),
		e.HTTPStatus, e.ContentType, e.ContentLength, e.Etag,
		e.Title, e.Description, e.Keywords, e.CanonicalURL, e.Language,
		e.Content, e.Readable, e.SourceTag,
		e.WordCount, e.ReadingTime, e.Relevance, e.QualityScore,
		e.SentimentScore, e.SentimentLabel, e.ValidLLM, e.ValidModel,
		e.ID)
	if err != nil {
		return fmt.Errorf("update expression %d: %w", e.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpressionRow(row *sql.Row) (*Expression, error) {
	e, err := scanExpression(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func scanExpressionRows(rows *sql.Rows) (*Expression, error) {
	return scanExpression(rows)
}

func scanExpression(r rowScanner) (*Expression, error) {
	var e Expression
	var crawledAt, approvedAt, readableAt, publishedAt, lastModified sql.NullTime
	err := r.Scan(
		&e.ID, &e.LandID, &e.DomainID, &e.URL, &e.URLHash, &e.Depth,
		&e.CreatedAt, &crawledAt, &approvedAt, &readableAt, &publishedAt, &lastModified,
		&e.HTTPStatus, &e.ContentType, &e.ContentLength, &e.Etag,
		&e.Title, &e.Description, &e.Keywords, &e.CanonicalURL, &e.Language,
		&e.Content, &e.Readable, &e.SourceTag,
		&e.WordCount, &e.ReadingTime, &e.Relevance, &e.QualityScore,
		&e.SentimentScore, &e.SentimentLabel, &e.ValidLLM, &e.ValidModel,
	)
	if err != nil {
		return nil, err
	}
	e.CrawledAt = timePtr(crawledAt)
	e.ApprovedAt = timePtr(approvedAt)
	e.ReadableAt = timePtr(readableAt)
	e.PublishedAt = timePtr(publishedAt)
	e.LastModified = timePtr(lastModified)
	return &e, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
