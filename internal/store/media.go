package store

import (
	"context"
	"database/sql"
	"fmt"
)

// InsertMedia inserts a media row for an expression unless the
// `(expression_id, url_hash)` pair exists. Returns the row id and whether a
// new row was written.
func (q *Queries) InsertMedia(ctx context.Context, expressionID int64, url, urlHash, mediaType string) (int64, bool, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO media (expression_id, url, url_hash, type)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(expression_id, url_hash) DO NOTHING`,
		expressionID, url, urlHash, mediaType)
	if err != nil {
		return 0, false, fmt.Errorf("insert media %q: %w", url, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var id int64
		err := q.db.QueryRowContext(ctx,
			`SELECT id FROM media WHERE expression_id = ? AND url_hash = ?`,
			expressionID, urlHash).Scan(&id)
		return id, false, err
	}
	id, err := res.LastInsertId()
	return id, true, err
}

// UpdateMediaAnalysis writes back the analysis columns of a media row.
func (q *Queries) UpdateMediaAnalysis(ctx context.Context, m *Media) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE media SET
			width = ?, height = ?, format = ?, color_mode = ?, mime_type = ?,
			file_size = ?, aspect_ratio = ?, has_transparency = ?, image_hash = ?,
			dominant_colors = ?, websafe_colors = ?, exif = ?,
			is_processed = ?, processing_error = ?
		WHERE id = ?`,
		m.Width, m.Height, m.Format, m.ColorMode, m.MimeType,
		m.FileSize, m.AspectRatio, m.HasTransparency, m.ImageHash,
		m.DominantColors, m.WebsafeColors, m.EXIF,
		m.IsProcessed, m.ProcessingError, m.ID)
	if err != nil {
		return fmt.Errorf("update media %d: %w", m.ID, err)
	}
	return nil
}

// SelectUnprocessedMedia returns unanalyzed media of a land, oldest first.
func (q *Queries) SelectUnprocessedMedia(ctx context.Context, landID int64, limit int) ([]*Media, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT m.id, m.expression_id, m.url, m.url_hash, m.type,
		       m.width, m.height, m.format, m.color_mode, m.mime_type,
		       m.file_size, m.aspect_ratio, m.has_transparency, m.image_hash,
		       m.dominant_colors, m.websafe_colors, m.exif,
		       m.is_processed, m.processing_error, m.created_at
		FROM media m JOIN expressions e ON e.id = m.expression_id
		WHERE e.land_id = ? AND m.is_processed = 0 AND m.type = 'image'
		ORDER BY m.created_at LIMIT ?`, landID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medias []*Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		medias = append(medias, m)
	}
	return medias, rows.Err()
}

// MediaForExpression returns the media rows attached to an expression.
func (q *Queries) MediaForExpression(ctx context.Context, expressionID int64) ([]*Media, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, expression_id, url, url_hash, type,
		       width, height, format, color_mode, mime_type,
		       file_size, aspect_ratio, has_transparency, image_hash,
		       dominant_colors, websafe_colors, exif,
		       is_processed, processing_error, created_at
		FROM media WHERE expression_id = ? ORDER BY id`, expressionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var medias []*Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		medias = append(medias, m)
	}
	return medias, rows.Err()
}

func scanMedia(rows *sql.Rows) (*Media, error) {
	var m Media
	err := rows.Scan(
		&m.ID, &m.ExpressionID, &m.URL, &m.URLHash, &m.Type,
		&m.Width, &m.Height, &m.Format, &m.ColorMode, &m.MimeType,
		&m.FileSize, &m.AspectRatio, &m.HasTransparency, &m.ImageHash,
		&m.DominantColors, &m.WebsafeColors, &m.EXIF,
		&m.IsProcessed, &m.ProcessingError, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
