package store

import (
	"context"
	"fmt"
)

// InsertLink inserts a directed edge unless the unordered pair already has
// one, in either direction. Self-edges are refused. Returns true when a row
// was written.
func (q *Queries) InsertLink(ctx context.Context, link *ExpressionLink) (bool, error) {
	if link.SourceID == link.TargetID {
		return false, fmt.Errorf("self edge refused for expression %d", link.SourceID)
	}

	var n int
	err := q.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM expression_links
			WHERE (source_id = ? AND target_id = ?) OR (source_id = ? AND target_id = ?)
		)`,
		link.SourceID, link.TargetID, link.TargetID, link.SourceID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check link pair: %w", err)
	}
	if n == 1 {
		return false, nil
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO expression_links (source_id, target_id, anchor_text, rel_attr, link_type)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id) DO NOTHING`,
		link.SourceID, link.TargetID, link.AnchorText, link.RelAttr, link.LinkType)
	if err != nil {
		return false, fmt.Errorf("insert link %d->%d: %w", link.SourceID, link.TargetID, err)
	}
	return true, nil
}

// OutgoingLinks returns the edges leaving an expression.
func (q *Queries) OutgoingLinks(ctx context.Context, sourceID int64) ([]*ExpressionLink, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT source_id, target_id, anchor_text, rel_attr, link_type
		FROM expression_links WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*ExpressionLink
	for rows.Next() {
		var l ExpressionLink
		if err := rows.Scan(&l.SourceID, &l.TargetID, &l.AnchorText, &l.RelAttr, &l.LinkType); err != nil {
			return nil, err
		}
		links = append(links, &l)
	}
	return links, rows.Err()
}

// CountLinks returns the number of edges for a land.
func (q *Queries) CountLinks(ctx context.Context, landID int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM expression_links l
		JOIN expressions e ON e.id = l.source_id
		WHERE e.land_id = ?`, landID).Scan(&n)
	return n, err
}
