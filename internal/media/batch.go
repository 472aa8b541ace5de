package media

import (
	"context"
	"log/slog"

	"github.com/landscout/landscout/internal/store"
)

// ApplyTo copies the analysis onto a media row; zero-valued optional JSON
// blobs stay null.
func (a *Analysis) ApplyTo(row *store.Media) {
	row.Width = &a.Width
	row.Height = &a.Height
	row.Format = &a.Format
	row.ColorMode = &a.ColorMode
	row.MimeType = &a.MimeType
	row.FileSize = &a.FileSize
	row.AspectRatio = &a.AspectRatio
	row.HasTransparency = &a.HasTransparency
	row.ImageHash = &a.ImageHash
	if a.DominantColors != "" {
		row.DominantColors = &a.DominantColors
	}
	if a.WebsafeColors != "" {
		row.WebsafeColors = &a.WebsafeColors
	}
	if a.EXIF != "" {
		row.EXIF = &a.EXIF
	}
}

// BatchJob analyzes already-discovered media rows of a land, for deployments
// that keep inline analysis off during crawls.
type BatchJob struct {
	store    *store.Store
	analyzer *Analyzer
	logger   *slog.Logger
}

// NewBatchJob wires the batch analyzer.
func NewBatchJob(st *store.Store, analyzer *Analyzer, logger *slog.Logger) *BatchJob {
	return &BatchJob{
		store:    st,
		analyzer: analyzer,
		logger:   logger.With("component", "media_batch"),
	}
}

// Run analyzes up to limit unprocessed image rows. Failures are recorded on
// the row and counted, never raised.
func (j *BatchJob) Run(ctx context.Context, landID int64, limit int) (processed, failures int, err error) {
	rows, err := j.store.SelectUnprocessedMedia(ctx, landID, limit)
	if err != nil {
		return 0, 0, err
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			return processed, failures, ctx.Err()
		}

		analysis := j.analyzer.Analyze(ctx, row.URL)
		if analysis.Error != "" {
			row.ProcessingError = &analysis.Error
			failures++
		} else {
			analysis.ApplyTo(row)
			row.IsProcessed = true
			processed++
		}
		if err := j.store.UpdateMediaAnalysis(ctx, row); err != nil {
			return processed, failures, err
		}
	}

	j.logger.Info("media batch done",
		"land_id", landID, "processed", processed, "failures", failures)
	return processed, failures, nil
}
