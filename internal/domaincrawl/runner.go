package domaincrawl

import (
	"context"
	"log/slog"

	"github.com/landscout/landscout/internal/store"
)

// Runner sweeps a land's domains that have no fetched metadata yet.
type Runner struct {
	store   *store.Store
	crawler *Crawler
	logger  *slog.Logger
}

// NewRunner wires the batch sweep.
func NewRunner(st *store.Store, crawler *Crawler, logger *slog.Logger) *Runner {
	return &Runner{
		store:   st,
		crawler: crawler,
		logger:  logger.With("component", "domain_runner"),
	}
}

// Run crawls up to limit unfetched domains. Ladder failures are written to
// the row and counted; only store errors stop the sweep.
func (r *Runner) Run(ctx context.Context, landID int64, limit int) (processed, failures int, err error) {
	rows, err := r.store.SelectUnfetchedDomains(ctx, landID, limit)
	if err != nil {
		return 0, 0, err
	}

	for _, row := range rows {
		if ctx.Err() != nil {
			return processed, failures, ctx.Err()
		}

		result := r.crawler.Crawl(ctx, row.Name)
		applyResult(row, result)
		if err := r.store.UpdateDomainMetadata(ctx, row); err != nil {
			return processed, failures, err
		}
		if result.OK() {
			processed++
		} else {
			failures++
		}
	}

	r.logger.Info("domain sweep done",
		"land_id", landID, "processed", processed, "failures", failures)
	return processed, failures, nil
}

// applyResult copies a crawl result onto the domain row. The fetch is
// recorded even when every rung missed, so the sweep does not retry the
// same dead domain forever.
func applyResult(row *store.Domain, result *Result) {
	setIf(&row.Title, result.Title)
	setIf(&row.Description, result.Description)
	setIf(&row.Keywords, result.Keywords)
	setIf(&row.Language, result.Language)
	if result.HTTPStatus > 0 {
		status := result.HTTPStatus
		row.HTTPStatus = &status
	}
	if result.SourceMethod != "" {
		method := result.SourceMethod
		row.SourceMethod = &method
	}
	fetchedAt := result.FetchedAt
	row.FetchedAt = &fetchedAt
}

func setIf(dst **string, value string) {
	if value != "" {
		v := value
		*dst = &v
	}
}
