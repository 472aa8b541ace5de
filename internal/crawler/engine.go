// Package crawler is the crawl engine: it selects pending expressions,
// fetches them with a bounded worker pool, runs the extraction cascade and
// the scoring stages, and persists everything through strictly serialized
// per-expression transactions.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/extract"
	"github.com/landscout/landscout/internal/fetcher"
	"github.com/landscout/landscout/internal/graph"
	"github.com/landscout/landscout/internal/jobs"
	"github.com/landscout/landscout/internal/llm"
	"github.com/landscout/landscout/internal/quality"
	"github.com/landscout/landscout/internal/relevance"
	"github.com/landscout/landscout/internal/sentiment"
	"github.com/landscout/landscout/internal/store"
	"github.com/landscout/landscout/internal/textutil"
)

// Options narrows one CrawlLand invocation.
type Options struct {
	Limit      int
	Depth      *int
	HTTPStatus *int
	EnableLLM  bool

	// Job, when set, wires progress broadcasting and cancellation.
	Job *store.CrawlJob
}

// Result is the engine's public contract: failures are counted, never
// raised.
type Result struct {
	Processed int
	Errors    int
	HTTPStats map[string]int
}

// Engine orchestrates one land crawl at a time. The HTTP pool fans out;
// everything that touches the store runs on the calling goroutine.
type Engine struct {
	cfg       *config.Settings
	store     *store.Store
	client    *fetcher.Client
	cascade   *extract.Cascade
	builder   *graph.Builder
	scorer    *quality.Scorer
	validator llm.Validator      // nil disables the gate
	enricher  sentiment.Enricher // nil disables enrichment
	coord     *jobs.Coordinator  // nil disables progress/cancellation
	logger    *slog.Logger
}

// New assembles an engine from its collaborators; validator, enricher and
// coord may be nil.
func New(cfg *config.Settings, st *store.Store, client *fetcher.Client,
	cascade *extract.Cascade, builder *graph.Builder,
	validator llm.Validator, enricher sentiment.Enricher,
	coord *jobs.Coordinator, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		store:     st,
		client:    client,
		cascade:   cascade,
		builder:   builder,
		scorer:    quality.New(cfg),
		validator: validator,
		enricher:  enricher,
		coord:     coord,
		logger:    logger.With("component", "crawler"),
	}
}

// CrawlLand crawls one batch of pending expressions for a land.
func (e *Engine) CrawlLand(ctx context.Context, landID int64, opts Options) (*Result, error) {
	land, err := e.store.GetLand(ctx, landID)
	if err != nil {
		return nil, fmt.Errorf("load land %d: %w", landID, err)
	}

	if err := e.materializeSeeds(ctx, land); err != nil {
		return nil, err
	}

	dict, err := e.store.LoadDictionary(ctx, landID)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = e.cfg.Crawler.BatchLimit
	}
	batch, err := e.store.SelectCrawlBatch(ctx, landID, limit,
		store.CrawlFilter{Depth: opts.Depth, HTTPStatus: opts.HTTPStatus})
	if err != nil {
		return nil, fmt.Errorf("select batch: %w", err)
	}

	result := &Result{HTTPStats: make(map[string]int)}
	if len(batch) == 0 {
		return result, nil
	}

	e.logger.Info("crawl batch selected",
		"land_id", landID, "batch", len(batch), "dictionary", len(dict))

	fetches := e.fetchAll(ctx, batch)
	lang := primaryLanguage(land)

	for i, expr := range batch {
		if e.cancelled(ctx, opts.Job) {
			e.logger.Info("crawl cancelled", "land_id", landID, "processed", result.Processed)
			break
		}

		fetch := fetches[i]
		bucket := "error"
		if fetch.StatusCode > 0 {
			bucket = strconv.Itoa(fetch.StatusCode)
		}
		result.HTTPStats[bucket]++

		err := e.store.InTx(ctx, func(q *store.Queries) error {
			return e.processExpression(ctx, q, land, dict, lang, expr, fetch, opts)
		})
		if err != nil {
			result.Errors++
			e.logger.Warn("expression failed", "url", expr.URL, "error", err)
		} else {
			result.Processed++
		}

		e.publishProgress(ctx, opts.Job, i+1, len(batch), false)
	}

	e.publishProgress(ctx, opts.Job, result.Processed, len(batch), true)
	e.logger.Info("crawl batch done",
		"land_id", landID, "processed", result.Processed,
		"errors", result.Errors, "http_stats", result.HTTPStats)
	return result, nil
}

// materializeSeeds turns the land's start URLs into depth-0 expressions the
// first time the land is crawled.
func (e *Engine) materializeSeeds(ctx context.Context, land *store.Land) error {
	if len(land.StartURLs) == 0 {
		return nil
	}
	has, err := e.store.HasExpressions(ctx, land.ID)
	if err != nil || has {
		return err
	}

	return e.store.InTx(ctx, func(q *store.Queries) error {
		for _, seed := range land.StartURLs {
			canonical := graph.Canonicalize("", seed)
			if canonical == "" {
				e.logger.Warn("seed url rejected", "url", seed)
				continue
			}
			domainID, err := q.UpsertDomain(ctx, land.ID, graph.Netloc(canonical))
			if err != nil {
				return err
			}
			if _, err := q.UpsertExpression(ctx, land.ID, canonical, store.URLHash(canonical), &domainID, 0); err != nil {
				return err
			}
		}
		return nil
	})
}

// fetchAll runs the HTTP pool over the batch and returns results aligned
// with the input order.
func (e *Engine) fetchAll(ctx context.Context, batch []*store.Expression) []*fetcher.Result {
	concurrency := e.cfg.Crawler.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*fetcher.Result, len(batch))
	sem := make(chan struct{}, concurrency)
	done := make(chan int)

	for i, expr := range batch {
		go func(i int, url string) {
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.client.Get(ctx, url)
			done <- i
		}(i, expr.URL)
	}
	for range batch {
		<-done
	}
	return results
}

// processExpression runs the per-URL pipeline inside one transaction:
// extraction, metrics, scoring gates, approval, then graph discovery.
func (e *Engine) processExpression(ctx context.Context, q *store.Queries,
	land *store.Land, dict []store.DictionaryEntry, lang string,
	expr *store.Expression, fetch *fetcher.Result, opts Options) error {

	now := time.Now().UTC()
	expr.CrawledAt = &now
	expr.HTTPStatus = &fetch.StatusCode
	if fetch.ContentType != "" {
		expr.ContentType = &fetch.ContentType
	}
	if fetch.ContentLength > 0 {
		expr.ContentLength = &fetch.ContentLength
	}
	if fetch.ETag != "" {
		expr.Etag = &fetch.ETag
	}
	expr.LastModified = fetch.LastModified

	body := string(fetch.Body)
	res := e.cascade.Extract(ctx, expr.URL, body)

	if res.Content != "" {
		expr.Content = &res.Content
	}
	setString(&expr.Title, res.Title)
	setString(&expr.Description, res.Description)
	setString(&expr.Keywords, res.Keywords)
	setString(&expr.CanonicalURL, res.CanonicalURL)
	tag := res.SourceTag
	expr.SourceTag = &tag
	if res.PublishedAt != nil {
		expr.PublishedAt = res.PublishedAt
	}

	if res.Readable != "" {
		expr.Readable = &res.Readable
		expr.ReadableAt = &now

		wc := textutil.WordCount(res.Readable)
		rt := wc / 200
		if rt < 1 {
			rt = 1
		}
		expr.WordCount = &wc
		expr.ReadingTime = &rt

		language := res.Language
		if language == "" {
			language = textutil.DetectLanguage(res.Readable)
		}
		setString(&expr.Language, language)
	}

	exprLang := lang
	if expr.Language != nil && *expr.Language != "" {
		exprLang = *expr.Language
	}
	score := relevance.Score(dict, relevance.Input{
		Title:    deref(expr.Title),
		Readable: deref(expr.Readable),
	}, exprLang)
	expr.Relevance = &score

	if opts.EnableLLM && e.validator != nil && score > 0 {
		e.validate(ctx, expr, land)
	}

	if e.cfg.Sentiment.Enabled && e.enricher != nil && expr.Readable != nil {
		e.enrich(ctx, expr)
	}

	// Approval tracks readable content, not relevance.
	if expr.Readable != nil {
		expr.ApprovedAt = &now
	}

	if e.cfg.Quality.Enabled {
		qres := e.scorer.Compute(qualityView(expr), land.Languages)
		expr.QualityScore = &qres.Score
	}

	if err := q.UpdateExpression(ctx, expr); err != nil {
		return err
	}

	_, err := e.builder.Process(ctx, q, expr, res)
	return err
}

// validate runs the LLM gate. A failing validator leaves the verdict null
// and relevance untouched.
func (e *Engine) validate(ctx context.Context, expr *store.Expression, land *store.Land) {
	verdict, err := e.validator.Validate(ctx, expr, land)
	if err != nil {
		e.logger.Warn("llm validation skipped", "url", expr.URL, "error", err)
		return
	}
	answer := "non"
	if verdict.IsRelevant {
		answer = "oui"
	} else {
		zero := 0.0
		expr.Relevance = &zero
	}
	expr.ValidLLM = &answer
	expr.ValidModel = &verdict.ModelUsed
}

// enrich runs the sentiment service; failures leave the fields null.
func (e *Engine) enrich(ctx context.Context, expr *store.Expression) {
	enrichment, err := e.enricher.Enrich(ctx, deref(expr.Readable), deref(expr.Language))
	if err != nil {
		e.logger.Warn("sentiment skipped", "url", expr.URL, "error", err)
		return
	}
	expr.SentimentScore = &enrichment.Score
	expr.SentimentLabel = &enrichment.Label
}

func (e *Engine) cancelled(ctx context.Context, job *store.CrawlJob) bool {
	if ctx.Err() != nil {
		return true
	}
	if job == nil || e.coord == nil {
		return false
	}
	return e.coord.IsCancelled(ctx, job.ID)
}

func (e *Engine) publishProgress(ctx context.Context, job *store.CrawlJob, current, total int, completed bool) {
	if job == nil || e.coord == nil {
		return
	}
	interval := e.cfg.Crawler.ProgressInterval
	if interval < 1 {
		interval = 1
	}
	if !completed && current%interval != 0 {
		return
	}
	message := fmt.Sprintf("processed %d/%d", current, total)
	if completed {
		message = "crawl finished"
	}
	e.coord.Progress(ctx, job, current, total, message, completed)
}

// qualityView projects an expression into the scorer's structural view.
func qualityView(expr *store.Expression) *quality.ExpressionView {
	return &quality.ExpressionView{
		HTTPStatus:    expr.HTTPStatus,
		ContentType:   expr.ContentType,
		CrawledAt:     expr.CrawledAt,
		Title:         expr.Title,
		Description:   expr.Description,
		Keywords:      expr.Keywords,
		CanonicalURL:  expr.CanonicalURL,
		WordCount:     expr.WordCount,
		ContentLength: expr.ContentLength,
		ReadingTime:   expr.ReadingTime,
		Language:      expr.Language,
		Relevance:     expr.Relevance,
		PublishedAt:   expr.PublishedAt,
		ValidLLM:      expr.ValidLLM,
		Readable:      expr.Readable,
		ApprovedAt:    expr.ApprovedAt,
	}
}

func primaryLanguage(land *store.Land) string {
	if len(land.Languages) > 0 {
		return land.Languages[0]
	}
	return "fr"
}

func setString(dst **string, value string) {
	if value != "" {
		v := value
		*dst = &v
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
