// landscout is the command-line frontend of the crawl pipeline: lands,
// dictionaries, crawls, domain sweeps, media analysis, and job control.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/crawler"
	"github.com/landscout/landscout/internal/extract"
	"github.com/landscout/landscout/internal/fetcher"
	"github.com/landscout/landscout/internal/graph"
	"github.com/landscout/landscout/internal/jobs"
	"github.com/landscout/landscout/internal/llm"
	"github.com/landscout/landscout/internal/media"
	"github.com/landscout/landscout/internal/sentiment"
	"github.com/landscout/landscout/internal/store"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:           "landscout",
		Short:         "Topic-scoped web crawler with extraction, scoring and link-graph building",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./landscout.yaml)")

	root.AddCommand(landCmd(), dictCmd(), crawlCmd(), domainCmd(), mediaCmd(), jobsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT/SIGTERM so a running crawl stops at
// the next expression boundary.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func setupLogger(cfg *config.Settings) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// app holds the shared collaborators every subcommand needs.
type app struct {
	cfg         *config.Settings
	logger      *slog.Logger
	store       *store.Store
	client      *fetcher.Client
	broadcaster jobs.Broadcaster
	coord       *jobs.Coordinator
}

func openApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := setupLogger(cfg)

	st, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return nil, err
	}

	var broadcaster jobs.Broadcaster
	if cfg.Redis.Enabled {
		broadcaster = jobs.NewRedisBroadcaster(cfg.Redis.Addr, cfg.Redis.DB)
	} else {
		broadcaster = jobs.NewMemoryBroadcaster()
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		store:       st,
		client:      fetcher.New(cfg, logger),
		broadcaster: broadcaster,
		coord:       jobs.NewCoordinator(st, broadcaster, logger),
	}, nil
}

func (a *app) Close() {
	a.client.Close()
	a.broadcaster.Close()
	a.store.Close()
}

// engine assembles the crawl engine with the optional validator, enricher
// and inline media analyzer the configuration asks for.
func (a *app) engine() *crawler.Engine {
	var analyzer *media.Analyzer
	if a.cfg.Media.AnalyzeMedia {
		analyzer = media.New(a.cfg, a.client, a.logger)
	}
	var validator llm.Validator
	if a.cfg.LLM.Enabled {
		validator = llm.NewOpenRouter(a.cfg, a.logger)
	}
	var enricher sentiment.Enricher
	if a.cfg.Sentiment.Enabled {
		enricher = sentiment.NewOpenRouterEnricher(a.cfg, a.logger)
	}

	cascade := extract.NewCascade(a.cfg, a.client, a.logger)
	builder := graph.NewBuilder(a.cfg, analyzer, a.logger)
	return crawler.New(a.cfg, a.store, a.client, cascade, builder, validator, enricher, a.coord, a.logger)
}

// resolveLand accepts a numeric land id or a land name.
func (a *app) resolveLand(ctx context.Context, ref string) (*store.Land, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return a.store.GetLand(ctx, id)
	}
	return a.store.GetLandByName(ctx, ref)
}
