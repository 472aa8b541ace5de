package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/landscout/landscout/internal/crawler"
)

var (
	crawlLimit  int
	crawlDepth  int
	crawlStatus int
	crawlLLM    bool
	crawlNoJob  bool
)

// crawlCmd runs one crawl batch for a land.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [land]",
		Short: "Crawl a batch of pending expressions for a land",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawl,
	}
	cmd.Flags().IntVarP(&crawlLimit, "limit", "n", 0, "batch size (default from config)")
	cmd.Flags().IntVarP(&crawlDepth, "depth", "d", -1, "only expressions at this depth")
	cmd.Flags().IntVar(&crawlStatus, "http", -1, "only expressions with this recorded HTTP status")
	cmd.Flags().BoolVar(&crawlLLM, "llm", false, "run the LLM relevance gate")
	cmd.Flags().BoolVar(&crawlNoJob, "no-job", false, "skip job tracking and progress broadcasting")
	return cmd
}

func runCrawl(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	land, err := a.resolveLand(ctx, args[0])
	if err != nil {
		return err
	}

	opts := crawler.Options{Limit: crawlLimit, EnableLLM: crawlLLM}
	if crawlDepth >= 0 {
		opts.Depth = &crawlDepth
	}
	if crawlStatus >= 0 {
		opts.HTTPStatus = &crawlStatus
	}

	if !crawlNoJob {
		job, err := a.coord.Create(ctx, land.ID, "crawl", nil)
		if err != nil {
			return err
		}
		if err := a.coord.Start(ctx, job.ID); err != nil {
			return err
		}
		opts.Job = job
		fmt.Printf("job %s started (channel %s)\n", job.ID, job.Channel)
	}

	res, err := a.engine().CrawlLand(ctx, land.ID, opts)
	if opts.Job != nil {
		if err != nil {
			a.coord.Fail(ctx, opts.Job.ID, err.Error())
		} else {
			payload, _ := json.Marshal(res)
			data := string(payload)
			a.coord.Complete(ctx, opts.Job.ID, &data)
		}
	}
	if err != nil {
		return err
	}

	fmt.Printf("processed %d, errors %d\n", res.Processed, res.Errors)
	for bucket, n := range res.HTTPStats {
		fmt.Printf("  %s: %d\n", bucket, n)
	}
	return nil
}
