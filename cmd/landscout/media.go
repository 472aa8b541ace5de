package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/landscout/landscout/internal/graph"
	"github.com/landscout/landscout/internal/media"
)

var mediaLimit int

// mediaCmd groups the media analysis subcommands.
func mediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Analyze discovered media",
	}
	cmd.AddCommand(mediaAnalyzeCmd(), mediaScrapeCmd())
	return cmd
}

func mediaAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [land]",
		Short: "Analyze unprocessed image rows (dimensions, colors, EXIF, hash)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			job := media.NewBatchJob(a.store, media.New(a.cfg, a.client, a.logger), a.logger)
			processed, failures, err := job.Run(ctx, land.ID, mediaLimit)
			if err != nil {
				return err
			}
			fmt.Printf("media analyzed: %d, failed: %d\n", processed, failures)
			return nil
		},
	}
	cmd.Flags().IntVarP(&mediaLimit, "limit", "n", 200, "maximum media rows to analyze")
	return cmd
}

func mediaScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape [url]",
		Short: "List media URLs on a dynamic page through a headless browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			scraper, err := graph.NewDynamicScraper(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer scraper.Close()

			refs, err := scraper.ScrapeMedia(ctx, args[0])
			if err != nil {
				return err
			}
			for _, ref := range refs {
				fmt.Printf("%s\t%s\n", ref.Type, ref.URL)
			}
			return nil
		},
	}
}
