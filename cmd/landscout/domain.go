package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/landscout/landscout/internal/domaincrawl"
)

var domainLimit int

// domainCmd groups the domain metadata subcommands.
func domainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Fetch homepage metadata for a land's domains",
	}
	cmd.AddCommand(domainCrawlCmd(), domainGetCmd())
	return cmd
}

func domainCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [land]",
		Short: "Sweep domains that have no fetched metadata yet",
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

			runner := domaincrawl.NewRunner(a.store,
				domaincrawl.New(a.cfg, a.client, a.logger), a.logger)
			processed, failures, err := runner.Run(ctx, land.ID, domainLimit)
			if err != nil {
				return err
			}
			fmt.Printf("domains fetched: %d, failed: %d\n", processed, failures)
			return nil
		},
	}
	cmd.Flags().IntVarP(&domainLimit, "limit", "n", 100, "maximum domains to sweep")
	return cmd
}

func domainGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [domain-name]",
		Short: "Crawl a single domain and print the result without persisting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			res := domaincrawl.New(a.cfg, a.client, a.logger).Crawl(ctx, args[0])
			if !res.OK() {
				fmt.Printf("%s: %s (%s) after %dms\n",
					res.Domain, res.ErrorCode, res.ErrorMessage, res.FetchDurationMS)
				return nil
			}
			fmt.Printf("%s [%d] via %s\n", res.Domain, res.HTTPStatus, res.SourceMethod)
			fmt.Printf("  title:       %s\n", res.Title)
			fmt.Printf("  description: %s\n", res.Description)
			fmt.Printf("  language:    %s\n", res.Language)
			return nil
		},
	}
}
