package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/landscout/landscout/internal/config"
)

var (
	landDescription string
	landLanguages   string
)

// landCmd groups the land management subcommands.
func landCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "land",
		Short: "Create and manage lands (research topics)",
	}
	cmd.AddCommand(landCreateCmd(), landListCmd(), landAddURLCmd(), landDeleteCmd())
	return cmd
}

func landCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a new land",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			langs := splitCSV(landLanguages)
			if len(langs) == 0 {
				langs = a.cfg.Crawler.Languages
			}
			land, err := a.store.CreateLand(cmd.Context(), args[0], landDescription, langs)
			if err != nil {
				return err
			}
			fmt.Printf("land %d created: %s (%s)\n", land.ID, land.Name, strings.Join(land.Languages, ","))
			return nil
		},
	}
	cmd.Flags().StringVarP(&landDescription, "description", "d", "", "land description")
	cmd.Flags().StringVarP(&landLanguages, "languages", "l", "", "comma-separated language tags (default from config)")
	return cmd
}

func landListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			lands, err := a.store.ListLands(cmd.Context())
			if err != nil {
				return err
			}
			for _, land := range lands {
				fmt.Printf("%d\t%s\t[%s]\t%d seed urls\n",
					land.ID, land.Name, strings.Join(land.Languages, ","), len(land.StartURLs))
			}
			return nil
		},
	}
}

func landAddURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addurl [land] [url...]",
		Short: "Add seed URLs to a land",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			land, err := a.resolveLand(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			urls := args[1:]
			for _, u := range urls {
				if err := config.ValidateURL(u); err != nil {
					return fmt.Errorf("%q: %w", u, err)
				}
			}
			if err := a.store.AddStartURLs(cmd.Context(), land.ID, urls); err != nil {
				return err
			}
			fmt.Printf("%d url(s) added to land %d\n", len(urls), land.ID)
			return nil
		},
	}
}

func landDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [land]",
		Short: "Delete a land and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			land, err := a.resolveLand(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteLand(cmd.Context(), land.ID); err != nil {
				return err
			}
			fmt.Printf("land %d deleted\n", land.ID)
			return nil
		},
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
