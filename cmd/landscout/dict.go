package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/landscout/landscout/internal/dictionary"
)

var dictRefresh bool

// dictCmd groups the dictionary subcommands.
func dictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage land dictionaries",
	}
	cmd.AddCommand(dictPopulateCmd())
	return cmd
}

func dictPopulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "populate [land] [term...]",
		Short: "Populate a land's dictionary from seed terms with morphological variants",
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

			svc := dictionary.New(a.store, a.logger)
			res, err := svc.Populate(cmd.Context(), land, args[1:], dictRefresh)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Println("dictionary already populated; use --refresh to rebuild")
				return nil
			}
			fmt.Printf("dictionary populated: %d entries\n", res.Count)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dictRefresh, "refresh", false, "clear and rebuild the dictionary")
	return cmd
}
