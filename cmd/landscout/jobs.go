package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// jobsCmd groups the job control subcommands.
func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and control crawl jobs",
	}
	cmd.AddCommand(jobsShowCmd(), jobsCancelCmd())
	return cmd
}

func jobsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [job-id]",
		Short: "Show a job's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			job, err := a.store.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\t%s\tland %d\n", job.ID, job.JobType, job.Status, job.LandID)
			if job.StartedAt != nil {
				fmt.Printf("  started:   %s\n", job.StartedAt.Format("2006-01-02 15:04:05"))
			}
			if job.CompletedAt != nil {
				fmt.Printf("  completed: %s\n", job.CompletedAt.Format("2006-01-02 15:04:05"))
			}
			if job.ResultData != nil {
				fmt.Printf("  result:    %s\n", *job.ResultData)
			}
			if job.ErrorMessage != nil {
				fmt.Printf("  error:     %s\n", *job.ErrorMessage)
			}
			return nil
		},
	}
}

func jobsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [job-id]",
		Short: "Cancel a pending or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.coord.Cancel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("job %s cancelled\n", args[0])
			return nil
		},
	}
}
