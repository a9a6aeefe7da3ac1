package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/searchsync/internal/core/domain"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect reindex jobs",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reindex jobs, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show the state of a reindex job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsStatus,
}

func init() {
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Reindex == nil {
		return errors.New("reindex service not configured")
	}

	states, err := svc.Reindex.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}
	if len(states) == 0 {
		cmd.Println("No reindex jobs.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSTEPS\tUPDATED\tERROR")
	for i := range states {
		s := states[i]
		fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\n",
			s.JobID, s.Status, s.CurrentStep, s.TotalSteps,
			s.UpdatedAt.Local().Format(time.DateTime), s.LastError)
	}
	return w.Flush()
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Reindex == nil {
		return errors.New("reindex service not configured")
	}

	state, err := svc.Reindex.Status(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}
	printJob(cmd, state)
	return nil
}

func printJob(cmd *cobra.Command, s *domain.ReindexState) {
	cmd.Printf("Job:      %s\n", s.JobID)
	cmd.Printf("Title:    %s\n", domain.ReindexTitle(s.OnlyClasses))
	cmd.Printf("Status:   %s\n", s.Status)
	cmd.Printf("Progress: %d/%d steps (%.0f%%)\n", s.CurrentStep, s.TotalSteps, s.Progress()*100)
	cmd.Printf("Batch:    %d\n", s.BatchSize)
	if f, ok := s.ActiveFetcher(); ok && !s.IsComplete {
		cmd.Printf("Cursor:   %s at %d of %d\n", f.Class, s.FetchOffset, f.TotalDocuments)
	}
	if s.LastError != "" {
		cmd.Printf("Error:    %s\n", s.LastError)
	}
	if !s.UpdatedAt.IsZero() {
		cmd.Printf("Updated:  %s\n", s.UpdatedAt.Local().Format(time.DateTime))
	}
}
