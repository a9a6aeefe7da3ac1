package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/searchsync/internal/adapters/driving/progress"
	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
)

var (
	reindexBatchSize  int
	reindexResume     string
	reindexNoProgress bool
)

var reindexCmd = &cobra.Command{
	Use:   "reindex [class...]",
	Short: "Reindex searchable records",
	Long: `Plans and runs a batch reindex job. Without arguments every searchable
base class is reindexed; class arguments restrict the run to those classes.

The job cursor is saved after every batch. A job that stops on an error can
be continued with --resume.`,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().IntVarP(&reindexBatchSize, "batch-size", "b", 0, "documents per batch (default from settings)")
	reindexCmd.Flags().StringVar(&reindexResume, "resume", "", "resume the job with this id")
	reindexCmd.Flags().BoolVar(&reindexNoProgress, "no-progress", false, "print plain step lines instead of the progress view")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Reindex == nil {
		return errors.New("reindex service not configured")
	}
	if reindexResume != "" && len(args) > 0 {
		return fmt.Errorf("%w: classes cannot be given with --resume", domain.ErrInvalidInput)
	}

	opts := driving.ReindexOptions{Classes: args}
	if cmd.Flags().Changed("batch-size") {
		size := reindexBatchSize
		opts.BatchSize = &size
	}

	run := func(ctx context.Context) (*domain.ReindexState, error) {
		if reindexResume != "" {
			return svc.Reindex.Resume(ctx, reindexResume)
		}
		return svc.Reindex.Start(ctx, opts)
	}

	var state *domain.ReindexState
	if !reindexNoProgress && isTerminal(cmd.OutOrStdout()) {
		state, err = progress.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), domain.ReindexTitle(args), run)
	} else {
		cmd.Println(domain.ReindexTitle(args))
		ctx := driving.WithObserver(cmd.Context(), func(s domain.ReindexState) {
			if s.CurrentStep > 0 {
				cmd.Printf("Step %d/%d\n", s.CurrentStep, s.TotalSteps)
			}
		})
		state, err = run(ctx)
	}

	if err != nil {
		if state != nil && state.JobID != "" {
			cmd.PrintErrf("Job %s stopped at step %d/%d. Resume with: searchsync reindex --resume %s\n",
				state.JobID, state.CurrentStep, state.TotalSteps, state.JobID)
		}
		return fmt.Errorf("reindex failed: %w", err)
	}

	cmd.Printf("Job %s complete: %d/%d steps.\n", state.JobID, state.CurrentStep, state.TotalSteps)
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
