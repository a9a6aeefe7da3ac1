package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Push index settings to the search service",
	Long: `Sends the field configuration of every index to the search service.
The push is idempotent and is not retried on failure.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Configure == nil {
		return errors.New("configure service not configured")
	}

	if err := svc.Configure.Configure(cmd.Context()); err != nil {
		return fmt.Errorf("configure failed: %w", err)
	}
	cmd.Println("Done.")
	return nil
}
