package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/searchsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/searchsync/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the task endpoints over HTTP",
	Long: `Starts an HTTP server exposing:

  POST /dev/tasks/SearchConfigure   push index settings
  POST /jobs/reindex                queue a reindex job
  GET  /jobs                        list jobs
  GET  /jobs/{id}                   show one job`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Reindex == nil || svc.Configure == nil {
		return errors.New("reindex and configure services are required")
	}
	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(cmd.Context(), svc.Reindex, svc.Configure)
	cmd.Printf("Listening on %s\n", addr)
	return httpapi.Serve(cmd.Context(), addr, handler)
}
