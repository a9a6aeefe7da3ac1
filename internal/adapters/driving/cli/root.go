// Package cli provides the searchsync command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// RecordStore writes records into the content database.
type RecordStore interface {
	SaveRecord(ctx context.Context, doc domain.Document) error
	AddDependency(ctx context.Context, dependent, dependency domain.Document) error
}

// Services holds the core services the commands drive.
type Services struct {
	Reindex   driving.ReindexService
	Configure driving.ConfigureService
	Scheduler driving.Scheduler
	Config    driven.ConfigStore
	Records   RecordStore

	// Close releases the resources behind the services. Optional.
	Close func() error
}

func (s *Services) close() error {
	if s == nil || s.Close == nil {
		return nil
	}
	return s.Close()
}

// Bootstrap builds the services for a home directory. An empty home means
// the default location.
type Bootstrap func(home string) (*Services, error)

var (
	version = "dev"
	verbose bool
	homeDir string

	bootstrap Bootstrap
	services  *Services
)

var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "searchsync",
	Short: "Incremental batch reindexing for a search service",
	Long: `searchsync keeps a remote search service in step with a content database.

It plans resumable reindex jobs over every searchable record class, pushes
documents in batches and persists its cursor after each batch.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return loadServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "configuration directory (default ~/.searchsync)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds the services.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs prebuilt services, bypassing the bootstrap.
func SetServices(s *Services) {
	services = s
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := services.close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	return err
}

func loadServices() error {
	if services != nil || bootstrap == nil {
		return nil
	}
	s, err := bootstrap(homeDir)
	if err != nil {
		return err
	}
	services = s
	return nil
}

func requireServices() (*Services, error) {
	if services == nil {
		return nil, errNotConfigured
	}
	return services, nil
}
