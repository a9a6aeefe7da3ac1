package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/searchsync/internal/logger"
)

// reloadDebounce collapses the burst of events an editor save produces.
const reloadDebounce = 250 * time.Millisecond

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled incremental reindexing",
	Long: `Runs the scheduler in the foreground. The incremental reindex task runs
at the configured sync interval.

The daemon watches config.toml and rebuilds its services when the file
changes.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Scheduler == nil {
		return errors.New("scheduler not configured")
	}
	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	ctx := cmd.Context()
	var reloads <-chan struct{}
	if svc.Config != nil {
		ch, stop, err := watchConfig(ctx, svc.Config.Path())
		if err != nil {
			logger.Warn("config watch disabled: %v", err)
		} else {
			defer stop()
			reloads = ch
		}
	}

	cmd.Println("Scheduler running. Press Ctrl+C to stop.")
	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func(s *Services) { done <- s.Scheduler.Start(runCtx) }(services)

		select {
		case <-ctx.Done():
			cancel()
			<-done
			cmd.Println("Scheduler stopped.")
			return nil

		case err := <-done:
			cancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("scheduler failed: %w", err)
			}
			return nil

		case <-reloads:
			cancel()
			<-done
			if err := reloadServices(); err != nil {
				logger.Error("reload failed, keeping previous configuration: %v", err)
			} else {
				cmd.Println("Configuration reloaded.")
			}
		}
	}
}

// reloadServices rebuilds the services from the current configuration.
// The previous services stay in place when the rebuild fails.
func reloadServices() error {
	if bootstrap == nil {
		return nil
	}
	next, err := bootstrap(homeDir)
	if err != nil {
		return err
	}
	if next.Scheduler == nil {
		next.close() //nolint:errcheck
		return errors.New("rebuilt services have no scheduler")
	}
	if services != nil && services.Scheduler != nil {
		if err := services.Scheduler.Stop(); err != nil {
			logger.Warn("stopping previous scheduler: %v", err)
		}
	}
	if err := services.close(); err != nil {
		logger.Warn("closing previous services: %v", err)
	}
	services = next
	return nil
}

// watchConfig signals on the returned channel when the file at path changes.
// The parent directory is watched so editors that replace the file are seen.
func watchConfig(ctx context.Context, path string) (<-chan struct{}, func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("creating watcher: %w", err)
	}
	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close() //nolint:errcheck
		return nil, nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if configChanged(event, path) {
					debounce = time.After(reloadDebounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher: %v", err)
			case <-debounce:
				debounce = nil
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()
	return changes, watcher.Close, nil
}

// configChanged reports whether event rewrote the file at path.
func configChanged(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
