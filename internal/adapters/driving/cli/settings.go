package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/searchsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/searchsync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage search settings",
	Long: `View and change the search tunables stored under [search] in config.toml.

Index definitions and the class hierarchy are edited in the file directly.`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func loadSettingValues() (map[string]any, error) {
	svc, err := requireServices()
	if err != nil {
		return nil, err
	}
	if svc.Config == nil {
		return nil, errors.New("config store not configured")
	}
	settings, err := file.LoadSettings(svc.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return file.SettingValues(settings), nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	values, err := loadSettingValues()
	if err != nil {
		return err
	}

	cmd.Println("[search]")
	for _, key := range file.SettingKeys() {
		cmd.Printf("  %s = %v\n", key, values[key])
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	values, err := loadSettingValues()
	if err != nil {
		return err
	}
	value, ok := values[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, args[0])
	}
	cmd.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := requireServices()
	if err != nil {
		return err
	}
	if svc.Config == nil {
		return errors.New("config store not configured")
	}

	key := args[0]
	value, err := file.ParseSetting(key, args[1])
	if err != nil {
		return err
	}
	if err := svc.Config.Set(file.SettingPath(key), value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}
