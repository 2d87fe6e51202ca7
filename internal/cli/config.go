package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/cosmere/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and modify cosmere configuration.

Configuration is stored in ~/.config/cosmere/config.yaml. Every key can also
be set from the environment, e.g. COSMERE_API_BASE_URL.

Examples:
  cosmere config get api.base_url
  cosmere config set api.base_url https://cosmere.example.com/api/v1
  cosmere config set search.debounce 500ms
  cosmere config list`,
}

var configGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Get a configuration value",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := config.GetValue(key)
		if value == nil {
			return fmt.Errorf("key not found: %s", key)
		}
		fmt.Fprintf(stdout, "%s = %v\n", key, value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:               "set [key] [value]",
	Short:             "Set a configuration value",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("failed to set config: %w", err)
		}

		Successf("Set %s = %s", key, value)
		fmt.Fprintf(stdout, "Config saved to: %s\n", config.GetConfigPath())
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every configuration value",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, key := range config.Keys() {
			fmt.Fprintf(stdout, "%s = %v\n", key, config.GetValue(key))
		}
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(stdout, "Config file: %s\n", config.GetConfigPath())
		fmt.Fprintf(stdout, "Database:    %s\n", config.GetDBPath())
		fmt.Fprintf(stdout, "Log file:    %s\n", config.Get().Log.File)
		fmt.Fprintf(stdout, "Config dir:  %s\n", config.GetConfigDir())
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
}
