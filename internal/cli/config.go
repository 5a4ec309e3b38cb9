package cli

import (
	"fmt"

	"github.com/agentx-labs/create-agentx/internal/branding"
	"github.com/agentx-labs/create-agentx/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(deps *Deps) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user settings",
		Long: fmt.Sprintf(`Read and write settings stored at %s.

Environment variables override the file: %s sets package_manager,
%s sets git.author_email.`,
			config.FilePath(), branding.EnvVar("PACKAGE_MANAGER"), branding.EnvVar("GIT_AUTHOR_EMAIL")),
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := config.Set(deps.Viper, key, value); err != nil {
				return fmt.Errorf("setting config key %q: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), deps.Viper.GetString(args[0]))
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List effective configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range config.Keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, deps.Viper.Get(key))
			}
			return nil
		},
	})

	return configCmd
}
