package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/agentx-labs/create-agentx/internal/config"
	"github.com/agentx-labs/create-agentx/internal/templates"
	"github.com/spf13/cobra"
)

// listEntry is a template as shown by list.
type listEntry struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

func newListCommand(build BuildInfo, deps *Deps) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Long: `List the built-in templates and those found in the configured template_dirs.
A template in a template directory shadows a built-in template of the same name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Decode(deps.Viper)
			if err != nil {
				return err
			}
			cwd, err := deps.Getwd()
			if err != nil {
				return fmt.Errorf("resolving working directory: %w", err)
			}

			registry := templates.Default(absPaths(cwd, settings.TemplateDirs), templates.WithCLIVersion(build.Version))
			summaries, err := registry.List()
			if err != nil {
				return fmt.Errorf("listing templates: %w", err)
			}

			entries := make([]listEntry, 0, len(summaries))
			for _, s := range summaries {
				entries = append(entries, listEntry(s))
			}

			if asJSON {
				out, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling templates: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TEMPLATE\tVERSION\tSOURCE\tDESCRIPTION")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.Version, e.Source, e.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
