package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ipguard/internal/platform/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration values and their sources",
	Long: `Show effective configuration values and their sources.

A source is "default", "file" or "env".
Secrets are masked.

Example:
  ipguard config show
  ipguard config show --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("config")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return showConfiguration(cmd.OutOrStdout(), cfg, asJSON)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().Bool("json", false, "Print as JSON")
}

func showConfiguration(w io.Writer, cfg *config.Config, asJSON bool) error {
	attrs := cfg.Attributes()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Path       string             `json:"path"`
			Attributes []config.Attribute `json:"attributes"`
		}{cfg.Path(), attrs})
	}

	fmt.Fprintf(w, "# %s\n", cfg.Path())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVALUE\tSOURCE")
	for _, a := range attrs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, a.Value, a.Source)
	}
	return tw.Flush()
}
