// Command ipguard runs the IP trust verification service and administers its
// trust store.
//
//	ipguard serve --config config.yml
//	ipguard trust set <principal> <address>
//	ipguard config show --output json
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "ipguard",
	Short:         "Verify that privileged sessions connect from trusted addresses",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the config file (default $IPGUARD_CONFIG or config.yml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
