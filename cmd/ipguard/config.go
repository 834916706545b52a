package main

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect ipguard configuration",
}

func init() {
	rootCmd.AddCommand(configCmd)
}
