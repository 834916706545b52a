package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	trustservice "ipguard/internal/trust/service"
)

var trustRemoveCmd = &cobra.Command{
	Use:     "remove <principal-id>",
	Aliases: []string{"rm"},
	Short:   "Forget the trusted address of a principal",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTrustService(cmd, func(ctx context.Context, svc *trustservice.Service) error {
			if err := svc.Remove(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		})
	},
}

func init() {
	trustCmd.AddCommand(trustRemoveCmd)
}
