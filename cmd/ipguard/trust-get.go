package main

import (
	"context"

	"github.com/spf13/cobra"

	trustservice "ipguard/internal/trust/service"
)

var trustGetCmd = &cobra.Command{
	Use:   "get <principal-id>",
	Short: "Print the trusted address of a principal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTrustService(cmd, func(ctx context.Context, svc *trustservice.Service) error {
			rec, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			printRecord(cmd, rec.PrincipalID.String(), rec.Address)
			return nil
		})
	},
}

func init() {
	trustCmd.AddCommand(trustGetCmd)
}
