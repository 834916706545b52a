package main

import (
	"context"

	"github.com/spf13/cobra"

	trustservice "ipguard/internal/trust/service"
)

var trustSetCmd = &cobra.Command{
	Use:   "set <principal-id> <address>",
	Short: "Trust an address for a principal",
	Example: `  ipguard trust set 0b6f4a52-8f1e-4a8e-9a55-4cbe0f0c1f7e 203.0.113.10
  ipguard trust set 0b6f4a52-8f1e-4a8e-9a55-4cbe0f0c1f7e 2001:db8::1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTrustService(cmd, func(ctx context.Context, svc *trustservice.Service) error {
			rec, err := svc.Set(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			printRecord(cmd, rec.PrincipalID.String(), rec.Address)
			return nil
		})
	},
}

func init() {
	trustCmd.AddCommand(trustSetCmd)
}
