package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ipguard/pkg/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate an admin token, runtime token or approval signing key",
	Long: `Generate a random secret for admin.token, runtime.token or
approval.signing_key.

With --hash the bcrypt hash is printed as well. Put the hash in admin.token
or runtime.token and hand the plaintext to operators or the hosting runtime;
the server accepts either form.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		withHash, _ := cmd.Flags().GetBool("hash")

		secret, err := secrets.Generate()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, secret)
		if !withHash {
			return nil
		}
		hash, err := secrets.Hash(secret)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.Flags().Bool("hash", false, "Also print a bcrypt hash for admin.token or runtime.token")
}
