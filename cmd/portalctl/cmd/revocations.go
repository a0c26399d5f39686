package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func PurgeRevocationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-revocations",
		Short: "Delete revocation entries for tokens that have expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Cfg.UsesSQL() {
				fmt.Fprintln(cmd.OutOrStdout(), "dynamodb expires revocations through table TTL, nothing to do")
				return nil
			}

			n, err := a.AuthService.PurgeRevocations(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired revocations\n", n)
			return nil
		},
	}
}
