package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/export"
	"github.com/extrato-dev/extrato/internal/store"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var number string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an account's transactions as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			acct, err := e.store.GetAccountByNumber(ctx, e.userID, number)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("account %s not found", number)
			}
			if err != nil {
				return err
			}

			txns, err := e.store.ListTransactions(ctx, acct.ID)
			if err != nil {
				return err
			}
			return export.WriteTransactions(cmd.OutOrStdout(), txns, e.loc)
		},
	}

	cmd.Flags().StringVar(&number, "account", "", "account number (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
