package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/model"
)

func newAccountsCommand(opts *rootOptions) *cobra.Command {
	var types bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List bank accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if types {
				return writeAccountTypes(cmd.OutOrStdout())
			}

			e, ctx, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			accts, err := e.store.ListAccounts(ctx, e.userID)
			if err != nil {
				return err
			}
			if len(accts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tNAME\tTYPE\tCURRENCY\tBALANCE")
			for _, a := range accts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Number, a.Name, a.Type.Label(), a.Currency, a.Balance.StringFixed(2))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&types, "types", false, "list the account types instead")

	return cmd
}

func writeAccountTypes(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tLABEL")
	for _, o := range model.AccountTypeOptions() {
		fmt.Fprintf(tw, "%s\t%s\n", o.Value, o.Label)
	}
	return tw.Flush()
}
