package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/categorize"
	"github.com/extrato-dev/extrato/internal/store"
)

func newCategorizeCommand(opts *rootOptions) *cobra.Command {
	var req categorize.BulkRequest
	var match string

	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Assign a category to every transaction matching a term",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Match = store.MatchMode(match)
			if req.Match != store.MatchExact && req.Match != store.MatchContains {
				return fmt.Errorf("--match must be %q or %q", store.MatchExact, store.MatchContains)
			}

			e, ctx, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			req.UserID = e.userID
			n, err := categorize.BulkAssign(ctx, e.store, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d transactions updated\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Category, "category", "", "category name (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&req.Term, "term", "", "description to match (required)")
	_ = cmd.MarkFlagRequired("term")
	cmd.Flags().StringVar(&match, "match", string(store.MatchContains), "exact or contains")
	cmd.Flags().BoolVar(&req.Overwrite, "overwrite", false, "replace categories already set")

	return cmd
}
