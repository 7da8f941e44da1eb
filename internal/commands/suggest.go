package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSuggestCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <description>",
		Short: "Suggest a category for a transaction description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			sug, err := e.categorizer().Suggest(ctx, e.userID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if sug == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no suggestion")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), sug.Name)
			return nil
		},
	}
}
