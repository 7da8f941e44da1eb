package commands

import (
	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/buildinfo"
)

type rootOptions struct {
	repo   string
	userID int64
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "extrato",
		Short:   "Import bank statements and categorize transactions",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.repo, "repo", ".", "data directory")
	rootCmd.PersistentFlags().Int64Var(&opts.userID, "user", 0, "user id (defaults to user.id from extrato.yaml)")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newImportCommand(opts),
		newSuggestCommand(opts),
		newCategorizeCommand(opts),
		newAccountsCommand(opts),
		newCategoriesCommand(opts),
		newExportCommand(opts),
	)

	return rootCmd
}
