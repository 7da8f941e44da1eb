package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/categories"
)

func newCategoriesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			cats, err := e.store.ListCategories(ctx, e.userID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tICON\tCOLOR")
			for _, c := range cats {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Icon, c.Color)
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(newCategoriesSeedCommand(opts))
	return cmd
}

func newCategoriesSeedCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create categories from a CSV file, or the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ctx, err := openEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if file == "" {
				file = filepath.Join(e.root, categories.FileName)
			}
			cats, err := categories.Load(file)
			if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("file") {
				cats = categories.Defaults()
			} else if err != nil {
				return err
			}

			n, err := categories.Seed(ctx, e.store, e.userID, cats)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d categories added\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "categories CSV (default: categories.csv in the data directory)")

	return cmd
}
