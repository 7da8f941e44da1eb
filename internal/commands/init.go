package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/extrato-dev/extrato/internal/categories"
	"github.com/extrato-dev/extrato/internal/config"
	"github.com/extrato-dev/extrato/internal/gitops"
	"github.com/extrato-dev/extrato/internal/store"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new extrato data directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.repo
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			userID := opts.userID
			if userID == 0 {
				userID = 1
			}
			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, userID, git)
		},
	}

	cmd.Flags().BoolVar(&git, "git", false, "version the data directory with git")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir string, userID int64, git bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(userID)
	cfg.Git.Enabled = git
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	cats := categories.Defaults()
	if err := categories.Save(filepath.Join(dir, categories.FileName), cats); err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath(dir))
	if err != nil {
		return err
	}
	defer st.Close()

	seeded, err := categories.Seed(ctx, st, userID, cats)
	if err != nil {
		return err
	}

	if git {
		db := cfg.Database.Path
		if err := gitops.Init(dir, db, db+"-journal", db+"-wal", db+"-shm"); err != nil {
			return err
		}
		author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
		if _, err := gitops.Commit(dir, "init: extrato data directory", author); err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
	}

	fmt.Fprintf(out, "Initialized extrato data directory at %s (user %d, %d categories)\n", dir, userID, seeded)
	return nil
}
